package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/leeforge/squash/config"
)

// Provider stores exported renditions.
type Provider interface {
	// Upload writes r to path and returns the URL it can be fetched from.
	Upload(ctx context.Context, r io.Reader, path string) (string, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	Name() string
}

// ContentTyper is implemented by providers that can record a MIME type.
type ContentTyper interface {
	UploadWithType(ctx context.Context, r io.Reader, path, contentType string) (string, error)
}

// NewProviderFromConfig builds the provider selected by cfg.Type.
func NewProviderFromConfig(cfg config.StorageConfig) (Provider, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalProvider(cfg.Local.BasePath, cfg.Local.BaseURL)
	case "oss":
		o := cfg.OSS
		return NewOSSProvider(o.Endpoint, o.AccessKeyID, o.AccessKeySecret, o.Bucket, o.Domain)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
