package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSProvider uploads to an Aliyun OSS bucket.
type OSSProvider struct {
	bucket *oss.Bucket
	domain string // custom or CDN domain
}

// NewOSSProvider creates a provider for bucketName.
// Endpoint: oss-cn-hangzhou.aliyuncs.com
func NewOSSProvider(endpoint, accessKeyID, accessKeySecret, bucketName, domain string) (*OSSProvider, error) {
	client, err := oss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}

	return &OSSProvider{
		bucket: bucket,
		domain: publicDomain(endpoint, bucketName, domain),
	}, nil
}

func publicDomain(endpoint, bucketName, domain string) string {
	if domain == "" {
		host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
		return fmt.Sprintf("https://%s.%s", bucketName, host)
	}
	if !strings.HasPrefix(domain, "http") {
		domain = "https://" + domain
	}
	return strings.TrimSuffix(domain, "/")
}

func objectKey(path string) string {
	return strings.TrimPrefix(path, "/")
}

func (p *OSSProvider) Upload(ctx context.Context, r io.Reader, path string) (string, error) {
	return p.UploadWithType(ctx, r, path, "")
}

// UploadWithType uploads r and records contentType on the object.
func (p *OSSProvider) UploadWithType(ctx context.Context, r io.Reader, path, contentType string) (string, error) {
	key := objectKey(path)

	var opts []oss.Option
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := p.bucket.PutObject(key, r, opts...); err != nil {
		return "", fmt.Errorf("failed to upload to OSS: %w", err)
	}
	return p.domain + "/" + key, nil
}

func (p *OSSProvider) Exists(ctx context.Context, path string) (bool, error) {
	return p.bucket.IsObjectExist(objectKey(path))
}

func (p *OSSProvider) Delete(ctx context.Context, path string) error {
	if err := p.bucket.DeleteObject(objectKey(path)); err != nil {
		return fmt.Errorf("failed to delete from OSS: %w", err)
	}
	return nil
}

func (p *OSSProvider) Name() string {
	return "oss"
}
