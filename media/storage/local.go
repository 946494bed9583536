package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/leeforge/squash/utils"
)

// LocalProvider writes files under a base directory.
type LocalProvider struct {
	basePath string
	baseURL  string
}

// NewLocalProvider creates basePath if needed. An empty baseURL makes
// Upload return plain file paths.
func NewLocalProvider(basePath, baseURL string) (*LocalProvider, error) {
	if basePath == "" {
		basePath = "."
	}
	if err := utils.CreateDir(basePath); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalProvider{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (p *LocalProvider) resolve(name string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(name))
	if clean == "/" {
		return "", fmt.Errorf("empty path")
	}
	return filepath.Join(p.basePath, filepath.FromSlash(clean)), nil
}

// Upload saves r at path below the base directory.
func (p *LocalProvider) Upload(ctx context.Context, r io.Reader, name string) (string, error) {
	fullPath, err := p.resolve(name)
	if err != nil {
		return "", err
	}

	if err := utils.CreateDir(filepath.Dir(fullPath)); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to write file content: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	if p.baseURL == "" {
		return fullPath, nil
	}
	// URLs always use forward slashes.
	return p.baseURL + "/" + strings.TrimPrefix(filepath.ToSlash(name), "/"), nil
}

func (p *LocalProvider) Exists(ctx context.Context, name string) (bool, error) {
	fullPath, err := p.resolve(name)
	if err != nil {
		return false, err
	}
	_, exists, err := utils.Exists(fullPath)
	return exists, err
}

// Delete removes the file at path. A missing file is not an error.
func (p *LocalProvider) Delete(ctx context.Context, name string) error {
	fullPath, err := p.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (p *LocalProvider) Name() string {
	return "local"
}
