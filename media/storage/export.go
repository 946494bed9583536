package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sync"

	apperrors "github.com/leeforge/squash/errors"
	"github.com/leeforge/squash/media/compressor"
)

// Exported records where one rendition was written.
type Exported struct {
	Path string `json:"path"`
	URL  string `json:"url"`
	Size int    `json:"size"`
}

// RenditionPath names a rendition file: "<name>.<ext>" for the primary
// output and "<name>-<w>x<h>.<ext>" for the extra sizes.
func RenditionPath(folder, name string, r compressor.Rendition, primary bool) string {
	if name == "" {
		name = "image"
	}
	file := fmt.Sprintf("%s.%s", name, r.Extension)
	if !primary {
		file = fmt.Sprintf("%s-%dx%d.%s", name, r.Width, r.Height, r.Extension)
	}
	if folder == "" {
		return file
	}
	return path.Join(folder, file)
}

// Names hands out export names that stay unique for the lifetime of one
// run. A taken name gets a "-2", "-3", ... suffix. The extra-size file
// names derived from a reserved name are reserved with it.
type Names struct {
	mu    sync.Mutex
	byKey map[string]string
	taken map[string]bool
}

func NewNames() *Names {
	return &Names{
		byKey: make(map[string]string),
		taken: make(map[string]bool),
	}
}

// Reserve returns the export name for key, preferring name. The same key
// always gets the same result.
func (n *Names) Reserve(key, name string) string {
	if name == "" {
		name = "image"
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if got, ok := n.byKey[key]; ok {
		return got
	}

	candidate := name
	for i := 2; n.isTaken(candidate); i++ {
		candidate = fmt.Sprintf("%s-%d", name, i)
	}
	for _, stem := range fileStems(candidate) {
		n.taken[stem] = true
	}
	n.byKey[key] = candidate
	return candidate
}

func (n *Names) isTaken(name string) bool {
	for _, stem := range fileStems(name) {
		if n.taken[stem] {
			return true
		}
	}
	return false
}

// fileStems lists the file names, without extension, that RenditionPath
// derives from name.
func fileStems(name string) []string {
	return []string{
		name,
		fmt.Sprintf("%s-%dx%d", name, compressor.ThumbnailSize, compressor.ThumbnailSize),
		fmt.Sprintf("%s-%dx%d", name, compressor.IconSize, compressor.IconSize),
	}
}

// ExportBundle writes every rendition of b through p, primary first. Files
// are named after name, or after the bundle's original name when name is
// empty.
func ExportBundle(ctx context.Context, p Provider, b *compressor.Bundle, folder, name string) ([]Exported, error) {
	if name == "" {
		name = b.OriginalFile.Name
	}
	renditions := b.Renditions()
	out := make([]Exported, 0, len(renditions))

	for i, r := range renditions {
		data, err := r.Bytes()
		if err != nil {
			return out, apperrors.NewStorage("decode rendition payload", err)
		}

		file := RenditionPath(folder, name, r, i == 0)

		var url string
		if typed, ok := p.(ContentTyper); ok {
			url, err = typed.UploadWithType(ctx, bytes.NewReader(data), file, r.Extension.MIMEType())
		} else {
			url, err = p.Upload(ctx, bytes.NewReader(data), file)
		}
		if err != nil {
			return out, apperrors.NewStorage(p.Name()+" upload", err).WithDetail("path", file)
		}

		out = append(out, Exported{Path: file, URL: url, Size: len(data)})
	}
	return out, nil
}
