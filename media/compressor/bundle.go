package compressor

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Rendition is one encoded output image.
type Rendition struct {
	// URL is a data URL holding the encoded payload.
	URL       string          `json:"url"`
	Extension OutputExtension `json:"extension"`
	// Size is estimated from the base64 length; see EstimateDecodedSize.
	Size   int `json:"size"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Bytes decodes the payload carried by URL.
func (r Rendition) Bytes() ([]byte, error) {
	header, payload, ok := strings.Cut(r.URL, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return nil, fmt.Errorf("rendition url is not a data url")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("rendition url is not base64 encoded")
	}
	return base64.StdEncoding.DecodeString(payload)
}

// OriginalFile describes the input. Name and Extension are left empty; the
// caller fills them from the file it read.
type OriginalFile struct {
	Name      string    `json:"name"`
	Extension string    `json:"extension"`
	Size      int       `json:"size"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"createdAt"`
}

// Bundle is the result of one successful invocation. Thumbnail and Icon are
// both set or both nil.
type Bundle struct {
	OriginalFile  OriginalFile `json:"originalFile"`
	ConvertedFile Rendition    `json:"convertedFile"`
	Thumbnail     *Rendition   `json:"thumbnail,omitempty"`
	Icon          *Rendition   `json:"icon,omitempty"`
}

// Renditions returns the renditions in the order they were produced.
func (b *Bundle) Renditions() []Rendition {
	out := []Rendition{b.ConvertedFile}
	if b.Thumbnail != nil {
		out = append(out, *b.Thumbnail)
	}
	if b.Icon != nil {
		out = append(out, *b.Icon)
	}
	return out
}

// HasExtraSizes reports whether the thumbnail and icon were generated.
func (b *Bundle) HasExtraSizes() bool {
	return b.Thumbnail != nil && b.Icon != nil
}
