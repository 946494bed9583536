package gallery

import (
	"fmt"

	"github.com/leeforge/squash/media/compressor"
)

// Variant selects one rendition of a bundle.
type Variant string

const (
	VariantConverted Variant = "converted"
	VariantThumbnail Variant = "thumbnail"
	VariantIcon      Variant = "icon"
)

// Label is the display name of the variant.
func (v Variant) Label() string {
	switch v {
	case VariantConverted:
		return "Full Size"
	case VariantThumbnail:
		return "Thumbnail"
	case VariantIcon:
		return "Icon"
	}
	return string(v)
}

// Rendition returns the rendition v refers to in b, or nil when b has none.
func (v Variant) Rendition(b *compressor.Bundle) *compressor.Rendition {
	if b == nil {
		return nil
	}
	switch v {
	case VariantConverted:
		return &b.ConvertedFile
	case VariantThumbnail:
		return b.Thumbnail
	case VariantIcon:
		return b.Icon
	}
	return nil
}

// Variants lists the variants b actually carries, full size first.
func Variants(b *compressor.Bundle) []Variant {
	out := make([]Variant, 0, 3)
	for _, v := range []Variant{VariantConverted, VariantThumbnail, VariantIcon} {
		if v.Rendition(b) != nil {
			out = append(out, v)
		}
	}
	return out
}

// Preview is the lightbox cursor over a Collection.
type Preview struct {
	images  *Collection
	open    bool
	index   int
	variant Variant
}

func NewPreview(images *Collection) *Preview {
	return &Preview{images: images, variant: VariantConverted}
}

// Open shows the image at index i at full size.
func (p *Preview) Open(i int) error {
	if i < 0 || i >= p.images.Len() {
		return fmt.Errorf("preview index %d out of range [0, %d)", i, p.images.Len())
	}
	p.open = true
	p.index = i
	p.variant = VariantConverted
	return nil
}

// Close hides the preview and resets the cursor.
func (p *Preview) Close() {
	p.open = false
	p.index = 0
	p.variant = VariantConverted
}

// Next moves to the following image, wrapping to the first.
func (p *Preview) Next() {
	n := p.images.Len()
	if n == 0 {
		return
	}
	if p.index < n-1 {
		p.index++
	} else {
		p.index = 0
	}
}

// Previous moves to the preceding image, wrapping to the last.
func (p *Preview) Previous() {
	n := p.images.Len()
	if n == 0 {
		return
	}
	if p.index > 0 {
		p.index--
	} else {
		p.index = n - 1
	}
}

func (p *Preview) Select(v Variant) error {
	switch v {
	case VariantConverted, VariantThumbnail, VariantIcon:
		p.variant = v
		return nil
	}
	return fmt.Errorf("unknown variant %q", v)
}

func (p *Preview) IsOpen() bool     { return p.open }
func (p *Preview) Index() int       { return p.index }
func (p *Preview) Variant() Variant { return p.variant }

// Current returns the selected rendition of the current image. It is nil
// when the preview is closed or the image lacks the selected variant.
func (p *Preview) Current() *compressor.Rendition {
	if !p.open {
		return nil
	}
	b, ok := p.images.At(p.index)
	if !ok {
		return nil
	}
	return p.variant.Rendition(b)
}
