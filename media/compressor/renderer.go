package compressor

import (
	"bytes"
	"fmt"

	apperrors "github.com/leeforge/squash/errors"
)

// Renderer rasterizes a decoded source onto one surface and encodes the
// result. A Renderer belongs to a single invocation.
type Renderer struct {
	surface  *Surface
	scaler   Scaler
	encoders map[OutputExtension]Encoder
	buf      bytes.Buffer
}

func NewRenderer(surface *Surface, scaler Scaler, encoders map[OutputExtension]Encoder) *Renderer {
	return &Renderer{
		surface:  surface,
		scaler:   scaler,
		encoders: encoders,
	}
}

// RenderAndEncode resets the surface to width×height, draws src scaled into
// it and encodes it as ext.
func (r *Renderer) RenderAndEncode(src *Source, width, height int, ext OutputExtension) (Rendition, error) {
	enc, ok := r.encoders[ext]
	if !ok {
		return Rendition{}, apperrors.NewInvalid("outputExtension", ext, "no encoder registered")
	}

	if err := r.surface.Reset(width, height); err != nil {
		return Rendition{}, err
	}
	r.scaler.Scale(r.surface.Image(), src.Image)

	r.buf.Reset()
	if err := enc.Encode(&r.buf, r.surface.Image(), Quality); err != nil {
		return Rendition{}, apperrors.NewEncode(string(ext), err).
			WithDetail("width", width).
			WithDetail("height", height)
	}
	if r.buf.Len() == 0 {
		return Rendition{}, apperrors.NewEncode(string(ext), fmt.Errorf("encoder produced no data"))
	}

	payload := encodeBase64(r.buf.Bytes())
	return Rendition{
		URL:       DataURL(enc.MIMEType(), payload),
		Extension: ext,
		Size:      EstimateDecodedSize(len(payload)),
		Width:     width,
		Height:    height,
	}, nil
}
