package compressor

import (
	"encoding/base64"
	"image"
	"image/jpeg"
	"io"
	"math"
	"strings"

	"github.com/chai2010/webp"
)

// Encoder writes a raster in one output format.
type Encoder interface {
	Extension() OutputExtension
	MIMEType() string
	// Encode writes img to w. quality is on a 0-1 scale.
	Encode(w io.Writer, img image.Image, quality float64) error
}

type webpEncoder struct{}

func (webpEncoder) Extension() OutputExtension { return ExtensionWebP }
func (webpEncoder) MIMEType() string           { return ExtensionWebP.MIMEType() }

func (webpEncoder) Encode(w io.Writer, img image.Image, quality float64) error {
	return webp.Encode(w, img, &webp.Options{Quality: float32(quality * 100)})
}

type jpegEncoder struct{}

func (jpegEncoder) Extension() OutputExtension { return ExtensionJPEG }
func (jpegEncoder) MIMEType() string           { return ExtensionJPEG.MIMEType() }

func (jpegEncoder) Encode(w io.Writer, img image.Image, quality float64) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: int(math.Round(quality * 100))})
}

// DefaultEncoders returns an encoder for every OutputExtension.
func DefaultEncoders() map[OutputExtension]Encoder {
	return map[OutputExtension]Encoder{
		ExtensionWebP: webpEncoder{},
		ExtensionJPEG: jpegEncoder{},
	}
}

// DataURL builds a data URL carrying payload, which must already be base64.
func DataURL(mimeType, payload string) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mimeType) + len(payload))
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(payload)
	return b.String()
}

// EstimateDecodedSize returns ceil(n*3/4) for a base64 payload of length n.
// Padding characters are counted, so the result can exceed the true byte
// length by up to two.
func EstimateDecodedSize(n int) int {
	return (n*3 + 3) / 4
}

func encodeBase64(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}
