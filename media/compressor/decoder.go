package compressor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	apperrors "github.com/leeforge/squash/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Source is a decoded input image. One Source serves every rendition of an
// invocation and is dropped when the invocation ends.
type Source struct {
	Image  image.Image
	Format string
	Width  int
	Height int
}

// Decode decodes raw into a Source and reports its native dimensions.
// Malformed or unsupported input yields a decode error.
func Decode(raw []byte) (src *Source, err error) {
	if len(raw) == 0 {
		return nil, apperrors.NewEmptyInput("no image data supplied")
	}

	defer func() {
		if r := recover(); r != nil {
			src = nil
			err = apperrors.NewDecode(apperrors.Recover(r, apperrors.ErrorTypeDecode))
		}
	}()

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.NewDecode(err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, apperrors.NewDecode(fmt.Errorf("%s image has no pixels", format))
	}

	return &Source{
		Image:  img,
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
