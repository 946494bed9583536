package compressor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/leeforge/squash/errors"
)

// MaxAssetSize is a bounding box written as "<width>x<height>".
type MaxAssetSize string

const (
	MaxAssetSize1080p MaxAssetSize = "1920x1080"
	MaxAssetSize720p  MaxAssetSize = "1280x720"
)

// MaxAssetSizes lists the accepted bounding boxes.
var MaxAssetSizes = []MaxAssetSize{MaxAssetSize1080p, MaxAssetSize720p}

// Bounds splits the box into its maximum width and height.
func (s MaxAssetSize) Bounds() (maxWidth, maxHeight int, err error) {
	w, h, ok := strings.Cut(string(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("bounding box %q: missing 'x'", s)
	}
	if maxWidth, err = strconv.Atoi(w); err != nil {
		return 0, 0, fmt.Errorf("bounding box %q: width: %w", s, err)
	}
	if maxHeight, err = strconv.Atoi(h); err != nil {
		return 0, 0, fmt.Errorf("bounding box %q: height: %w", s, err)
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return 0, 0, fmt.Errorf("bounding box %q: dimensions must be positive", s)
	}
	return maxWidth, maxHeight, nil
}

// OutputExtension is the format renditions are encoded to.
type OutputExtension string

const (
	ExtensionWebP OutputExtension = "webp"
	ExtensionJPEG OutputExtension = "jpeg"
)

// OutputExtensions lists the accepted output formats.
var OutputExtensions = []OutputExtension{ExtensionWebP, ExtensionJPEG}

func (e OutputExtension) MIMEType() string {
	return "image/" + string(e)
}

const (
	// ThumbnailSize is the edge of the square thumbnail rendition.
	ThumbnailSize = 150
	// IconSize is the edge of the square icon rendition.
	IconSize = 50
	// Quality is the encode quality on a 0-1 scale, for formats that take one.
	Quality = 0.8
)

// CompressOptions configures one invocation.
type CompressOptions struct {
	MaxAssetSize       MaxAssetSize    `json:"maxAssetSize" validate:"oneof=1920x1080 1280x720"`
	OutputExtension    OutputExtension `json:"outputExtension" validate:"oneof=webp jpeg"`
	GenerateExtraSizes bool            `json:"generateExtraSizes"`
}

// DefaultOptions mirrors the defaults of the option selectors.
func DefaultOptions() CompressOptions {
	return CompressOptions{
		MaxAssetSize:       MaxAssetSize1080p,
		OutputExtension:    ExtensionWebP,
		GenerateExtraSizes: false,
	}
}

var validate = validator.New()

// Validate rejects values outside the fixed enumerations.
func (o CompressOptions) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewInvalid(lowerFirst(fe.Field()), fe.Value(), "must be one of "+fe.Param()).
			WithInnerError(err)
	}
	return apperrors.NewInvalid("options", o, err.Error())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
