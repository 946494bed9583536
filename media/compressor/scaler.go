package compressor

import (
	"fmt"
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Filter names a resampling filter.
type Filter string

const (
	FilterApproxBiLinear Filter = "approx-bilinear"
	FilterNearest        Filter = "nearest"
	FilterBiLinear       Filter = "bilinear"
	FilterCatmullRom     Filter = "catmull-rom"
	FilterLanczos3       Filter = "lanczos3"
	FilterMitchell       Filter = "mitchell"
	FilterBicubic        Filter = "bicubic"
)

// DefaultFilter is the plain drawing primitive used when nothing is configured.
const DefaultFilter = FilterApproxBiLinear

// Scaler draws src scaled to fill all of dst.
type Scaler interface {
	Scale(dst *image.RGBA, src image.Image)
}

// drawScaler scales directly into the surface.
type drawScaler struct {
	scaler draw.Scaler
}

func (s drawScaler) Scale(dst *image.RGBA, src image.Image) {
	s.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
}

// resizeScaler produces an intermediate image and composites it onto the
// surface.
type resizeScaler struct {
	interp resize.InterpolationFunction
}

func (s resizeScaler) Scale(dst *image.RGBA, src image.Image) {
	b := dst.Bounds()
	scaled := resize.Resize(uint(b.Dx()), uint(b.Dy()), src, s.interp)
	draw.Draw(dst, b, scaled, scaled.Bounds().Min, draw.Over)
}

var scalers = map[Filter]Scaler{
	FilterApproxBiLinear: drawScaler{draw.ApproxBiLinear},
	FilterNearest:        drawScaler{draw.NearestNeighbor},
	FilterBiLinear:       drawScaler{draw.BiLinear},
	FilterCatmullRom:     drawScaler{draw.CatmullRom},
	FilterLanczos3:       resizeScaler{resize.Lanczos3},
	FilterMitchell:       resizeScaler{resize.MitchellNetravali},
	FilterBicubic:        resizeScaler{resize.Bicubic},
}

// NewScaler returns the Scaler for filter. An empty filter selects DefaultFilter.
func NewScaler(filter Filter) (Scaler, error) {
	if filter == "" {
		filter = DefaultFilter
	}
	s, ok := scalers[filter]
	if !ok {
		return nil, fmt.Errorf("unknown filter %q", filter)
	}
	return s, nil
}

// Filters lists every supported filter name.
func Filters() []Filter {
	return []Filter{
		FilterApproxBiLinear, FilterNearest, FilterBiLinear, FilterCatmullRom,
		FilterLanczos3, FilterMitchell, FilterBicubic,
	}
}
