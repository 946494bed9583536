package compressor

import (
	"fmt"
	"image"
	"sync"

	apperrors "github.com/leeforge/squash/errors"
)

// SurfaceLimits bounds the rasters a SurfacePool will create.
type SurfaceLimits struct {
	MaxDimension int
	MaxArea      int
}

// DefaultSurfaceLimits matches common browser canvas limits.
func DefaultSurfaceLimits() SurfaceLimits {
	return SurfaceLimits{
		MaxDimension: 32767,
		MaxArea:      268435456,
	}
}

func (l SurfaceLimits) check(width, height int) error {
	switch {
	case width <= 0 || height <= 0:
		return apperrors.NewSurfaceCreation(width, height, "dimensions must be positive")
	case l.MaxDimension > 0 && (width > l.MaxDimension || height > l.MaxDimension):
		return apperrors.NewSurfaceCreation(width, height, fmt.Sprintf("side exceeds %d px", l.MaxDimension))
	case l.MaxArea > 0 && int64(width)*int64(height) > int64(l.MaxArea):
		return apperrors.NewSurfaceCreation(width, height, fmt.Sprintf("area exceeds %d px", l.MaxArea))
	}
	return nil
}

// Surface is an RGBA raster that can be resized in place. Resizing clears
// it to transparent and reuses the pixel buffer when it is large enough.
type Surface struct {
	limits SurfaceLimits
	buf    []uint8
	img    *image.RGBA
}

// Image returns the current raster. It is invalidated by the next Reset.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Reset makes the surface exactly width×height and clears it.
func (s *Surface) Reset(width, height int) (err error) {
	if err := s.limits.check(width, height); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			s.buf, s.img = nil, nil
			err = apperrors.NewSurfaceCreation(width, height, "allocation failed").
				WithInnerError(apperrors.Recover(r, apperrors.ErrorTypeSurfaceCreation))
		}
	}()

	n := width * height * 4
	if cap(s.buf) < n {
		s.buf = make([]uint8, n)
	} else {
		s.buf = s.buf[:n]
		clear(s.buf)
	}
	s.img = &image.RGBA{
		Pix:    s.buf,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	return nil
}

// SurfacePool hands out surfaces. A surface belongs to exactly one
// invocation between Acquire and Release.
type SurfacePool struct {
	limits SurfaceLimits
	pool   sync.Pool
}

func NewSurfacePool(limits SurfaceLimits) *SurfacePool {
	return &SurfacePool{limits: limits}
}

// Acquire returns a cleared width×height surface.
func (p *SurfacePool) Acquire(width, height int) (*Surface, error) {
	s, _ := p.pool.Get().(*Surface)
	if s == nil {
		s = &Surface{}
	}
	s.limits = p.limits

	if err := s.Reset(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

// Release returns s to the pool. s must not be used afterwards.
func (p *SurfacePool) Release(s *Surface) {
	if s == nil {
		return
	}
	s.img = nil
	p.pool.Put(s)
}
