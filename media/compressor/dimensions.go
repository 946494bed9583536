package compressor

// Dimensions is a target size before it is snapped to whole pixels.
type Dimensions struct {
	Width  float64
	Height float64
}

// ResolvePrimaryDimensions fits the native size into the bounding box,
// preserving aspect ratio. The width check runs first, then the height check
// runs on the possibly rescaled result; this order is part of the contract
// and must not be folded into a single min-ratio computation.
func ResolvePrimaryDimensions(nativeWidth, nativeHeight int, box MaxAssetSize) (Dimensions, error) {
	maxW, maxH, err := box.Bounds()
	if err != nil {
		return Dimensions{}, err
	}
	return resolve(float64(nativeWidth), float64(nativeHeight), float64(maxW), float64(maxH)), nil
}

func resolve(width, height, maxWidth, maxHeight float64) Dimensions {
	if width > maxWidth {
		height = maxWidth * height / width
		width = maxWidth
	}
	if height > maxHeight {
		width = maxHeight * width / height
		height = maxHeight
	}
	return Dimensions{Width: width, Height: height}
}

// Pixels snaps the dimensions to a raster size the way a canvas does when
// assigned a fractional size: truncation toward zero. Each side is at least 1.
func (d Dimensions) Pixels() (width, height int) {
	width, height = int(d.Width), int(d.Height)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}
