package imaging

import (
	"image"
	"math"
)

// BoundingBox is a normalized field region in [yMin, xMin, yMax, xMax] order,
// each component in [0,1]. The order matches what the localization stage is
// prompted to return.
type BoundingBox struct {
	YMin float64
	XMin float64
	YMax float64
	XMax float64
}

// Pixel padding applied when converting a normalized box to a crop rectangle.
// Left and bottom edges widen, top and right narrow. This compensates for the
// localizer's systematic under/over-shoot; tune here, not in PixelRect.
const (
	padLeft   = 10
	padTop    = 10
	padWidth  = 10
	padHeight = 10
)

// BoxFromSlice builds a BoundingBox from a raw [ymin, xmin, ymax, xmax]
// slice. ok is false when the slice does not have exactly four elements.
func BoxFromSlice(vals []float64) (BoundingBox, bool) {
	if len(vals) != 4 {
		return BoundingBox{}, false
	}
	return BoundingBox{YMin: vals[0], XMin: vals[1], YMax: vals[2], XMax: vals[3]}, true
}

// Valid reports whether the box has four finite components in [0,1] with
// yMin < yMax and xMin < xMax. Malformed boxes are reported, never panicked
// over.
func (b BoundingBox) Valid() bool {
	for _, v := range []float64{b.YMin, b.XMin, b.YMax, b.XMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		if v < 0 || v > 1 {
			return false
		}
	}
	return b.YMin < b.YMax && b.XMin < b.XMax
}

// PixelRect converts the normalized box to a padded pixel rectangle for an
// image of the given dimensions. The result is NOT clamped; callers intersect
// it with the image bounds before cropping.
func (b BoundingBox) PixelRect(width, height int) image.Rectangle {
	left := int(math.Round(b.XMin*float64(width))) - padLeft
	top := int(math.Round(b.YMin*float64(height))) + padTop
	w := int(math.Round((b.XMax-b.XMin)*float64(width))) + padWidth
	h := int(math.Round((b.YMax-b.YMin)*float64(height))) - padHeight
	return image.Rect(left, top, left+w, top+h)
}

// ClampRect limits r to the bounds of a width x height image. The result
// never has negative offsets and never extends past the image; it may be
// empty when r lies entirely outside.
func ClampRect(r image.Rectangle, width, height int) image.Rectangle {
	return r.Intersect(image.Rect(0, 0, width, height))
}
