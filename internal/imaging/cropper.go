package imaging

import (
	"fmt"
	"log/slog"

	"idcard-extractor/internal/common"
)

// Cropper produces one encoded sub-image per located field. Each crop is
// independent: a failure degrades that field only, never its siblings.
type Cropper struct {
	codec  Codec
	logger *slog.Logger
}

func NewCropper(codec Codec, logger *slog.Logger) *Cropper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cropper{codec: codec, logger: logger}
}

// Crop validates box, converts it to a clamped pixel rectangle, and extracts
// that region from the encoded image. Classified errors: common.ErrGeometry
// for a bad box, common.ErrCrop for a degenerate rectangle or codec failure.
func (c *Cropper) Crop(img []byte, box BoundingBox) ([]byte, error) {
	if !box.Valid() {
		return nil, fmt.Errorf("%w: [%v %v %v %v]", common.ErrGeometry, box.YMin, box.XMin, box.YMax, box.XMax)
	}

	width, height, err := c.codec.Metadata(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrop, err)
	}

	rect := ClampRect(box.PixelRect(width, height), width, height)
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty rectangle after clamping to %dx%d", common.ErrCrop, width, height)
	}

	out, err := c.codec.ExtractRegion(img, rect)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrop, err)
	}
	return out, nil
}
