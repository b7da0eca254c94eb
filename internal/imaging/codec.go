package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Registered decoders. The pipeline accepts whatever the frontend
	// uploads: JPEG, PNG, GIF, and WebP.
	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Codec decodes encoded image buffers, extracts rectangular regions, and
// re-encodes them. Implementations must be safe for concurrent use.
type Codec interface {
	// Metadata returns the pixel dimensions of an encoded image.
	Metadata(data []byte) (width, height int, err error)
	// ExtractRegion re-encodes the given pixel rectangle of an encoded
	// image as JPEG. rect must lie within the image bounds.
	ExtractRegion(data []byte, rect image.Rectangle) ([]byte, error)
	// Resize scales an image down to at most maxWidth pixels wide,
	// preserving aspect ratio. Images already narrow enough are returned
	// unchanged.
	Resize(data []byte, maxWidth int) ([]byte, error)
}

const jpegQuality = 90

// StdCodec is the stdlib/x-image backed Codec.
type StdCodec struct{}

func NewStdCodec() *StdCodec { return &StdCodec{} }

func (*StdCodec) Metadata(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image metadata: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

func (*StdCodec) ExtractRegion(data []byte, rect image.Rectangle) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("region %v outside image bounds %v", rect, src.Bounds())
	}

	var region image.Image
	if sub, ok := src.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		region = sub.SubImage(rect)
	} else {
		dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		xdraw.Draw(dst, dst.Bounds(), src, rect.Min, xdraw.Src)
		region = dst
	}

	return encodeJPEG(region)
}

func (*StdCodec) Resize(data []byte, maxWidth int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image metadata: %w", err)
	}
	if maxWidth <= 0 || cfg.Width <= maxWidth {
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	scale := float64(maxWidth) / float64(cfg.Width)
	h := int(float64(cfg.Height) * scale)
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	return encodeJPEG(dst)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
