package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"testing"

	"idcard-extractor/internal/common"
)

// testJPEG encodes a solid-color image of the given size.
func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestCropperCrop(t *testing.T) {
	cropper := NewCropper(NewStdCodec(), nil)
	img := testJPEG(t, 400, 300)

	out, err := cropper.Crop(img, BoundingBox{YMin: 0.2, XMin: 0.2, YMax: 0.8, XMax: 0.8})
	if err != nil {
		t.Fatalf("Crop() error = %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode crop: %v", err)
	}
	// left=0.2*400-10=70, top=0.2*300+10=70, w=0.6*400+10=250, h=0.6*300-10=170
	if cfg.Width != 250 || cfg.Height != 170 {
		t.Errorf("crop dimensions = %dx%d, want 250x170", cfg.Width, cfg.Height)
	}
}

func TestCropperCropClampsToImage(t *testing.T) {
	cropper := NewCropper(NewStdCodec(), nil)
	img := testJPEG(t, 200, 200)

	// Box hugging the right/bottom edge: padding pushes the raw rectangle
	// past the image, the crop must still succeed within bounds.
	out, err := cropper.Crop(img, BoundingBox{YMin: 0.5, XMin: 0.5, YMax: 1, XMax: 1})
	if err != nil {
		t.Fatalf("Crop() error = %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode crop: %v", err)
	}
	if cfg.Width > 200 || cfg.Height > 200 {
		t.Errorf("crop dimensions = %dx%d exceed source image", cfg.Width, cfg.Height)
	}
}

func TestCropperCropInvalidBox(t *testing.T) {
	cropper := NewCropper(NewStdCodec(), nil)
	img := testJPEG(t, 200, 200)

	_, err := cropper.Crop(img, BoundingBox{YMin: 0.8, XMin: 0.2, YMax: 0.2, XMax: 0.8})
	if !errors.Is(err, common.ErrGeometry) {
		t.Errorf("Crop() error = %v, want ErrGeometry", err)
	}
}

func TestCropperCropDegenerateRect(t *testing.T) {
	cropper := NewCropper(NewStdCodec(), nil)
	// On a 40x40 image a box at the very bottom lands entirely below the
	// image once the +10 top padding is applied.
	img := testJPEG(t, 40, 40)

	_, err := cropper.Crop(img, BoundingBox{YMin: 0.9, XMin: 0.1, YMax: 1, XMax: 0.9})
	if !errors.Is(err, common.ErrCrop) {
		t.Errorf("Crop() error = %v, want ErrCrop", err)
	}
}

func TestCropperCropUndecodableImage(t *testing.T) {
	cropper := NewCropper(NewStdCodec(), nil)

	_, err := cropper.Crop([]byte("not an image"), BoundingBox{YMin: 0.1, XMin: 0.1, YMax: 0.9, XMax: 0.9})
	if !errors.Is(err, common.ErrCrop) {
		t.Errorf("Crop() error = %v, want ErrCrop", err)
	}
}
