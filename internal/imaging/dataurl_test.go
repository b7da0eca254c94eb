package imaging

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func TestDecodePayload(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0xff}
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{"bare base64", encoded, raw, false},
		{"data url", "data:image/png;base64," + encoded, raw, false},
		{"whitespace trimmed", "  " + encoded + "\n", raw, false},
		{"unpadded", base64.RawStdEncoding.EncodeToString(raw), raw, false},
		{"url-safe alphabet", base64.URLEncoding.EncodeToString(raw), raw, false},
		{"url-safe unpadded", base64.RawURLEncoding.EncodeToString(raw), raw, false},
		{"data prefix without comma", "data:image/png;base64", nil, true},
		{"invalid base64", "!!!", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePayload(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodePayload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !bytes.Equal(got, tt.want) {
				t.Errorf("DecodePayload() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToDataURL(t *testing.T) {
	img := testJPEG(t, 8, 8)
	url := ToDataURL(img)
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("ToDataURL() = %.40q, want image/jpeg data URL", url)
	}
	decoded, err := DecodePayload(url)
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if !bytes.Equal(decoded, img) {
		t.Error("round trip does not preserve bytes")
	}
}

func TestToDataURLUnknownBytes(t *testing.T) {
	url := ToDataURL([]byte("plainly not an image"))
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("ToDataURL() = %.40q, want image/jpeg fallback", url)
	}
}
