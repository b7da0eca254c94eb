package imaging

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// Frontends are sloppy about padding and alphabet; accept every base64
// variant before rejecting a payload.
var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodePayload accepts a base64 image payload with or without a
// "data:image/...;base64," prefix and returns the raw bytes.
func DecodePayload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		s = s[idx+1:]
	}
	var lastErr error
	for _, enc := range base64Encodings {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("decode base64 image: %w", lastErr)
}

// ToDataURL wraps encoded image bytes in a data URL, the form the inference
// invoker expects for image parts. The media type is sniffed from the bytes.
func ToDataURL(b []byte) string {
	mt := http.DetectContentType(b)
	if !strings.HasPrefix(mt, "image/") {
		mt = "image/jpeg"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(b)
}
