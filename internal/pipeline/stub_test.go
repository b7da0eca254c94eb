package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strings"
	"sync"

	"idcard-extractor/internal/imaging"
	"idcard-extractor/internal/llm"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// stubInvoker replays canned responses routed by the request's system prompt
// (one per stage) and records every request it sees.
type stubInvoker struct {
	mu    sync.Mutex
	calls []llm.Request

	detect   func(req llm.Request) (llm.Response, error)
	localize func(req llm.Request) (llm.Response, error)
	read     func(req llm.Request) (llm.Response, error)
}

func (s *stubInvoker) Invoke(ctx context.Context, req llm.Request) (llm.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()

	switch req.System {
	case detectSystem:
		if s.detect != nil {
			return s.detect(req)
		}
	case localizeSystem:
		if s.localize != nil {
			return s.localize(req)
		}
	case readSystem:
		if s.read != nil {
			return s.read(req)
		}
	}
	return llm.Response{}, fmt.Errorf("unexpected invocation (system %q)", req.System)
}

func (s *stubInvoker) callsFor(system string) []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []llm.Request
	for _, c := range s.calls {
		if c.System == system {
			out = append(out, c)
		}
	}
	return out
}

func textResponse(text string) func(llm.Request) (llm.Response, error) {
	return func(llm.Request) (llm.Response, error) {
		return llm.Response{Text: text}, nil
	}
}

func detectionResponse(isDocument bool, confidence float64, docType string) func(llm.Request) (llm.Response, error) {
	return textResponse(fmt.Sprintf(
		`{"isDocument": %v, "confidence": %v, "documentType": %q, "reasoning": "test"}`,
		isDocument, confidence, docType))
}

// localizationResponse builds a response with the given boxed fields; every
// other supported field gets a null bbox.
func localizationResponse(boxes map[string][]float64) func(llm.Request) (llm.Response, error) {
	var b strings.Builder
	b.WriteString(`{"fields": {`)
	first := true
	for name, box := range boxes {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, `%q: {"bbox": [%v, %v, %v, %v], "confidence": 90}`, name, box[0], box[1], box[2], box[3])
	}
	b.WriteString(`}}`)
	return textResponse(b.String())
}

// readByLabel answers each OCR call based on the field label embedded in the
// prompt.
func readByLabel(readings map[string]FieldReading) func(llm.Request) (llm.Response, error) {
	return func(req llm.Request) (llm.Response, error) {
		for label, r := range readings {
			if strings.Contains(req.Prompt, "shows a "+label+" from") {
				return llm.Response{Text: fmt.Sprintf(`{"text": %q, "confidence": %v}`, r.Text, r.Confidence)}, nil
			}
		}
		return llm.Response{Text: `{"text": "", "confidence": 0}`}, nil
	}
}

// stubCodec avoids real image decoding: every buffer is a fixed-size image
// and region extraction tags the output with the rectangle.
type stubCodec struct{}

func (stubCodec) Metadata([]byte) (int, int, error) { return 1000, 1000, nil }

func (stubCodec) ExtractRegion(data []byte, rect image.Rectangle) ([]byte, error) {
	return []byte(fmt.Sprintf("crop %v of %s", rect, data)), nil
}

func (stubCodec) Resize(data []byte, maxWidth int) ([]byte, error) { return data, nil }

func newTestPipeline(inv *stubInvoker, cfg Config) *Pipeline {
	codec := stubCodec{}
	stages := NewStageInvoker(inv, StageTimeouts{}, testLogger)
	cropper := imaging.NewCropper(codec, testLogger)
	return NewPipeline(stages, cropper, codec, cfg, testLogger)
}

func testModels() Models {
	return Models{Detection: "det-model", Localization: "loc-model", OCR: "ocr-model"}
}
