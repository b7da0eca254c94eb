package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"idcard-extractor/constants"
	"idcard-extractor/internal/common"
	"idcard-extractor/internal/imaging"
	"idcard-extractor/internal/llm"
)

// StageTimeouts bounds each stage invocation. Zero disables the bound and
// defers entirely to the invoker's own transport timeout.
type StageTimeouts struct {
	Detect   time.Duration
	Localize time.Duration
	Read     time.Duration
}

// StageInvoker wraps the inference invoker with the fixed prompt template and
// response schema for each of the three stage types. Parsing is the shared
// balanced-object-plus-schema step in the llm package; there are no retries
// at this level.
type StageInvoker struct {
	invoker  llm.Invoker
	timeouts StageTimeouts
	logger   *slog.Logger
}

func NewStageInvoker(inv llm.Invoker, timeouts StageTimeouts, logger *slog.Logger) *StageInvoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &StageInvoker{invoker: inv, timeouts: timeouts, logger: logger}
}

const (
	detectSystem = "You are an expert at identifying official identity documents. Respond only with valid JSON."

	localizeSystem = "You are an expert at spatial analysis of identity documents. " +
		"Provide precise bounding box coordinates. Respond only with valid JSON."

	readSystem = "You are an expert OCR system. Extract text accurately. Respond only with valid JSON."
)

// Detect asks whether the image shows an identity document at all.
func (s *StageInvoker) Detect(ctx context.Context, imageURL, model string) (DetectionOutcome, error) {
	prompt := fmt.Sprintf(`Analyze this image and determine if it contains an identity document (e.g. a national ID card, passport, or driver license).

Respond in JSON format:
{
  "isDocument": boolean,
  "confidence": number (0-100),
  "documentType": %s,
  "reasoning": "brief explanation"
}

Be strict in your assessment. Only return isDocument=true if you clearly see an official identification document.`,
		quotedAlternatives(constants.DocumentTypeStrings()))

	ctx, cancel := withBudget(ctx, s.timeouts.Detect)
	defer cancel()

	resp, err := s.invoker.Invoke(ctx, llm.Request{
		Prompt:       prompt,
		ImageDataURL: imageURL,
		Model:        model,
		System:       detectSystem,
	})
	if err != nil {
		return DetectionOutcome{}, fmt.Errorf("detection failed: %w", err)
	}

	var out DetectionOutcome
	if err := llm.ParseValidated(resp.Text, llm.BuildDetectionSchema(), &out); err != nil {
		return DetectionOutcome{}, fmt.Errorf("detection failed: %w: %v", common.ErrMalformedResponse, err)
	}
	out.DocumentType = string(constants.CanonicalDocumentType(out.DocumentType))
	return out, nil
}

// wire shape of the localization response. Per-field payloads stay raw so a
// mistyped field cannot fail the envelope decode.
type locField struct {
	BBox       []any `json:"bbox"`
	Confidence any   `json:"confidence"`
}

type locResponse struct {
	Fields map[string]json.RawMessage `json:"fields"`
}

// Localize asks for one normalized bounding box per supported field, using
// the detected document type as context. A field whose box is missing or
// fails validation is coerced to an absent box with zero confidence; the
// response as a whole is only rejected when its envelope is malformed.
func (s *StageInvoker) Localize(ctx context.Context, imageURL, model, documentType string) (map[string]Region, error) {
	prompt := buildLocalizePrompt(documentType)

	ctx, cancel := withBudget(ctx, s.timeouts.Localize)
	defer cancel()

	resp, err := s.invoker.Invoke(ctx, llm.Request{
		Prompt:       prompt,
		ImageDataURL: imageURL,
		Model:        model,
		System:       localizeSystem,
	})
	if err != nil {
		return nil, fmt.Errorf("localization failed: %w", err)
	}

	var loc locResponse
	if err := llm.ParseValidated(resp.Text, llm.BuildLocalizationSchema(), &loc); err != nil {
		return nil, fmt.Errorf("localization failed: %w: %v", common.ErrMalformedResponse, err)
	}

	regions := make(map[string]Region, len(constants.SupportedFields))
	for _, name := range constants.SupportedFields {
		raw, ok := loc.Fields[name]
		if !ok {
			regions[name] = Region{}
			continue
		}
		var f locField
		if err := json.Unmarshal(raw, &f); err != nil {
			s.logger.Warn("stage.localize.invalid_field", "field", name, "error", err)
			regions[name] = Region{}
			continue
		}
		if f.BBox == nil {
			regions[name] = Region{}
			continue
		}
		vals, numeric := numericSlice(f.BBox)
		box, shaped := imaging.BoxFromSlice(vals)
		if !numeric || !shaped || !box.Valid() {
			s.logger.Warn("stage.localize.invalid_bbox", "field", name, "bbox", f.BBox)
			regions[name] = Region{}
			continue
		}
		regions[name] = Region{Box: &box, Confidence: numericValue(f.Confidence)}
	}
	return regions, nil
}

// numericSlice converts decoded JSON values to floats; ok is false when any
// element is not a number.
func numericSlice(vals []any) ([]float64, bool) {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		n, ok := v.(float64)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// numericValue coerces a decoded JSON value to a float, zero for anything
// that is not a number.
func numericValue(v any) float64 {
	n, _ := v.(float64)
	return n
}

// ReadText extracts the text of one cropped field region.
func (s *StageInvoker) ReadText(ctx context.Context, imageURL, fieldName, model string) (FieldReading, error) {
	prompt := fmt.Sprintf(`Extract the text from this image which shows a %s from an identity document.

Respond in JSON format:
{
  "text": "extracted text",
  "confidence": number (0-100)
}

Rules:
- Return only the visible text, nothing else
- Preserve spacing and formatting
- If text is unclear or not visible, set confidence below 50
- Remove any watermarks or background noise
- For dates, preserve the format shown`, constants.FieldLabel(fieldName))

	ctx, cancel := withBudget(ctx, s.timeouts.Read)
	defer cancel()

	resp, err := s.invoker.Invoke(ctx, llm.Request{
		Prompt:       prompt,
		ImageDataURL: imageURL,
		Model:        model,
		System:       readSystem,
	})
	if err != nil {
		return FieldReading{}, fmt.Errorf("text extraction failed: %w", err)
	}

	var out FieldReading
	if err := llm.ParseValidated(resp.Text, llm.BuildOCRSchema(), &out); err != nil {
		return FieldReading{}, fmt.Errorf("text extraction failed: %w: %v", common.ErrMalformedResponse, err)
	}
	return out, nil
}

func buildLocalizePrompt(documentType string) string {
	label := strings.ReplaceAll(documentType, "_", " ")
	if label == "" || label == "none" {
		label = "identity document"
	}

	var fields strings.Builder
	for _, name := range constants.SupportedFields {
		fmt.Fprintf(&fields, "    %q: {\"bbox\": [ymin, xmin, ymax, xmax], \"confidence\": number},\n", name)
	}

	return fmt.Sprintf(`Analyze this %s image and locate the following fields. For each field found, provide bounding box coordinates in the format [ymin, xmin, ymax, xmax] where values are normalized between 0.0 and 1.0.

Respond in JSON format:
{
  "fields": {
%s  }
}

IMPORTANT:
- All bbox coordinates MUST be between 0.0 and 1.0
- If a field is not found, set bbox to null and confidence to 0
- Ensure ymin < ymax and xmin < xmax`, label, fields.String())
}

func quotedAlternatives(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, fmt.Sprintf("%q", v))
	}
	return strings.Join(quoted, " | ")
}

func withBudget(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
