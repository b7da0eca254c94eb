package pipeline

import (
	"time"

	"idcard-extractor/internal/imaging"
)

// Image is one submitted photo: an opaque encoded buffer plus the
// caller-supplied name used for reporting. Immutable once submitted.
type Image struct {
	Name string
	Data []byte
}

// Models is the per-stage model selection for one batch.
type Models struct {
	Detection    string `json:"detection"`
	Localization string `json:"localization"`
	OCR          string `json:"ocr"`
}

// DetectionOutcome is the detect stage's verdict for one image.
type DetectionOutcome struct {
	IsDocument   bool    `json:"isDocument"`
	Confidence   float64 `json:"confidence"` // 0..100
	DocumentType string  `json:"documentType"`
	Reasoning    string  `json:"reasoning"`
}

// Region locates one field on the source image. Box is nil when the
// localizer did not find the field or returned an invalid rectangle; an
// invalid box is coerced to nil with zero confidence, never propagated.
type Region struct {
	Box        *imaging.BoundingBox
	Confidence float64 // 0..100
}

// FieldReading is the OCR result for one field. The zero value
// {Text:"", Confidence:0} is the degraded default for fields that never
// reached the read stage.
type FieldReading struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0..100
}

// ItemResult is one image's outcome: exactly one of the success shape
// (DetectionConfidence + Fields populated) or the failure shape (Error set).
type ItemResult struct {
	ImageName string `json:"imageName"`
	Success   bool   `json:"success"`

	DetectionConfidence float64                 `json:"detectionConfidence,omitempty"`
	DocumentType        string                  `json:"documentType,omitempty"`
	Fields              map[string]FieldReading `json:"fields,omitempty"`
	// DateOfBirth is the synthesized convenience field: the English reading's
	// text, falling back to the Thai one, with the max of both confidences.
	DateOfBirth FieldReading `json:"dateOfBirth"`

	Error string `json:"error,omitempty"`

	ProcessingTimeMS int64 `json:"processingTimeMs"`
}

// BatchSummary is a pure fold over the result collection, never stored
// separately.
type BatchSummary struct {
	Total            int   `json:"total"`
	Successful       int   `json:"successful"`
	Failed           int   `json:"failed"`
	ProcessingTimeMS int64 `json:"processingTimeMs"`
}

// BatchResult pairs the per-item results with their summary.
type BatchResult struct {
	Results []ItemResult `json:"results"`
	Summary BatchSummary `json:"summary"`
}

func failureResult(name, msg string, elapsed time.Duration) ItemResult {
	return ItemResult{
		ImageName:        name,
		Success:          false,
		Error:            msg,
		ProcessingTimeMS: elapsed.Milliseconds(),
	}
}

// Summarize folds results into a summary.
func Summarize(results []ItemResult, elapsed time.Duration) BatchSummary {
	s := BatchSummary{Total: len(results), ProcessingTimeMS: elapsed.Milliseconds()}
	for _, r := range results {
		if r.Success {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	return s
}
