package llm

// Stage response schemas (JSON-Schema draft 2020-12 subset, as generic maps).
// Validated locally after the balanced-object extraction; stray keys from the
// model are tolerated, missing or mistyped required fields are not.

func confidenceProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 100.0}
}

// BuildDetectionSchema constrains the detect stage: the flag must be a real
// boolean and confidence a real number, or the whole response is rejected.
func BuildDetectionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isDocument":   map[string]any{"type": "boolean"},
			"confidence":   confidenceProp(),
			"documentType": map[string]any{"type": "string"},
			"reasoning":    map[string]any{"type": "string"},
		},
		"required": []string{"isDocument", "confidence"},
	}
}

// BuildLocalizationSchema constrains only the envelope: "fields" must be an
// object. Per-field shapes are deliberately unchecked here — a mistyped bbox
// or confidence degrades that one field after parsing, it must never reject
// the whole response.
func BuildLocalizationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"fields": map[string]any{"type": "object"},
		},
		"required": []string{"fields"},
	}
}

// BuildOCRSchema constrains the read-text stage to {text, confidence}.
func BuildOCRSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text":       map[string]any{"type": "string"},
			"confidence": confidenceProp(),
		},
		"required": []string{"text", "confidence"},
	}
}
