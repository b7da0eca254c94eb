package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ExtractJSONObject returns the first balanced {...} substring of s that is
// valid JSON. Generative models routinely wrap their payload in prose or
// markdown fences; this tolerates both. ok is false when no such substring
// exists.
func ExtractJSONObject(s string) ([]byte, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		if end, found := scanBalanced(s, start); found {
			candidate := []byte(s[start : end+1])
			if json.Valid(candidate) {
				return candidate, true
			}
		}
	}
	return nil, false
}

// scanBalanced finds the index of the brace closing the object opened at
// start, honoring string literals and escapes.
func scanBalanced(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ParseValidated extracts the first balanced JSON object from text, validates
// it against schemaMap, and unmarshals it into out. This is the single
// parse-and-validate step shared by all three stage invocations.
func ParseValidated(text string, schemaMap map[string]any, out any) error {
	doc, ok := ExtractJSONObject(text)
	if !ok {
		return fmt.Errorf("no JSON object in model response")
	}
	if err := ValidateJSONAgainstSchema(schemaMap, doc); err != nil {
		return err
	}
	if err := json.Unmarshal(doc, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
