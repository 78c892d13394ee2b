package example

import (
	"bytes"
	"encoding/json"
)

// Format turns an example payload into display text. Strings pass through
// unchanged; anything else becomes pretty JSON with two-space indentation,
// keys in declaration order and no HTML escaping.
func Format(value any) (string, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	var out bytes.Buffer
	encoder := json.NewEncoder(&out)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(out.Bytes(), "\n")), nil
}
