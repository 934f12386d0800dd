package domain

import (
	"encoding/json"
	"strings"
)

// DecodeUnifiedContext turns a stored unified context into a generic JSON
// object. Empty, invalid and non-object documents decode to nil. A document
// that was stored double-encoded (a JSON string holding JSON) is unwrapped.
func DecodeUnifiedContext(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}

	if s, ok := decoded.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil
		}
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil
	}
	return obj
}

// DecodeMetadata decodes a message metadata document. Invalid documents
// decode to nil.
func DecodeMetadata(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}
