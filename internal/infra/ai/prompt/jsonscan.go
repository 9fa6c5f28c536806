package prompt

import (
	"encoding/json"
	"strings"
)

// ScanResult reports how free-form model output was turned into JSON.
// Parsed is false when neither stage found a usable object; callers decide
// whether that is a hard or soft failure.
type ScanResult struct {
	Parsed bool
	Raw    string
}

// ScanJSONObject extracts a JSON object from free-form model output and
// unmarshals it into v. Stage one takes the first balanced-brace object
// substring; stage two strips common code fences and parses the remainder.
func ScanJSONObject(s string, v any) ScanResult {
	if obj, ok := firstBalancedObject(s); ok {
		if json.Unmarshal([]byte(obj), v) == nil {
			return ScanResult{Parsed: true, Raw: obj}
		}
	}
	stripped := stripFences(s)
	if json.Unmarshal([]byte(stripped), v) == nil {
		return ScanResult{Parsed: true, Raw: stripped}
	}
	return ScanResult{}
}

// firstBalancedObject returns the first substring that is a balanced JSON
// object, tracking string literals and escapes so braces inside strings do
// not count.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
