package report

import (
	"encoding/json"
	"strings"
)

// extractJSON pulls the first top-level JSON object out of a model response
// and unmarshals it into out. Responses often arrive wrapped in markdown code
// fences or with prose around the object, so the fences are stripped first
// and the object located by brace matching. Returns false on any failure;
// callers treat that as "no structured report", never as an error.
func extractJSON(response string, out any) bool {
	cleaned := stripFences(response)

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		ch := cleaned[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return json.Unmarshal([]byte(cleaned[start:i+1]), out) == nil
				}
			}
		}
	}
	return false
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
