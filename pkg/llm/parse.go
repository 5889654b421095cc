package llm

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Defaults substituted when a classification reply cannot be parsed.
const (
	DefaultCategory   = "legitimate"
	DefaultConfidence = 0.5
)

// ParseClassification extracts a (category, confidence) pair from a
// free-text model reply. Matching against the vocabulary is best-effort
// substring containment in both directions; anything unparseable falls
// back to the safe default.
func ParseClassification(response string, categories []string) (string, float64) {
	category := DefaultCategory
	confidence := DefaultConfidence

	for _, line := range strings.Split(response, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(line, "category:"):
			name := strings.TrimSpace(strings.TrimPrefix(line, "category:"))
			for _, cat := range categories {
				lowered := strings.ToLower(cat)
				if strings.Contains(name, lowered) || strings.Contains(lowered, name) {
					category = cat
					break
				}
			}
		case strings.HasPrefix(line, "confidence:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "confidence:"))
			if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 && f <= 1 {
				confidence = f
			}
		}
	}

	return category, confidence
}

// DecodeLoose finds the first parseable JSON value in a model reply.
// It tries the whole reply first, then the first balanced brace or
// bracket span. Returns false when nothing parses.
func DecodeLoose(response string) (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(response)
	if json.Valid([]byte(trimmed)) && (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) {
		return json.RawMessage(trimmed), true
	}

	if span := firstJSONSpan(trimmed); span != "" && json.Valid([]byte(span)) {
		return json.RawMessage(span), true
	}

	return nil, false
}

// firstJSONSpan returns the first balanced {...} or [...] span in s,
// tracking string literals so braces inside quoted values don't confuse
// the depth count. Returns "" if no balanced span exists.
func firstJSONSpan(s string) string {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			start, open, close = i, '{', '}'
			break
		}
		if s[i] == '[' {
			start, open, close = i, '[', ']'
			break
		}
	}
	if start == -1 {
		return ""
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
