package review

import (
	"regexp"
	"strings"
)

// Extractor pulls normalized version identifiers out of free text using a
// configured pattern. The pattern is compiled once at startup; a nil pattern
// extracts nothing.
type Extractor struct {
	pattern *regexp.Regexp
}

// NewExtractor wraps a compiled pattern. Compile failures are the config
// layer's responsibility.
func NewExtractor(pattern *regexp.Regexp) *Extractor {
	return &Extractor{pattern: pattern}
}

// Extract returns the normalized version id found in text, or "".
//
// If the pattern has capture groups the first group wins, otherwise the whole
// match. When the pattern does not match at all, a trimmed all-digit input is
// accepted as-is so bare numeric version labels still resolve.
func (e *Extractor) Extract(text string) string {
	if text == "" || e == nil || e.pattern == nil {
		return ""
	}

	if m := e.pattern.FindStringSubmatch(text); m != nil {
		if len(m) > 1 {
			return m[1]
		}
		return m[0]
	}

	trimmed := strings.TrimSpace(text)
	if trimmed != "" && isAllDigits(trimmed) {
		return trimmed
	}

	return ""
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
