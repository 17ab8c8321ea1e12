// Package validation implements the engine-boundary checks on document
// paths, payloads, and rules text.
package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxPathLength is the maximum byte length of a document path.
	MaxPathLength = 4096
	// MaxPathDepth is the maximum number of segments in a document path.
	MaxPathDepth = 100
	// MaxValueSize is the maximum byte length of a document payload.
	MaxValueSize = 100 * 1024 * 1024
	// MaxRulesSize is the maximum byte length of rules DSL text.
	MaxRulesSize = 1024 * 1024
	// RulesServiceMarker must appear somewhere in valid rules text.
	RulesServiceMarker = "service cloud.firestore"
)

// Error reports which field and rule a validation check rejected, so
// callers can branch on the failure kind rather than parse a string.
type Error struct {
	Field string
	Rule  string
	Value string
}

func (e *Error) Error() string {
	if e.Value != "" {
		return e.Field + ": " + e.Rule + " (" + e.Value + ")"
	}
	return e.Field + ": " + e.Rule
}

func fail(field, rule string, value ...string) *Error {
	v := ""
	if len(value) > 0 {
		v = value[0]
	}
	return &Error{Field: field, Rule: rule, Value: v}
}

// Path validates a document path per the segment/length/depth rules: a
// non-empty `/`-separated sequence of alphanumeric/_/- segments with no
// leading, trailing or repeated slash, at most MaxPathLength bytes and
// MaxPathDepth segments.
func Path(path string) error {
	if path == "" {
		return fail("path", "empty")
	}
	if len(path) > MaxPathLength {
		return fail("path", "too_long")
	}
	if strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return fail("path", "leading_or_trailing_slash")
	}
	if strings.Contains(path, "//") {
		return fail("path", "consecutive_slashes")
	}
	segments := strings.Split(path, "/")
	if len(segments) > MaxPathDepth {
		return fail("path", "too_deep")
	}
	for _, seg := range segments {
		if seg == "" {
			return fail("path", "empty_segment")
		}
		for _, c := range seg {
			if !isPathChar(c) {
				return fail("path", "invalid_character", string(c))
			}
		}
	}
	return nil
}

func isPathChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-':
		return true
	}
	return false
}

// Value validates a document payload: non-empty, within MaxValueSize, and
// valid UTF-8.
func Value(data []byte) error {
	if len(data) == 0 {
		return fail("value", "empty")
	}
	if len(data) > MaxValueSize {
		return fail("value", "too_large")
	}
	if !utf8.Valid(data) {
		return fail("value", "invalid_utf8")
	}
	return nil
}

// Rules validates raw rules DSL text before it reaches the parser: non-empty,
// within MaxRulesSize, and carrying the service marker the grammar requires.
func Rules(text string) error {
	if text == "" {
		return fail("rules", "empty")
	}
	if len(text) > MaxRulesSize {
		return fail("rules", "too_large")
	}
	if !strings.Contains(text, RulesServiceMarker) {
		return fail("rules", "missing_service_marker", RulesServiceMarker)
	}
	return nil
}
