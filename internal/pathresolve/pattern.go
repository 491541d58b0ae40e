package pathresolve

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Wildcard is the segment that matches zero or more directory levels.
const Wildcard = "**"

const (
	// escapedBackslash is how a regex backslash is written in a pattern.
	escapedBackslash = `\\`
	// sentinel stands in for escapedBackslash while the pattern is split,
	// so the backslash can never be taken for a path separator.
	sentinel = "\x00"
)

// PatternError reports a pattern segment that is not a valid regular expression.
type PatternError struct {
	Pattern string // Full pattern as given by the caller
	Segment string // Offending segment, with escapes decoded
	Err     error  // Underlying regexp error
}

// NewPatternError creates a PatternError for one segment of pattern.
func NewPatternError(pattern, segment string, err error) *PatternError {
	return &PatternError{
		Pattern: pattern,
		Segment: segment,
		Err:     err,
	}
}

// Error implements the error interface for PatternError.
func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern segment %q in %q: %v", e.Segment, e.Pattern, e.Err)
}

// Unwrap returns the underlying regexp error.
func (e *PatternError) Unwrap() error {
	return e.Err
}

// segment is one element of a split pattern.
type segment struct {
	raw      string // text with escaped backslashes replaced by sentinel
	wildcard bool
}

// splitPattern breaks a pattern into segments. Empty segments produced by
// leading, trailing or doubled separators are dropped.
func splitPattern(pattern string) []segment {
	encoded := strings.ReplaceAll(pattern, escapedBackslash, sentinel)
	parts := strings.FieldsFunc(encoded, isSeparator)

	segments := make([]segment, 0, len(parts))
	for _, p := range parts {
		segments = append(segments, segment{raw: p, wildcard: p == Wildcard})
	}
	return segments
}

func isSeparator(r rune) bool {
	return r == '/' || r == filepath.Separator
}

// literal returns the segment as a file name. Segments carrying an escaped
// backslash never name a file verbatim.
func (s segment) literal() (string, bool) {
	if s.wildcard || strings.Contains(s.raw, sentinel) {
		return "", false
	}
	return s.raw, true
}

// source returns the regular expression text of the segment. Each escaped
// backslash becomes a single regex backslash.
func (s segment) source() string {
	if s.wildcard {
		return ".*"
	}
	return strings.ReplaceAll(s.raw, sentinel, `\`)
}

// literalPath joins segments onto dir when every segment is a plain name.
func literalPath(dir string, segs []segment) (string, bool) {
	parts := make([]string, 0, len(segs)+1)
	parts = append(parts, dir)
	for _, s := range segs {
		name, ok := s.literal()
		if !ok {
			return "", false
		}
		parts = append(parts, name)
	}
	return filepath.Join(parts...), true
}

// trimWildcards drops leading wildcard segments; "**/**" means the same as "**".
func trimWildcards(segs []segment) []segment {
	for len(segs) > 0 && segs[0].wildcard {
		segs = segs[1:]
	}
	return segs
}

// compileSegment anchors the segment so it must match a whole entry name.
func compileSegment(s segment) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + s.source() + ")$")
}
