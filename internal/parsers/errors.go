// Package parsers converts raw probe stdout into typed, immutable
// records. Every parser in this package is pure, total, and
// deterministic: the same input bytes always produce the same result,
// and malformed input yields a ParseError rather than a panic.
package parsers

import "fmt"

// Reason is the closed set of ParseError reasons.
type Reason string

const (
	ReasonMissingSection    Reason = "MissingSection"
	ReasonMalformedRow      Reason = "MalformedRow"
	ReasonUnexpectedValue   Reason = "UnexpectedValue"
	ReasonNumericOutOfRange Reason = "NumericOutOfRange"
)

// ParseError is returned by a parser when its input cannot be
// interpreted. It is a value, not a panic: parsers are total functions.
type ParseError struct {
	ProbeID string
	LineNum int // 0 when not line-specific
	Raw     string
	Reason  Reason
}

func (e *ParseError) Error() string {
	if e.LineNum > 0 {
		return fmt.Sprintf("parsers: %s: %s at line %d: %q", e.ProbeID, e.Reason, e.LineNum, e.Raw)
	}
	return fmt.Sprintf("parsers: %s: %s: %q", e.ProbeID, e.Reason, e.Raw)
}
