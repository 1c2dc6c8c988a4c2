package apidocs

import (
	"errors"
	"fmt"
)

// Sentinel failures for parsing and expansion. All of them are wrapped in a
// [DirectiveError] so callers can both errors.Is on the category and read
// the offending directive text and position.
var (
	ErrMalformedDirective  = errors.New("malformed directive")
	ErrUnbalancedTabBlock  = errors.New("unbalanced tab block")
	ErrUnknownDirective    = errors.New("unknown directive")
	ErrUnknownEndpoint     = errors.New("unknown endpoint")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrSpecFileNotFound    = errors.New("spec file not found")
	ErrFixtureNotFound     = errors.New("fixture not found")
)

// DirectiveError reports a failure tied to a specific directive in the page
// source.
type DirectiveError struct {
	// Err is one of the sentinel failures above
	Err error
	// Raw is the directive text exactly as written
	Raw string
	Pos Position
	// Detail optionally names the missing endpoint, language, etc.
	Detail string
}

func (e *DirectiveError) Error() string {
	msg := fmt.Sprintf("%v at line %d, col %d: %q", e.Err, e.Pos.Line, e.Pos.Col, e.Raw)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *DirectiveError) Unwrap() error {
	return e.Err
}

func newDirectiveError(sentinel error, raw string, pos Position, detail string) *DirectiveError {
	return &DirectiveError{
		Err:    sentinel,
		Raw:    raw,
		Pos:    pos,
		Detail: detail,
	}
}
