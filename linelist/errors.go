package linelist

import (
	"errors"
	"fmt"
	"strings"
)

// Errors wrapped by ParseError and returned by New.
var (
	ErrMissingColumn = errors.New("linelist: missing required column")
	ErrFieldCount    = errors.New("linelist: wrong number of fields")
	ErrBadNumber     = errors.New("linelist: malformed number")
	ErrBadWindow     = errors.New("linelist: invalid window")
	ErrBadContinuum  = errors.New("linelist: malformed continuum windows")
	ErrSyntax        = errors.New("linelist: unbalanced brackets")
	ErrEmptyList     = errors.New("linelist: no lines defined")
)

// ParseError reports where a line-list source could not be parsed.
// Line is 1-based; zero means the error is not tied to a source line.
type ParseError struct {
	Path   string
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder

	b.WriteString("parse line list")

	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}

	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}

	if e.Column != "" {
		fmt.Fprintf(&b, " column %s", e.Column)
	}

	fmt.Fprintf(&b, ": %v", e.Err)

	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }
