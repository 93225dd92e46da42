// Package importer holds the error and warning types shared by the format
// adapters (Postman JSON, cURL, .http files, OpenAPI). Every adapter parses
// its input into the canonical collection model or returns a ParseError.
package importer

import (
	"fmt"
	"strings"
)

type ParseErrorKind string

const (
	ErrSchema            ParseErrorKind = "schema"
	ErrSyntax            ParseErrorKind = "syntax"
	ErrUnsupportedMethod ParseErrorKind = "unsupported-method"
)

type ParseError struct {
	Kind    ParseErrorKind
	Line    int
	Column  int
	Field   string
	Message string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		fmt.Fprintf(&b, " (%s)", e.Field)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ", column %d", e.Column)
		}
	} else if e.Column > 0 {
		fmt.Fprintf(&b, " at offset %d", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Warning reports a recoverable per-block issue from an adapter that
// supports partial success.
type Warning struct {
	Block   int
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("block %d (line %d): %s", w.Block, w.Line, w.Message)
	}
	return fmt.Sprintf("block %d: %s", w.Block, w.Message)
}
