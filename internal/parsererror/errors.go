// Package parsererror defines the error taxonomy of the ingestion pipeline.
// Only structural problems are errors; reconciliation anomalies, missing
// descriptions and unmatched companies are returned as values.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultFormatHint is shown to users whose upload matched no known format.
const DefaultFormatHint = "verify that the file was exported from online banking as Norma 43 (AEB Cuaderno 43) or ISO 20022 CAMT.053 XML"

// UnrecognizedFormatError is returned when the content matches neither
// Norma 43 nor CAMT.053. It is terminal and not retryable.
type UnrecognizedFormatError struct {
	Reason  string
	Hint    string
	Snippet string // Optional: start of the offending content
}

func (e *UnrecognizedFormatError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "unrecognized format"
	}
	msg := reason
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	if e.Snippet != "" {
		msg += fmt.Sprintf(" (content starts with '%s')", e.Snippet)
	}
	return msg
}

// ParseError is a structural failure inside a recognized format. Line and
// RecordType locate Norma 43 problems, Path locates CAMT.053 problems.
type ParseError struct {
	Parser     string
	Line       int
	RecordType string
	Path       string
	Field      string
	Value      string
	Err        error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Parser)
	b.WriteString(": ")
	if loc := e.Location(); loc != "" {
		b.WriteString(loc)
		b.WriteString(": ")
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "failed to parse %s='%s': ", e.Field, e.Value)
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("invalid content")
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Location renders the positional context of the error, e.g.
// "line 7 (record 22)" or "Document/BkToCstmrStmt/Stmt[1]/Acct".
func (e *ParseError) Location() string {
	switch {
	case e.Line > 0 && e.RecordType != "":
		return fmt.Sprintf("line %d (record %s)", e.Line, e.RecordType)
	case e.Line > 0:
		return fmt.Sprintf("line %d", e.Line)
	default:
		return e.Path
	}
}

// ConfigError reports invalid static configuration such as a rule whose
// regular expression does not compile.
type ConfigError struct {
	Source string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration in %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid configuration in %s: %s", e.Source, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether err should be surfaced to the uploader as a
// problem with their file rather than an internal failure.
func IsUserError(err error) bool {
	var formatErr *UnrecognizedFormatError
	var parseErr *ParseError
	return errors.As(err, &formatErr) || errors.As(err, &parseErr)
}
