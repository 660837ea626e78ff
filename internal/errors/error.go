package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryDocument Category = "document"
	CategoryRender   Category = "render"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
	CategorySink     Category = "sink"
	CategoryInput    Category = "input"
)

// Location points into a source document.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// RichtextError is a coded error with an optional source location and a
// fix suggestion.
type RichtextError struct {
	// Code is a unique error identifier (e.g., "E100").
	Code string

	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where in the input the error occurred.
	Location *Location

	// Context holds the input lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RichtextError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RichtextError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a location and the surrounding lines of src.
func (e *RichtextError) WithLocation(file string, src []byte, line, column int) *RichtextError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = contextLines(src, line, 5)
	return e
}

// WithOffset locates a byte offset in src, as reported by
// json.SyntaxError and json.UnmarshalTypeError.
func (e *RichtextError) WithOffset(file string, src []byte, offset int64) *RichtextError {
	if offset < 0 || offset > int64(len(src)) {
		return e
	}
	before := src[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	column := int(offset) - bytes.LastIndexByte(before, '\n')
	return e.WithLocation(file, src, line, column)
}

// WithSuggestion adds a fix suggestion to the error.
func (e *RichtextError) WithSuggestion(s string) *RichtextError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registered explanation.
func (e *RichtextError) WithDetail(d string) *RichtextError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *RichtextError) Wrap(err error) *RichtextError {
	e.Wrapped = err
	return e
}

// contextLines returns the lines of src around targetLine.
func contextLines(src []byte, targetLine, contextSize int) []string {
	if len(src) == 0 || targetLine < 1 {
		return nil
	}
	lines := strings.Split(string(src), "\n")
	start := targetLine - contextSize/2
	if start < 1 {
		start = 1
	}
	end := targetLine + contextSize/2
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return nil
	}
	return lines[start-1 : end]
}

// New creates a RichtextError from a registered error code.
func New(code string) *RichtextError {
	template, ok := registry[code]
	if !ok {
		return &RichtextError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &RichtextError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new RichtextError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *RichtextError {
	return &RichtextError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in a RichtextError with the given code. An err that
// already is or wraps a RichtextError is returned as that error.
func FromError(err error, code string) *RichtextError {
	if err == nil {
		return nil
	}
	var re *RichtextError
	if stderrors.As(err, &re) {
		return re
	}
	return New(code).Wrap(err)
}

// FromDocument classifies a document decoding error. Syntax and type
// errors become E101 with the location inside src.
func FromDocument(err error, file string, src []byte) *RichtextError {
	if err == nil {
		return nil
	}
	var syntax *json.SyntaxError
	if stderrors.As(err, &syntax) {
		return New("E101").Wrap(err).WithOffset(file, src, syntax.Offset)
	}
	var typ *json.UnmarshalTypeError
	if stderrors.As(err, &typ) {
		return New("E101").Wrap(err).WithOffset(file, src, typ.Offset)
	}
	return FromError(err, "E100")
}
