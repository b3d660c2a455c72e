package catalog

import (
	"errors"
	"strings"
)

// Module errors.
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrSubCategoryNotFound  = errors.New("sub-category not found")
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrTeacherNotFound      = errors.New("teacher not found")
	ErrProductImageNotFound = errors.New("product image not found")
	ErrNoPDFFile            = errors.New("product has no pdf file")
)

// BulkError collects every field- and element-level failure found while
// validating a bulk bind, so the client can correct all problems in one
// round-trip. Fields maps a request field name to its failure messages;
// element messages carry the element index.
type BulkError struct {
	Fields map[string][]string
}

// Error implements the error interface.
func (e *BulkError) Error() string {
	var parts []string
	for field, msgs := range e.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, "; "))
	}
	return strings.Join(parts, " | ")
}

// Add appends a failure message for a field.
func (e *BulkError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any failure was recorded.
func (e *BulkError) HasErrors() bool {
	return len(e.Fields) > 0
}
