package storage

import "errors"

// Module errors.
var (
	ErrEmptyFileName   = errors.New("file name is empty")
	ErrUnknownCategory = errors.New("unknown upload category")
	ErrInvalidMIMEType = errors.New("invalid mime type")
	ErrObjectNotFound  = errors.New("object not found")
)
