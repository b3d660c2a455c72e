package auth

import "errors"

// Module errors.
var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNotAdmin     = errors.New("admin access required")
)
