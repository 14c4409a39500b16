package repository

import "errors"

// Sentinel kinds for catalog store errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
