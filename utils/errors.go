package utils

import (
	"errors"
	"fmt"
)

// Taksonomi error inti. Controller memetakan error ini ke kode HTTP lewat
// StatusFromError; commit batch sync mengubahnya menjadi record per-item.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrNetwork    = errors.New("network error")
)

// ValidationErrorf membungkus pesan ke dalam ErrValidation.
func ValidationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundErrorf membungkus pesan ke dalam ErrNotFound.
func NotFoundErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// ConflictErrorf membungkus pesan ke dalam ErrConflict.
func ConflictErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// StatusFromError memetakan taksonomi error ke kode HTTP.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return 400
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrConflict):
		return 409
	default:
		return 500
	}
}
