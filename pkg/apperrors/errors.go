package apperrors

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrNoSnapshot     = errors.New("no schema snapshot available")
	ErrNoMappedFields = errors.New("template has no mapped fields")
	ErrInvalidMapping = errors.New("invalid mapping entry")
)
