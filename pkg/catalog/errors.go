package catalog

import "errors"

var (
	// ErrCardNotFound is returned when no catalog file matches an identifier.
	ErrCardNotFound = errors.New("card not found in catalog")
	// ErrUnknownLanguage is returned for a language with no card directory.
	ErrUnknownLanguage = errors.New("unknown catalog language")
)
