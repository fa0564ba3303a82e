package settings

import "errors"

var (
	// ErrMissingSetting is returned when a mandatory input is absent after synonym resolution.
	ErrMissingSetting = errors.New("missing required setting")

	// ErrSynonymConflict is returned when both halves of a synonym pair are set to different values.
	ErrSynonymConflict = errors.New("conflicting synonyms")

	// ErrBrittleConflict is returned when the operator set a value the stack cannot work with.
	ErrBrittleConflict = errors.New("conflicting fixed setting")

	// ErrUnsupportedTLSMode is returned for an https URL with an unknown HTTPS mode.
	ErrUnsupportedTLSMode = errors.New("unsupported TLS mode")

	// ErrInvalidURL is returned when URL cannot be parsed as an http or https URL.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrInvalidSettings is returned when the derived settings fail validation.
	ErrInvalidSettings = errors.New("invalid settings")
)
