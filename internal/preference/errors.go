package preference

import "errors"

var (
	// ErrInvalidRating indicates a rating outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidExport indicates a serialized snapshot failed structural validation.
	ErrInvalidExport = errors.New("invalid preference export")
)
