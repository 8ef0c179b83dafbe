package catalog

import "errors"

var (
	// ErrUnavailable indicates the catalog could not be reached.
	ErrUnavailable = errors.New("catalog unavailable")

	// ErrTimeout indicates a catalog call exceeded its deadline.
	ErrTimeout = errors.New("catalog request timed out")

	// ErrCircuitOpen indicates calls are being shed after repeated failures.
	ErrCircuitOpen = errors.New("catalog circuit open")

	// ErrUnknownAction indicates a feedback write named an action the catalog does not hold.
	ErrUnknownAction = errors.New("unknown action")

	// ErrBadResponse indicates a non-success status or an undecodable body.
	ErrBadResponse = errors.New("bad catalog response")
)
