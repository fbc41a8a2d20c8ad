package gallery

import "errors"

// Sentinel errors for the boundary layer to map onto HTTP status codes.
// Callers use errors.Is rather than matching error strings.
var (
	// ErrInvalidPath indicates an empty, unsafe, or traversal-attempting
	// filename. Maps to 403 without disclosing filesystem state.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNotFound indicates a validated path that does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrWrongType indicates an extension mismatch for the requested
	// operation. Maps to 400.
	ErrWrongType = errors.New("wrong file type")
)
