package attribute

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry operations (spec.md section 7).
var (
	// ErrNotAuthorized is returned when the caller may not write the
	// requested attribute: subject writes require caller == subject or
	// caller == admin; object writes require caller == admin.
	ErrNotAuthorized = errors.New("abac: registry: not authorized")

	// ErrLengthMismatch is returned by batch writes when the parallel
	// key/value slices have unequal length. No write in the batch applies.
	ErrLengthMismatch = errors.New("abac: registry: length mismatch")
)

func errBadWidth(want, got int) error {
	return fmt.Errorf("abac: attribute: expected %d bytes, got %d", want, got)
}
