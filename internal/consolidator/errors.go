package consolidator

import (
	"errors"
	"fmt"
)

// WindowError reports an arity or window size outside the supported range.
// It is the only error this package produces: mismatches, empty slots and
// removals of absent kinds are all defined non-error outcomes.
type WindowError struct {
	// Size is the rejected arity or window length.
	Size int
}

// Error implements the error interface. The message fits both producers:
// Register rejects arities outside [1, MaxWindow), TryConsolidate rejects
// window lengths outside [0, MaxWindow).
func (e *WindowError) Error() string {
	return fmt.Sprintf("unsupported window size %d (max %d)", e.Size, MaxWindow-1)
}

// IsWindowError reports whether err is a WindowError.
// Uses errors.As to handle wrapped errors.
func IsWindowError(err error) bool {
	var we *WindowError
	return errors.As(err, &we)
}
