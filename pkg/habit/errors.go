package habit

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateCheckIn means the habit was already checked in for the day.
	ErrDuplicateCheckIn = errors.New("already checked in today")
	// ErrNotFound means the habit does not exist or belongs to another user.
	ErrNotFound = errors.New("habit not found")
	// ErrStoreUnavailable wraps backend failures. Callers decide on retries.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError rejects user input before any store mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
