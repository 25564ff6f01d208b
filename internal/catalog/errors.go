package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced row does not exist. It is
// produced deliberately by existence checks and is distinct from an empty
// result set, which is a successful outcome.
var ErrNotFound = errors.New("not found")

// NotFoundError identifies which resource was missing. It unwraps to
// ErrNotFound so callers can match either way.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports malformed or contradictory input. It is always
// produced before any store access.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
