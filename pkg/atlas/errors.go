package atlas

import (
	"errors"
	"fmt"
)

// ErrUnavailable matches every error returned by RunPrompt.
var ErrUnavailable = errors.New("atlas unavailable")

// UnavailableError reports why a prompt could not be served through Atlas.
// Lower-level faults are flattened into Cause so no driver error type leaks
// past the runner.
type UnavailableError struct {
	Reason string
	Cause  string
}

func (e *UnavailableError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("atlas unavailable: %s: %s", e.Reason, e.Cause)
	}
	return fmt.Sprintf("atlas unavailable: %s", e.Reason)
}

// Is reports whether target is ErrUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// unavailable builds an UnavailableError, keeping err's text as the cause.
func unavailable(reason string, err error) *UnavailableError {
	u := &UnavailableError{Reason: reason}
	if err != nil {
		u.Cause = err.Error()
	}
	return u
}

// asUnavailable passes UnavailableErrors through and wraps anything else.
func asUnavailable(reason string, err error) *UnavailableError {
	var u *UnavailableError
	if errors.As(err, &u) {
		return u
	}
	return unavailable(reason, err)
}

// IsUnavailable reports whether err is, or wraps, an UnavailableError.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
