// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity does not exist (or is hidden
	// from the caller — handlers render it identically to forbidden).
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredential indicates a malformed, expired or revoked credential.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrInactiveAccount indicates a valid credential for a deactivated account.
	ErrInactiveAccount = errors.New("inactive account")

	// ErrForbidden indicates a valid principal attempting an action it is not
	// allowed to perform.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates malformed input rejected before touching storage.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a lost compare-and-set race; the caller should
	// re-read and retry.
	ErrConflict = errors.New("conflict")
)

// InvalidTransitionError reports an illegal inquiry status edge. It wraps no
// partial state: the inquiry is left exactly as it was.
type InvalidTransitionError struct {
	Current   string
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.Current, e.Requested)
}

// InvalidTransition builds the error for a rejected edge.
func InvalidTransition(current, requested string) error {
	return &InvalidTransitionError{Current: current, Requested: requested}
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}
