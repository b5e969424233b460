package enforcement

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is wrapped by platform errors caused by missing
	// privileges or role hierarchy.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound is wrapped by platform errors for unknown ids.
	ErrNotFound = errors.New("not found")

	ErrSelfTarget       = errors.New("cannot target yourself")
	ErrTargetOutranks   = errors.New("target outranks invoker")
	ErrTargetIsBot      = errors.New("target is a bot")
	ErrTargetNotMember  = errors.New("target is not a member of the guild")
	ErrTimeoutForbidden = errors.New("missing permission to time out member")
)

// ValidationError rejects an administrator command before any side effect.
type ValidationError struct {
	Err    error
	UserID string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid target %s: %v", e.UserID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, userID string) error {
	return &ValidationError{Err: err, UserID: userID}
}

// IsPermissionDenied reports whether err was caused by missing privileges.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsNotFound reports whether err was caused by an unknown id.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
