package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/repository"
)

var (
	// ErrBadInput marks malformed or missing request fields.
	ErrBadInput = errors.New("bad input")
	// ErrInvalidCredentials is returned by Authenticate for an unknown
	// username or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindBadInput
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindBadInput:
		return "bad_input"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// KindOf classifies err. An error wrapping several errors, such as a
// work failure joined with its rollback failure, is classified by the
// first one.
func KindOf(err error) Kind {
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := multi.Unwrap(); len(errs) > 0 {
			return KindOf(errs[0])
		}
	}
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrBadInput):
		return KindBadInput
	case errors.Is(err, repository.ErrNotFound):
		return KindNotFound
	case errors.Is(err, repository.ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidCredentials):
		return KindUnauthorized
	case errors.Is(err, repository.ErrForbidden):
		return KindForbidden
	case errors.Is(err, database.ErrResourceUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}

func badInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadInput, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", repository.ErrConflict, fmt.Sprintf(format, args...))
}
