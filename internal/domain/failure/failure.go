// Package failure defines the error taxonomy shared by the jukebox packages.
//
// Package-level errors are marked with one of these sentinels so callers can
// classify any failure with errors.Is regardless of which package produced it.
package failure

import "github.com/cockroachdb/errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrOrphanedReference = errors.New("orphaned reference") // never returned to callers
)

// Mark creates a new error with msg classified as kind.
func Mark(msg string, kind error) error {
	return errors.Mark(errors.New(msg), kind)
}

// Code returns a short machine-readable code for err.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "internal"
	}
}
