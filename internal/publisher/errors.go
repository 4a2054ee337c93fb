package publisher

import "errors"

// Common errors returned by publisher implementations.
var (
	// ErrConnectionFailed is returned when the publishing destination
	// is unreachable.
	ErrConnectionFailed = errors.New("publishing destination unreachable")

	// ErrAuthRejected is returned when the destination rejects the
	// supplied credentials.
	ErrAuthRejected = errors.New("publishing credentials rejected")
)
