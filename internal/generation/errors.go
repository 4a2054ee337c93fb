package generation

import "errors"

// Common errors returned by the generation package. The three
// provider-side failures are kept distinguishable because the task
// queue's retry policy treats them differently from deterministic
// failures.
var (
	// ErrProviderFailure is returned when the provider fails for a
	// general, usually transient reason.
	ErrProviderFailure = errors.New("content provider failure")

	// ErrRateLimited is returned when the provider throttles the
	// request. Retried with exponential backoff.
	ErrRateLimited = errors.New("content provider rate limit exceeded")

	// ErrQuotaExceeded is returned when the account's quota is spent.
	// Retried in case the quota window rolls over.
	ErrQuotaExceeded = errors.New("content provider quota exceeded")

	// ErrInvalidResponse is returned when the provider response cannot
	// be parsed or is malformed. Not retried.
	ErrInvalidResponse = errors.New("invalid response from content provider")

	// ErrContentBlocked is returned when the provider blocks the
	// content via safety filters. Not retried.
	ErrContentBlocked = errors.New("content blocked by provider safety filters")

	// ErrUniquenessTooLow is returned when generated text scores below
	// the configured uniqueness threshold against its sources. The
	// score is deterministic for identical inputs, so the task fails
	// without retry.
	ErrUniquenessTooLow = errors.New("generated content below uniqueness threshold")

	// ErrInvalidConfig is returned when the generator configuration is
	// invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// IsTransient reports whether the error is a provider-side failure
// worth retrying with backoff.
func IsTransient(err error) bool {
	return errors.Is(err, ErrProviderFailure) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrQuotaExceeded)
}
