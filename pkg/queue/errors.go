package queue

import "errors"

// NonRetryableError marks a handler failure that retrying cannot fix, such as
// a payload that does not decode or a config that fails schema validation.
// The dispatcher fails the job immediately instead of applying the queue's
// backoff policy.
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string { return e.Err.Error() }

func (e *NonRetryableError) Unwrap() error { return e.Err }

// NonRetryable wraps err so the dispatcher fails the job without retries.
func NonRetryable(err error) error {
	return &NonRetryableError{Err: err}
}

// IsNonRetryable reports whether err carries a non-retryable marker.
func IsNonRetryable(err error) bool {
	var nonRetryable *NonRetryableError

	return errors.As(err, &nonRetryable)
}
