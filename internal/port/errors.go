package port

import (
	"errors"
	"fmt"
)

// Sentinel errors used across ports.
var (
	ErrRateLimited         = errors.New("rate limited")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrProjectNotFound     = errors.New("project not found")
	ErrCommitNotFound      = errors.New("commit not found")
	ErrFileNotFound        = errors.New("file not found")
)

// RateLimitError classifies an upstream failure as a rate-limit rejection,
// carrying which service throttled us and the HTTP status if known.
// Permanent marks quota-exhaustion responses that no amount of backoff will
// recover from, as opposed to ordinary throttling.
type RateLimitError struct {
	Service   string
	Status    int
	Permanent bool
	Err       error
}

func (e *RateLimitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s rate limited (status %d): %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s rate limited (status %d)", e.Service, e.Status)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRateLimited) match any RateLimitError.
func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// IsRateLimit reports whether err is classified as a rate-limit failure.
func IsRateLimit(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsPermanentRateLimit reports whether err is a rate-limit failure marked as
// quota exhaustion. Such failures are never retried.
func IsPermanentRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl) && rl.Permanent
}
