package insight

import (
	"errors"
	"fmt"
)

// Error taxonomy. Only ErrValidation ever reaches a caller as a failure;
// provider, parse, and cache errors are absorbed by fallback, stale-cache,
// or degraded responses further up the stack.
var (
	ErrValidation = errors.New("validation failed")
	ErrProvider   = errors.New("provider failure")
	ErrParse      = errors.New("malformed provider response")
	ErrCache      = errors.New("cache unavailable")
)

// NewValidationError wraps ErrValidation with a reason so callers can both
// match with errors.Is and show the message.
func NewValidationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

// IsRetriableWithFallback reports whether an upstream error should trigger
// the fallback provider. Parse errors count as provider failures.
func IsRetriableWithFallback(err error) bool {
	return errors.Is(err, ErrProvider) || errors.Is(err, ErrParse)
}
