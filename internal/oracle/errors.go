package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Failure taxonomy for generation calls.
var (
	// ErrConfigMissing indicates the adapter was never given the parameters
	// needed to reach the oracle. Detected before any call is attempted.
	ErrConfigMissing = errors.New("oracle: generation service not configured")

	// ErrResourceExceeded indicates the oracle ran out of execution budget
	// or memory, typically because the board is too large.
	ErrResourceExceeded = errors.New("oracle: resource budget exceeded")

	// ErrServiceError indicates any other oracle-reported failure.
	ErrServiceError = errors.New("oracle: generation service failed")
)

// Substrings that mark a failure as a resource/budget problem. The remote
// service reports errors as opaque text, so classification is by wording.
var resourceMarkers = []string{
	"budget",
	"limit",
	"memory",
	"resource",
	"exceed",
	"too large",
}

// Classify turns an opaque oracle failure into the stable taxonomy. The
// original message is preserved in the wrapped error. Context failures are
// checked first: "context deadline exceeded" would otherwise hit the
// "exceed" marker, and a timed-out call says nothing about the board's size.
func Classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: call aborted: %v", ErrServiceError, err)
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, marker := range resourceMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%w: %s", ErrResourceExceeded, msg)
		}
	}
	return fmt.Errorf("%w: %s", ErrServiceError, msg)
}
