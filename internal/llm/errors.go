package llm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFatalAPI indicates an API error that will not succeed on another
	// model from the same provider (auth, billing). The fallback chain
	// aborts instead of burning through the remaining candidates.
	ErrFatalAPI = errors.New("fatal API error")

	// ErrGenerationExhausted indicates every candidate model failed.
	// Callers must respond with a static apology, never with the raw error.
	ErrGenerationExhausted = errors.New("generation exhausted")
)

// ExhaustedError carries the tried model names for operator logs. The
// detail never reaches end users.
type ExhaustedError struct {
	Models []string
	Err    error // final attempt error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generation exhausted after %d candidates (%s): %v",
		len(e.Models), strings.Join(e.Models, ", "), e.Err)
}

func (e *ExhaustedError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrGenerationExhausted, e.Err}
	}
	return []error{ErrGenerationExhausted}
}

// fatalPatterns are substrings of provider errors that indicate account or
// credential problems rather than transient failures.
var fatalPatterns = []string{
	"credit balance",
	"billing",
	"invalid api key",
	"authentication",
	"unauthorized",
	"401",
	"403",
}

// isFatalAPIError reports whether an error indicates an unrecoverable API
// condition. Transient failures (rate limits, timeouts, 5xx, connection
// errors) are not fatal: the next candidate model may still succeed.
func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range fatalPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// wrapFatalError wraps fatal API errors with ErrFatalAPI so callers can
// check with errors.Is. Non-fatal errors pass through unchanged.
func wrapFatalError(err error) error {
	if err == nil {
		return nil
	}
	if isFatalAPIError(err) {
		return fmt.Errorf("%w: %v", ErrFatalAPI, err)
	}
	return err
}
