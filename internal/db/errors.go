package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for store operations. Use errors.Is() in calling code.
var (
	// ErrStoreUnavailable indicates the vector store cannot be reached.
	// Retrieval callers must treat this as "no context" and degrade the
	// chat turn rather than abort it.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates an embedding vector does not match
	// the dimension the index was created with. This is a hard error,
	// never degraded.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// connectError tags an initial connection failure as store unavailability
// while keeping the dial error visible for operators.
func connectError(err error) error {
	return fmt.Errorf("connect: %w", errors.Join(ErrStoreUnavailable, err))
}

// wrapStoreError tags connection-level failures with ErrStoreUnavailable so
// callers can distinguish "store down" from a bad query. Query-level errors
// pass through unchanged.
func wrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrStoreUnavailable, err)
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"connection closed",
		"broken pipe",
		"no such host",
		"websocket: close",
		"i/o timeout",
		"eof",
	} {
		if strings.Contains(msg, pattern) {
			return errors.Join(ErrStoreUnavailable, err)
		}
	}
	return err
}
