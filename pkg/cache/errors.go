package cache

import (
	"context"
	"errors"
)

// Sentinel errors for caching operations.
var (
	// ErrInvalidKey is returned for an empty key.
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrConnectionFailed is returned when a remote cache cannot be reached.
	ErrConnectionFailed = errors.New("cache connection failed")

	// ErrOperationTimeout is returned when a remote operation times out.
	ErrOperationTimeout = errors.New("cache operation timed out")
)

// wrapError tags timeouts with ErrOperationTimeout.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrOperationTimeout, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Join(ErrOperationTimeout, err)
	}
	return err
}
