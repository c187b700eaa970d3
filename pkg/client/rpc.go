package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// callWithRetry executes an RPC call with retry logic
func (c *Client) callWithRetry(ctx context.Context, operation string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		err := fn(callCtx)
		cancel()

		if err == nil || !isRetryableError(err) {
			return err
		}
		lastErr = err

		if attempt == c.config.MaxRetries {
			break
		}

		// Exponential backoff
		delay := c.config.RetryDelay * time.Duration(float64(attempt+1)*c.config.BackoffFactor)
		slog.Debug("Retrying request.", "op", operation, "attempt", attempt+1, "delay", delay, "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	// Keep the status of the last attempt visible to status.FromError
	st, _ := status.FromError(lastErr)
	return status.Errorf(st.Code(), "operation %s failed after %d attempts: %s",
		operation, c.config.MaxRetries+1, st.Message())
}

// isRetryableError checks if an error is retryable
func isRetryableError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.Aborted:
			return true
		default:
			// Internal errors come from the filesystem and repeat on retry
			return false
		}
	}

	return false
}

