// Package utils holds small helpers shared by the embedding backends and the matcher.
package utils

import (
	"context"
	"time"
)

// after is swapped in tests to avoid real delays.
var after = time.After

// WaitFor pauses for d and returns early with the context error when ctx ends first.
// Non-positive durations return immediately.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-after(d):
		return nil
	}
}
