package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	original := after
	defer func() { after = original }()

	var waited []time.Duration
	after = func(d time.Duration) <-chan time.Time {
		waited = append(waited, d)
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}

	for _, d := range []time.Duration{0, -time.Second, 2 * time.Second} {
		if err := WaitFor(context.Background(), d); err != nil {
			t.Fatalf("%v: unexpected error: %v", d, err)
		}
	}

	if len(waited) != 1 || waited[0] != 2*time.Second {
		t.Fatalf("expected a single 2s wait, got %v", waited)
	}
}

func TestWaitForCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, d := range []time.Duration{0, time.Hour} {
		if err := WaitFor(ctx, d); !errors.Is(err, context.Canceled) {
			t.Fatalf("%v: expected context.Canceled, got %v", d, err)
		}
	}
}
