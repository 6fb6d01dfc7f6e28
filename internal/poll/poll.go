// Package poll provides a timer-backed, rate-limited polling helper used by
// the selector engine's Exists/Get resolution and the write()/clear() focus
// wait. It replaces the naive CPU-spin sleep loop a straight port of the
// original library would use (see DESIGN.md, Design Note "sleep busy loop")
// with a real suspension backed by golang.org/x/time/rate.
package poll

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Until calls check repeatedly, paced at interval, until it returns true,
// the deadline elapses, or ctx is cancelled. It always calls check at least
// once before sleeping. Returns an error naming the elapsed budget if the
// deadline is reached without check returning true.
func Until(ctx context.Context, interval, timeout time.Duration, check func() (bool, error)) error {
	if interval <= 0 {
		interval = time.Millisecond
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	deadline := time.Now().Add(timeout)
	for {
		ok, err := check()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("timed out after %s", timeout)
		}

		waitCtx, cancel := context.WithDeadline(ctx, deadline)
		err = limiter.Wait(waitCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("timed out after %s", timeout)
		}
	}
}

// Sleep blocks for d, honoring ctx cancellation. Used by the per-character
// write() delay and press() hold (§4.9) and by the session reconnect loop — a real
// timer-backed suspension, never a spin loop.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
