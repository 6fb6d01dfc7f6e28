// Package waiter implements the "did the page settle?" oracle described in
// spec.md §4.5: a dynamically-growing set of bus events an action must see
// resolve before it can be considered complete, with a short "did anything
// even arm?" window and an overall deadline.
package waiter

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/taiko-go/taiko/bus"
)

// watchedKinds is the full set of bus events the waiter listens for while
// armed, independent of which subset actually ends up required (Config.Arm).
var watchedKinds = []bus.Kind{
	bus.KindFrameStartedLoading,
	bus.KindFrameStoppedLoading,
	bus.KindLoadEventFired,
	bus.KindDOMContentEventFired,
	bus.KindNetworkIdle,
	bus.KindTargetCreated,
	bus.KindTargetNavigated,
	bus.KindFirstMeaningfulPaint,
	bus.KindXHREvent,
}

// Config parameterizes one call to Wait.
type Config struct {
	// BaseArm are promises required unconditionally — e.g. goto and reload
	// always require domContentEventFired, loadEventFired,
	// frameStoppedLoading and networkIdle (spec.md §4.5). A plain click
	// passes an empty BaseArm: nothing is required unless the action
	// itself triggers navigation-related events.
	BaseArm []bus.Kind

	// WaitForStart bounds how long Wait waits for the armed set to become
	// non-empty before concluding the action caused no navigation.
	WaitForStart time.Duration
	// Timeout bounds the full wait once something is armed.
	Timeout time.Duration

	// RootReady, if non-nil, is polled after every armed promise resolves;
	// Wait does not return until it reports true (spec.md §4.5 step 3:
	// "plus a root-id-available check").
	RootReady func() bool
}

// Waiter arms bus subscriptions and waits for page settlement.
type Waiter struct {
	bus *bus.Bus
}

// New constructs a Waiter bound to b.
func New(b *bus.Bus) *Waiter { return &Waiter{bus: b} }

// Wait installs listeners, then blocks per Config and returns whether any
// promise armed (i.e. whether the action appears to have caused
// navigation). Listeners are always torn down before returning — the
// listener-hygiene invariant of spec.md §5/§8 — on every exit path
// including ctx cancellation and timeout.
func (w *Waiter) Wait(ctx context.Context, cfg Config) (navigated bool, err error) {
	sub := w.bus.Subscribe(watchedKinds...)
	defer sub.Close()

	armed := make(map[bus.Kind]bool, 4)
	resolved := make(map[bus.Kind]bool, 4)
	for _, k := range cfg.BaseArm {
		armed[k] = true
	}

	allResolved := func() bool {
		if len(armed) == 0 {
			return false
		}
		for k := range armed {
			if !resolved[k] {
				return false
			}
		}
		return true
	}

	// Phase 1: wait for the armed set to become non-empty, or waitForStart
	// to elapse — whichever comes first. Preserves the "resolves when the
	// array becomes non-empty, not when promises resolve" behavior named in
	// DESIGN.md Open Question (a).
	startDeadline := time.Now().Add(cfg.WaitForStart)
	for len(armed) == 0 {
		remaining := time.Until(startDeadline)
		if remaining <= 0 {
			log.Debug().Msg("waiter: nothing armed within waitForStart, action caused no navigation")
			return false, nil
		}
		select {
		case ev := <-sub.C():
			applyArming(armed, ev.Kind)
			if armed[ev.Kind] {
				resolved[ev.Kind] = true
			}
		case <-time.After(remaining):
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	// Phase 2: wait for every armed promise to resolve, extending the armed
	// set as further events arrive, bounded by Timeout.
	deadline := time.Now().Add(cfg.Timeout)
	for !allResolved() {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true, fmt.Errorf("navigation timed out after %s", cfg.Timeout)
		}
		select {
		case ev := <-sub.C():
			applyArming(armed, ev.Kind)
			if armed[ev.Kind] {
				resolved[ev.Kind] = true
			}
		case <-time.After(remaining):
			return true, fmt.Errorf("navigation timed out after %s", cfg.Timeout)
		case <-ctx.Done():
			return true, ctx.Err()
		}
	}

	if cfg.RootReady != nil {
		deadline := time.Now().Add(cfg.Timeout)
		for !cfg.RootReady() {
			if time.Now().After(deadline) {
				return true, fmt.Errorf("navigation timed out after %s waiting for root DOM node", cfg.Timeout)
			}
			select {
			case <-time.After(20 * time.Millisecond):
			case <-ctx.Done():
				return true, ctx.Err()
			}
		}
	}

	return true, nil
}

// applyArming implements the spec.md §4.5 arming table: certain events, on
// arrival, extend the armed set with further required promises.
func applyArming(armed map[bus.Kind]bool, k bus.Kind) {
	switch k {
	case bus.KindFrameStartedLoading:
		armed[bus.KindLoadEventFired] = true
		armed[bus.KindFrameStoppedLoading] = true
	case bus.KindTargetCreated:
		armed[bus.KindTargetNavigated] = true
	case bus.KindXHREvent:
		armed[bus.KindNetworkIdle] = true
	}
}
