package waiter

import (
	"context"
	"testing"
	"time"

	"github.com/taiko-go/taiko/bus"
)

func TestWaitReturnsImmediatelyWhenNothingArms(t *testing.T) {
	b := bus.New()
	w := New(b)

	start := time.Now()
	navigated, err := w.Wait(context.Background(), Config{
		WaitForStart: 50 * time.Millisecond,
		Timeout:      time.Second,
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if navigated {
		t.Fatal("expected navigated=false when nothing armed")
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("took too long to return: %v", elapsed)
	}
	if b.ListenerCount() != 0 {
		t.Fatalf("expected listeners removed after Wait returns, got %d", b.ListenerCount())
	}
}

func TestWaitResolvesBaseArm(t *testing.T) {
	b := bus.New()
	w := New(b)

	go func() {
		time.Sleep(10 * time.Millisecond)
		b.Publish(bus.Event{Kind: bus.KindLoadEventFired})
		b.Publish(bus.Event{Kind: bus.KindFrameStoppedLoading})
		b.Publish(bus.Event{Kind: bus.KindNetworkIdle})
		b.Publish(bus.Event{Kind: bus.KindDOMContentEventFired})
	}()

	navigated, err := w.Wait(context.Background(), Config{
		BaseArm:      []bus.Kind{bus.KindLoadEventFired, bus.KindFrameStoppedLoading, bus.KindNetworkIdle, bus.KindDOMContentEventFired},
		WaitForStart: 500 * time.Millisecond,
		Timeout:      time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !navigated {
		t.Fatal("expected navigated=true")
	}
}

func TestWaitArmingExtendsOnFrameStartedLoading(t *testing.T) {
	b := bus.New()
	w := New(b)

	go func() {
		time.Sleep(5 * time.Millisecond)
		b.Publish(bus.Event{Kind: bus.KindFrameStartedLoading})
		time.Sleep(5 * time.Millisecond)
		b.Publish(bus.Event{Kind: bus.KindLoadEventFired})
		b.Publish(bus.Event{Kind: bus.KindFrameStoppedLoading})
	}()

	navigated, err := w.Wait(context.Background(), Config{
		WaitForStart: 200 * time.Millisecond,
		Timeout:      time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !navigated {
		t.Fatal("expected navigated=true once frameStartedLoading arms loadEventFired+frameStoppedLoading")
	}
}

func TestWaitTimesOut(t *testing.T) {
	b := bus.New()
	w := New(b)

	navigated, err := w.Wait(context.Background(), Config{
		BaseArm:      []bus.Kind{bus.KindLoadEventFired},
		WaitForStart: 10 * time.Millisecond,
		Timeout:      30 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if !navigated {
		t.Fatal("navigated should be true: something was armed (BaseArm), it just never resolved")
	}
}

func TestWaitRootReadyGate(t *testing.T) {
	b := bus.New()
	w := New(b)

	ready := false
	go func() {
		time.Sleep(5 * time.Millisecond)
		b.Publish(bus.Event{Kind: bus.KindLoadEventFired})
		time.Sleep(10 * time.Millisecond)
		ready = true
	}()

	navigated, err := w.Wait(context.Background(), Config{
		BaseArm:      []bus.Kind{bus.KindLoadEventFired},
		WaitForStart: 200 * time.Millisecond,
		Timeout:      time.Second,
		RootReady:    func() bool { return ready },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !navigated {
		t.Fatal("expected navigated=true")
	}
}
