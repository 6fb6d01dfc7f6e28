package taiko

import (
	"testing"
	"time"
)

func TestWriteOptions(t *testing.T) {
	target := CSS("#email")

	var o writeOpts
	Into(target)(&o)
	WaitFor(250 * time.Millisecond)(&o)

	if o.into == nil || o.into.Description != target.Description {
		t.Fatalf("expected Into to set the target selector")
	}
	if o.delay != 250*time.Millisecond {
		t.Errorf("expected WaitFor to set delay, got %s", o.delay)
	}
}

func TestTimeoutIntervalSecsIdentity(t *testing.T) {
	if TimeoutSecs(5) != 5 {
		t.Errorf("expected TimeoutSecs to be an identity conversion")
	}
	if IntervalSecs(1.5) != 1.5 {
		t.Errorf("expected IntervalSecs to be an identity conversion")
	}
}

func TestWithAttachesRelativeConstraints(t *testing.T) {
	anchor := Text("Username")
	combined := With(Button("Submit"), ToRightOf(anchor), Near(anchor))

	if len(combined.Relatives) != 2 {
		t.Fatalf("expected 2 relative constraints, got %d", len(combined.Relatives))
	}
}
