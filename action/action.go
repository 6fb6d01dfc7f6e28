// Package action implements the resilient action pipeline of spec.md §4.8:
// resolve candidates, scroll into view, center-point occlusion check,
// dispatch the input event, then hand off to the Navigation Waiter.
package action

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/taiko-go/taiko/bus"
	"github.com/taiko-go/taiko/selector"
	"github.com/taiko-go/taiko/waiter"
)

// MouseButton names the button argument to Input.dispatchMouseEvent.
type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// Executor is everything the action pipeline needs from a live page beyond
// element lookup (selector.Evaluator, which Executor embeds): geometry,
// hit-testing, and input dispatch over the CDP Input/DOM/Runtime domains.
// The taiko package's bridge type supplies the concrete implementation.
type Executor interface {
	selector.Evaluator

	// ScrollIntoView calls Element.scrollIntoViewIfNeeded on id.
	ScrollIntoView(ctx context.Context, id selector.NodeID) error
	// ElementFromPoint runs document.elementFromPoint(x,y) and returns the
	// hit node id, or ok=false if the point hit nothing (e.g. outside the
	// viewport).
	ElementFromPoint(ctx context.Context, x, y float64) (id selector.NodeID, ok bool, err error)
	// Contains reports whether node is ancestor itself or a descendant of it.
	Contains(ctx context.Context, ancestor, node selector.NodeID) (bool, error)
	// Opacity returns id's computed CSS opacity (0..1).
	Opacity(ctx context.Context, id selector.NodeID) (float64, error)

	// DispatchMouseEvent sends one Input.dispatchMouseEvent.
	DispatchMouseEvent(ctx context.Context, kind string, x, y float64, button MouseButton, clickCount int) error
	// Focus calls DOM.focus on id.
	Focus(ctx context.Context, id selector.NodeID) error
	// DocumentHasFocus runs document.hasFocus().
	DocumentHasFocus(ctx context.Context) (bool, error)
	// ActiveElementWritable reports whether document.activeElement accepts
	// text input and isn't disabled (spec.md §4.9).
	ActiveElementWritable(ctx context.Context) (bool, error)
	// ActiveElementIsPassword reports whether document.activeElement is a
	// password-type input, for write()'s description masking.
	ActiveElementIsPassword(ctx context.Context) (bool, error)
	// InsertChar dispatches one Input.dispatchKeyEvent(char) at the active
	// element.
	InsertChar(ctx context.Context, ch rune) error
	// DispatchKey presses (down=true) or releases (down=false) a named key
	// (e.g. "Backspace", "Enter", "Tab").
	DispatchKey(ctx context.Context, key string, down bool) error
	// SelectActiveElementText selects the active element's full text
	// (triple-click equivalent) ahead of clear().
	SelectActiveElementText(ctx context.Context) error

	// ScrollBy scrolls window.scrollBy(dx, dy).
	ScrollBy(ctx context.Context, dx, dy float64) error

	// IsFileInput reports whether id is an <input type="file">, used by the
	// click path's §4.8 step-4 file-input guard (spec.md §7 InvalidOperation).
	IsFileInput(ctx context.Context, id selector.NodeID) (bool, error)
	// SetFileInputFiles uploads paths into id via DOM.setFileInputFiles
	// (spec.md §6 "attach").
	SetFileInputFiles(ctx context.Context, id selector.NodeID, paths []string) error

	// IsChecked reads id's .checked property (spec.md §3 "Wrapped element":
	// isChecked/isSelected).
	IsChecked(ctx context.Context, id selector.NodeID) (bool, error)
	// SetChecked sets id's .checked property, dispatching input/change
	// events (spec.md §3 "Wrapped element": check/uncheck/deselect).
	SetChecked(ctx context.Context, id selector.NodeID, checked bool) error
	// SelectOption sets id's .value (a <select>) and dispatches input/change
	// events (spec.md §3 "Wrapped element": combo box select(value)).
	SelectOption(ctx context.Context, id selector.NodeID, value string) error
}

// Config parameterizes a Pipeline (spec.md §9 config table).
type Config struct {
	ElementsToMatch int
	ActionTimeout   time.Duration // deadline for resolving + occlusion-checking candidates
	FocusPoll       time.Duration // write()'s document.hasFocus() poll interval, default 500ms
	FocusTimeout    time.Duration
	CharDelay       time.Duration // default inter-character delay for write()
	WaitForStart    time.Duration
	NavTimeout      time.Duration
	// RootReady, threaded into every waiter.Config this package builds,
	// reports whether the current target's root DOM node id is available
	// (spec.md §4.5 step 3 "root-id-available check").
	RootReady func() bool
}

// Pipeline is the resilient action pipeline bound to one page/target.
type Pipeline struct {
	exec   Executor
	engine *selector.Engine
	wait   *waiter.Waiter
	bus    *bus.Bus
	cfg    Config
}

// New constructs a Pipeline.
func New(exec Executor, engine *selector.Engine, wait *waiter.Waiter, b *bus.Bus, cfg Config) *Pipeline {
	if cfg.ElementsToMatch <= 0 {
		cfg.ElementsToMatch = 10
	}
	if cfg.FocusPoll <= 0 {
		cfg.FocusPoll = 500 * time.Millisecond
	}
	if cfg.CharDelay < 0 {
		cfg.CharDelay = 0
	}
	return &Pipeline{exec: exec, engine: engine, wait: wait, bus: b, cfg: cfg}
}

// Result mirrors spec.md §6's ActionResult: a closed struct rather than a
// map (Design Note "dynamic bus payloads"/"selector wrapper capabilities").
type Result struct {
	Description string
}

// ElementCoveredError is returned when every candidate fails the occlusion
// test (spec.md §7 error table: "covered by other element").
type ElementCoveredError struct{ Description string }

func (e *ElementCoveredError) Error() string {
	return fmt.Sprintf("%s is covered by other element", e.Description)
}

// TooManyMatchesError is returned when raw matches were truncated at
// elementsToMatch and none of the truncated set was hit-testable
// (spec.md §4.6 edge case).
type TooManyMatchesError struct{}

func (e *TooManyMatchesError) Error() string {
	return "Please provide a better selector, too many matches."
}

// NotWritableError is returned by write()/clear() when the active element
// cannot accept text (spec.md §4.9).
type NotWritableError struct{}

func (e *NotWritableError) Error() string { return "active element is not writable" }

// UnsupportedOperationError is returned when a verb is used against an
// element it doesn't support — currently just the click path's file-input
// guard (spec.md §4.8 step 4 / §7 InvalidOperation).
type UnsupportedOperationError struct{ Op string }

func (e *UnsupportedOperationError) Error() string {
	return "Unsupported operation, use `" + e.Op + "`"
}

// FileNotFoundError reports a local path passed to Attach that doesn't
// exist (spec.md §7 "FileNotFound").
type FileNotFoundError struct{ Path string }

func (e *FileNotFoundError) Error() string { return "file not found: " + e.Path }

// resolveForClick resolves sel, returning its candidates plus whether the
// raw match count was truncated at elementsToMatch.
func (p *Pipeline) resolveForClick(ctx context.Context, sel selector.Selector) ([]selector.NodeID, bool, error) {
	ids, truncated, err := p.engine.ResolveDetailed(ctx, sel)
	if err != nil {
		return nil, false, err
	}
	if len(ids) == 0 {
		return nil, false, &selector.NotFoundError{Description: sel.Description}
	}
	return ids, truncated, nil
}

// findHitTestable walks candidates in order, scrolling each into view and
// running the center-point occlusion check (spec.md §4.8 step 3), and
// returns the first that passes along with its viewport center point.
func (p *Pipeline) findHitTestable(ctx context.Context, candidates []selector.NodeID) (id selector.NodeID, x, y float64, ok bool, err error) {
	for _, cand := range candidates {
		if err := p.exec.ScrollIntoView(ctx, cand); err != nil {
			log.Debug().Err(err).Msg("action: scrollIntoViewIfNeeded failed, continuing")
		}
		rect, err := p.exec.Rect(ctx, cand)
		if err != nil {
			continue
		}
		cx, cy := rect.CenterX(), rect.CenterY()

		passed, err := p.occluded(ctx, cand, candidates, cx, cy)
		if err != nil {
			continue
		}
		if passed {
			return cand, cx, cy, true, nil
		}
	}
	return 0, 0, 0, false, nil
}

// occluded implements spec.md §4.8's tolerant hit test: the point at the
// candidate's center passes iff document.elementFromPoint returns the
// candidate itself, a descendant of it, something with opacity<0.1 (either
// side — a transparent overlay or a transparent candidate), or a
// descendant of any of the other candidates (selector ambiguity
// tolerated).
func (p *Pipeline) occluded(ctx context.Context, candidate selector.NodeID, siblings []selector.NodeID, x, y float64) (bool, error) {
	hit, ok, err := p.exec.ElementFromPoint(ctx, x, y)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if hit == candidate {
		return true, nil
	}
	if isDesc, err := p.exec.Contains(ctx, candidate, hit); err == nil && isDesc {
		return true, nil
	}
	if op, err := p.exec.Opacity(ctx, candidate); err == nil && op < 0.1 {
		return true, nil
	}
	if op, err := p.exec.Opacity(ctx, hit); err == nil && op < 0.1 {
		return true, nil
	}
	for _, sib := range siblings {
		if sib == candidate {
			continue
		}
		if isDesc, err := p.exec.Contains(ctx, sib, hit); err == nil && isDesc {
			return true, nil
		}
	}
	return false, nil
}
