package taiko

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/taiko-go/taiko/action"
	"github.com/taiko-go/taiko/bus"
	urlutil "github.com/taiko-go/taiko/internal/utils/url"
	"github.com/taiko-go/taiko/selector"
	"github.com/taiko-go/taiko/waiter"
)

// Result mirrors spec.md §6's ActionResult: a closed struct, not a map
// (Design Note "dynamic bus payloads" / "selector wrapper capabilities").
type Result struct {
	Description string
}

func fromAction(r action.Result, err error) (Result, error) {
	if err != nil {
		return Result{}, wrapActionErr(err)
	}
	return Result{Description: r.Description}, nil
}

// wrapActionErr classifies selector/action package errors into the
// SPEC_FULL.md §8 taiko.Error taxonomy without losing the underlying cause.
func wrapActionErr(err error) error {
	switch err.(type) {
	case *selector.NotFoundError:
		return NewError(CodeElementNotFound, err.Error(), err)
	case *action.ElementCoveredError:
		return NewError(CodeElementCovered, err.Error(), err)
	case *action.TooManyMatchesError:
		return NewError(CodeTooManyMatches, err.Error(), err)
	case *action.NotWritableError:
		return NewError(CodeInvalidOperation, err.Error(), err)
	case *action.UnsupportedOperationError:
		return NewError(CodeInvalidOperation, err.Error(), err)
	case *action.FileNotFoundError:
		return NewError(CodeFileNotFound, err.Error(), err)
	default:
		return NewError(CodeWireError, err.Error(), err)
	}
}

// Goto navigates the current tab to url and waits for the page to settle
// (spec.md §6 "goto"): domContentEventFired, loadEventFired,
// frameStoppedLoading and networkIdle are all required before it returns.
func (b *Browser) Goto(ctx context.Context, rawURL string) (Result, error) {
	url := urlutil.Normalize(rawURL)
	br := b.bridge()
	if err := br.Navigate(ctx, url); err != nil {
		return Result{}, NewError(CodeNavigationFailed, "goto "+url, err)
	}
	_, _, wait := b.current()
	_, err := wait.Wait(ctx, waiter.Config{
		BaseArm: []bus.Kind{
			bus.KindDOMContentEventFired,
			bus.KindLoadEventFired,
			bus.KindFrameStoppedLoading,
			bus.KindNetworkIdle,
		},
		WaitForStart: b.cfg.WaitForStart,
		Timeout:      b.cfg.GotoTimeout,
		RootReady:    b.mgr.RootReady,
	})
	if err != nil {
		return Result{}, NewError(CodeNavigationTimeout, "goto "+url, err)
	}
	return Result{Description: "Navigated to " + url}, nil
}

// Reload reloads the current page. url is accepted but ignored — see
// DESIGN.md Open Question (b): Page.reload takes no URL of its own.
func (b *Browser) Reload(ctx context.Context, url string) (Result, error) {
	br := b.bridge()
	if err := br.Reload(ctx); err != nil {
		return Result{}, NewError(CodeNavigationFailed, "reload", err)
	}
	_, _, wait := b.current()
	_, err := wait.Wait(ctx, waiter.Config{
		BaseArm:      []bus.Kind{bus.KindDOMContentEventFired, bus.KindLoadEventFired, bus.KindFrameStoppedLoading, bus.KindNetworkIdle},
		WaitForStart: b.cfg.WaitForStart,
		Timeout:      b.cfg.GotoTimeout,
		RootReady:    b.mgr.RootReady,
	})
	if err != nil {
		return Result{}, NewError(CodeNavigationTimeout, "reload", err)
	}
	return Result{Description: "Reloaded page"}, nil
}

// GoBack and GoForward walk session history (spec.md §6 "goBack"/"goForward").
func (b *Browser) GoBack(ctx context.Context) (Result, error) {
	br := b.bridge()
	if err := br.GoBack(ctx); err != nil {
		return Result{}, NewError(CodeNavigationFailed, "goBack", err)
	}
	return Result{Description: "Navigated back"}, nil
}

func (b *Browser) GoForward(ctx context.Context) (Result, error) {
	br := b.bridge()
	if err := br.GoForward(ctx); err != nil {
		return Result{}, NewError(CodeNavigationFailed, "goForward", err)
	}
	return Result{Description: "Navigated forward"}, nil
}

// Click, DoubleClick, RightClick, Hover, Focus delegate to the action
// pipeline bound to the current tab (spec.md §4.8, §6).
func (b *Browser) Click(ctx context.Context, sel selector.Selector) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.Click(ctx, sel))
}

func (b *Browser) DoubleClick(ctx context.Context, sel selector.Selector) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.DoubleClick(ctx, sel))
}

func (b *Browser) RightClick(ctx context.Context, sel selector.Selector) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.RightClick(ctx, sel))
}

func (b *Browser) Hover(ctx context.Context, sel selector.Selector) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.Hover(ctx, sel))
}

func (b *Browser) Focus(ctx context.Context, sel selector.Selector) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.Focus(ctx, sel))
}

// Write, Clear, Press implement spec.md §4.9's input verbs.
func (b *Browser) Write(ctx context.Context, text string, opts action.WriteOptions) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.Write(ctx, text, opts))
}

// WriteText is Write's functional-option ergonomic form: taiko.WriteText(ctx,
// text, taiko.Into(sel), taiko.WaitFor(100*time.Millisecond)).
func (b *Browser) WriteText(ctx context.Context, text string, opts ...WriteOption) (Result, error) {
	var o writeOpts
	for _, apply := range opts {
		apply(&o)
	}
	return b.Write(ctx, text, action.WriteOptions{Into: o.into, Delay: o.delay})
}

func (b *Browser) Clear(ctx context.Context, sel *selector.Selector) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.Clear(ctx, sel))
}

func (b *Browser) Press(ctx context.Context, keys []string, delay time.Duration) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.Press(ctx, keys, delay))
}

// ScrollTo, ScrollRight, ScrollLeft, ScrollUp, ScrollDown (spec.md §6).
func (b *Browser) ScrollTo(ctx context.Context, sel selector.Selector) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.ScrollTo(ctx, sel))
}

func (b *Browser) ScrollRight(ctx context.Context, px float64) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.ScrollRight(ctx, px))
}

func (b *Browser) ScrollLeft(ctx context.Context, px float64) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.ScrollLeft(ctx, px))
}

func (b *Browser) ScrollUp(ctx context.Context, px float64) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.ScrollUp(ctx, px))
}

func (b *Browser) ScrollDown(ctx context.Context, px float64) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.ScrollDown(ctx, px))
}

// Exists, Text, Value, are thin wrappers over the selector engine
// (spec.md §4.6 "exists"/"text"/"$.value").
func (b *Browser) Exists(ctx context.Context, sel selector.Selector, timeoutSecs float64) (bool, error) {
	engine, _, _ := b.current()
	return engine.Exists(ctx, sel, timeoutSecs)
}

func (b *Browser) Text(ctx context.Context, sel selector.Selector, timeoutSecs float64) (string, error) {
	engine, _, _ := b.current()
	s, err := engine.GetText(ctx, sel, timeoutSecs)
	if err != nil {
		return "", wrapActionErr(err)
	}
	return s, nil
}

func (b *Browser) Value(ctx context.Context, sel selector.Selector, timeoutSecs float64) (string, error) {
	engine, _, _ := b.current()
	s, err := engine.GetValue(ctx, sel, timeoutSecs)
	if err != nil {
		return "", wrapActionErr(err)
	}
	return s, nil
}

// Evaluate runs expr against the page, or against sel's first match when
// sel is non-nil, optionally waiting for navigation the script may trigger
// (spec.md §5 supplemented "evaluate").
func (b *Browser) Evaluate(ctx context.Context, sel *selector.Selector, expr string, awaitNavigation bool) (any, error) {
	engine, _, wait := b.current()
	br := b.bridge()

	var nodeIDPtr *selector.NodeID
	if sel != nil {
		id, err := engine.Get(ctx, *sel, 0)
		if err != nil {
			return nil, wrapActionErr(err)
		}
		nodeIDPtr = &id
	}

	result, err := br.Evaluate(ctx, nodeIDPtr, expr)
	if err != nil {
		return nil, NewError(CodeInvalidOperation, "evaluate", err)
	}

	if awaitNavigation {
		if _, err := wait.Wait(ctx, waiter.Config{WaitForStart: b.cfg.WaitForStart, Timeout: b.cfg.NavigationTimeout, RootReady: b.mgr.RootReady}); err != nil {
			return result, NewError(CodeNavigationTimeout, "evaluate", err)
		}
	}
	return result, nil
}

// Screenshot captures the viewport (or the full scrollable page when
// fullPage is true) and either writes it to a Screenshot-<unixMs>.png file
// in the current directory or returns the raw PNG bytes when toFile is
// false (spec.md §6 Filesystem).
func (b *Browser) Screenshot(ctx context.Context, fullPage, toFile bool) (Result, []byte, error) {
	br := b.bridge()
	data, err := br.Screenshot(ctx, fullPage)
	if err != nil {
		return Result{}, nil, NewError(CodeInvalidOperation, "screenshot", err)
	}
	if !toFile {
		return Result{Description: "Captured screenshot"}, data, nil
	}
	name := fmt.Sprintf("Screenshot-%d.png", screenshotStamp())
	if err := os.WriteFile(name, data, 0644); err != nil {
		return Result{}, nil, NewError(CodeFileNotFound, "write screenshot "+name, err)
	}
	return Result{Description: "Saved " + name}, nil, nil
}

// screenshotStamp supplies the file-name timestamp: the current time in Unix
// milliseconds via time.Now.
var screenshotStamp = func() int64 { return time.Now().UnixMilli() }

// Highlight flashes an Overlay highlight box around sel's first match for
// roughly duration (spec.md §5 supplemented "highlight"). It arms no
// waiter: purely a debugging aid.
func (b *Browser) Highlight(ctx context.Context, sel selector.Selector, duration time.Duration) (Result, error) {
	engine, _, _ := b.current()
	id, err := engine.Get(ctx, sel, 0)
	if err != nil {
		return Result{}, wrapActionErr(err)
	}
	br := b.bridge()
	if err := br.HighlightNode(ctx, id); err != nil {
		return Result{}, NewError(CodeInvalidOperation, "highlight", err)
	}
	if duration > 0 {
		go func() {
			time.Sleep(duration)
			_ = br.ClearHighlight(context.Background())
		}()
	}
	return Result{Description: "Highlighted " + sel.Description}, nil
}

// SetViewport applies Emulation.setDeviceMetricsOverride (spec.md §5
// supplemented "setViewPort").
func (b *Browser) SetViewport(ctx context.Context, width, height int, deviceScaleFactor float64, mobile bool) (Result, error) {
	br := b.bridge()
	if deviceScaleFactor <= 0 {
		deviceScaleFactor = 1
	}
	if err := br.SetViewport(ctx, width, height, deviceScaleFactor, mobile); err != nil {
		return Result{}, NewError(CodeInvalidOperation, "setViewPort", err)
	}
	return Result{Description: fmt.Sprintf("Set viewport to %dx%d", width, height)}, nil
}

// Attach uploads path into the file <input> matched by sel (spec.md §6
// "attach").
func (b *Browser) Attach(ctx context.Context, sel selector.Selector, path string) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.Attach(ctx, sel, path))
}

// Check, Uncheck, Deselect set a checkbox/radio/combo box's checked state
// (spec.md §3 "Wrapped element").
func (b *Browser) Check(ctx context.Context, sel selector.Selector) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.Check(ctx, sel))
}

func (b *Browser) Uncheck(ctx context.Context, sel selector.Selector) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.Uncheck(ctx, sel))
}

func (b *Browser) Deselect(ctx context.Context, sel selector.Selector) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.Deselect(ctx, sel))
}

// Select picks value in the combo box matched by sel (spec.md §3 "Wrapped
// element": select(value)).
func (b *Browser) Select(ctx context.Context, sel selector.Selector, value string) (Result, error) {
	_, pipe, _ := b.current()
	return fromAction(pipe.Select(ctx, sel, value))
}

// IsChecked and IsSelected report a checkbox/radio/combo box option's
// current state (spec.md §3 "Wrapped element").
func (b *Browser) IsChecked(ctx context.Context, sel selector.Selector) (bool, error) {
	_, pipe, _ := b.current()
	ok, err := pipe.IsChecked(ctx, sel)
	if err != nil {
		return false, wrapActionErr(err)
	}
	return ok, nil
}

func (b *Browser) IsSelected(ctx context.Context, sel selector.Selector) (bool, error) {
	_, pipe, _ := b.current()
	ok, err := pipe.IsSelected(ctx, sel)
	if err != nil {
		return false, wrapActionErr(err)
	}
	return ok, nil
}
