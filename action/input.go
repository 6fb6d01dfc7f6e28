package action

import (
	"context"
	"strings"
	"time"

	"github.com/taiko-go/taiko/internal/poll"
	"github.com/taiko-go/taiko/selector"
)

// WriteOptions parameterizes Write (spec.md §4.9).
type WriteOptions struct {
	// Into, if non-zero-value, is focused before writing. If absent, Write
	// polls document.hasFocus() instead.
	Into *selector.Selector
	// Delay is the inter-character delay; 0 uses cfg.CharDelay.
	Delay time.Duration
}

// Write types text one character at a time (spec.md §4.9 write). If
// opts.Into names a target it is focused first; otherwise Write polls
// document.hasFocus() every cfg.FocusPoll up to cfg.FocusTimeout. It then
// rejects if the active element isn't writable, and masks the returned
// description when the active element is a password input.
func (p *Pipeline) Write(ctx context.Context, text string, opts WriteOptions) (Result, error) {
	if opts.Into != nil {
		if _, err := p.Focus(ctx, *opts.Into); err != nil {
			return Result{}, err
		}
	} else if err := p.waitForDocumentFocus(ctx); err != nil {
		return Result{}, err
	}

	writable, err := p.exec.ActiveElementWritable(ctx)
	if err != nil {
		return Result{}, err
	}
	if !writable {
		return Result{}, &NotWritableError{}
	}

	delay := opts.Delay
	if delay <= 0 {
		delay = p.cfg.CharDelay
	}
	for i, ch := range text {
		if err := p.exec.InsertChar(ctx, ch); err != nil {
			return Result{}, err
		}
		if i < len(text)-1 && delay > 0 {
			if err := poll.Sleep(ctx, delay); err != nil {
				return Result{}, err
			}
		}
	}

	masked, err := p.exec.ActiveElementIsPassword(ctx)
	if err == nil && masked {
		return Result{Description: "Wrote " + strings.Repeat("*", len(text))}, nil
	}
	return Result{Description: "Wrote " + text}, nil
}

// Clear focuses sel (or the currently-focused element if sel is the zero
// value), selects its full text, and deletes it (spec.md §4.9 clear:
// "triple-click (to select all), then Backspace down+up").
func (p *Pipeline) Clear(ctx context.Context, sel *selector.Selector) (Result, error) {
	if sel != nil {
		if _, err := p.Focus(ctx, *sel); err != nil {
			return Result{}, err
		}
	} else if err := p.waitForDocumentFocus(ctx); err != nil {
		return Result{}, err
	}

	writable, err := p.exec.ActiveElementWritable(ctx)
	if err != nil {
		return Result{}, err
	}
	if !writable {
		return Result{}, &NotWritableError{}
	}

	if err := p.exec.SelectActiveElementText(ctx); err != nil {
		return Result{}, err
	}
	if err := p.exec.DispatchKey(ctx, "Backspace", true); err != nil {
		return Result{}, err
	}
	if err := p.exec.DispatchKey(ctx, "Backspace", false); err != nil {
		return Result{}, err
	}

	desc := "Cleared"
	if sel != nil {
		desc += " " + sel.Description
	}
	return Result{Description: desc}, nil
}

// Press presses keys in order, holding each for delay before release
// (spec.md §4.9 press: "presses down in order, optionally holds for delay,
// releases in reverse order").
func (p *Pipeline) Press(ctx context.Context, keys []string, delay time.Duration) (Result, error) {
	for _, k := range keys {
		if err := p.exec.DispatchKey(ctx, k, true); err != nil {
			return Result{}, err
		}
	}
	if delay > 0 {
		if err := poll.Sleep(ctx, delay); err != nil {
			return Result{}, err
		}
	}
	for i := len(keys) - 1; i >= 0; i-- {
		if err := p.exec.DispatchKey(ctx, keys[i], false); err != nil {
			return Result{}, err
		}
	}
	return Result{Description: "Pressed " + strings.Join(keys, "+")}, nil
}

// waitForDocumentFocus polls document.hasFocus() every cfg.FocusPoll up to
// cfg.FocusTimeout (spec.md §4.9: "wait until the document reports focus").
func (p *Pipeline) waitForDocumentFocus(ctx context.Context) error {
	timeout := p.cfg.FocusTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return poll.Until(ctx, p.cfg.FocusPoll, timeout, func() (bool, error) {
		return p.exec.DocumentHasFocus(ctx)
	})
}
