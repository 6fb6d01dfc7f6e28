package selector

import (
	"context"
	"fmt"
	"time"

	"github.com/taiko-go/taiko/internal/poll"

	"github.com/taiko-go/taiko/domain"
)

// NodeID is a DOM node id as handed out by the CDP DOM domain —
// opaque to everything above this package (spec.md §3 "DOM Node id").
type NodeID int64

// Evaluator is the narrow capability the selector engine needs from a live
// page: run a query, and inspect one resulting node. The taiko package's
// bridge type supplies the concrete implementation over the DOM and Runtime
// domains (spec.md §4.6's "the engine never touches the WebSocket directly").
type Evaluator interface {
	// Query runs expr as an XPath (isXPath) or CSS selector against the
	// current document and returns matching node ids, innermost-document-
	// order.
	Query(ctx context.Context, expr string, isXPath bool) ([]NodeID, error)
	// Visible reports whether id has a non-null offsetParent (spec.md §4.6
	// "visibility filtering").
	Visible(ctx context.Context, id NodeID) (bool, error)
	// Rect returns id's content-quad bounding box.
	Rect(ctx context.Context, id NodeID) (domain.Rect, error)
	// Text returns id's normalized innerText.
	Text(ctx context.Context, id NodeID) (string, error)
	// Value returns id's .value property (form fields) or "" if absent.
	Value(ctx context.Context, id NodeID) (string, error)
}

// Engine resolves Selectors to concrete NodeIDs against a live Evaluator.
type Engine struct {
	eval Evaluator
	cfg  Config
}

// Config bounds engine behavior (spec.md §4.6 "elementsToMatch").
type Config struct {
	// ElementsToMatch caps how many raw query matches are inspected for
	// visibility/relative filtering before giving up — default 10
	// (spec.md §4.6, §9 config table).
	ElementsToMatch int
	// PollInterval/PollTimeout parameterize Exists/Get's poll loop.
	PollInterval float64
	PollTimeout  float64
}

// New constructs an Engine. cfg.ElementsToMatch defaults to 10 if zero.
func New(eval Evaluator, cfg Config) *Engine {
	if cfg.ElementsToMatch <= 0 {
		cfg.ElementsToMatch = 10
	}
	return &Engine{eval: eval, cfg: cfg}
}

// NotFoundError is returned by Get/Exists-style lookups per spec.md §7's
// error table ("element not found") — wrapped by the taiko root package
// into taiko.Error{Code: ErrElementNotFound}.
type NotFoundError struct {
	Description string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Description)
}

// Resolve returns every matching, visible NodeID for sel, ranked by
// relative-position score when sel is a Composite (spec.md §4.6/§4.7).
// It never returns more than cfg.ElementsToMatch candidates worth of raw
// query results from the innermost query step.
func (e *Engine) Resolve(ctx context.Context, sel Selector) ([]NodeID, error) {
	ids, _, err := e.ResolveDetailed(ctx, sel)
	return ids, err
}

// ResolveDetailed is Resolve plus a truncated flag: true when the raw query
// matched more than cfg.ElementsToMatch candidates and was cut down to that
// many before visibility/occlusion filtering. The action pipeline uses this
// to choose between the two "no candidate survived" error messages named in
// spec.md §4.6/§4.8: "too many matches" when truncation occurred, "covered
// by other element" otherwise.
func (e *Engine) ResolveDetailed(ctx context.Context, sel Selector) ([]NodeID, bool, error) {
	switch sel.Kind {
	case KindLabel:
		return e.queryVisible(ctx, labelXPath(sel.Label, sel.Exact), true)
	case KindAttrs:
		return e.queryVisible(ctx, attrsXPath(sel.Attrs), true)
	case KindXPathOrCss:
		return e.queryVisible(ctx, sel.Raw, IsXPath(sel.Raw))
	case KindComposite:
		ids, err := e.resolveComposite(ctx, sel)
		return ids, false, err
	default:
		return nil, false, fmt.Errorf("selector: unknown kind %d", sel.Kind)
	}
}

// Exists polls Resolve until it returns at least one visible match, or
// timeoutSecs elapses — mirroring the outward "synchronous" feel the spec
// requires of a library whose transport is asynchronous (Design Note
// "sleep busy loop"): internally paced by a rate.Limiter, never a bare
// time.Sleep.
func (e *Engine) Exists(ctx context.Context, sel Selector, timeoutSecs float64) (bool, error) {
	if timeoutSecs <= 0 {
		timeoutSecs = e.cfg.PollTimeout
	}
	found := false
	_ = poll.Until(ctx, e.pollIntervalDuration(), secsToDuration(timeoutSecs), func() (bool, error) {
		ids, err := e.Resolve(ctx, sel)
		if err != nil {
			return false, nil // keep polling past transient query errors
		}
		found = len(ids) > 0
		return found, nil
	})
	return found, nil
}

// Get polls for sel and returns the best (first, or highest-ranked for a
// Composite) match, erroring with *NotFoundError on timeout.
func (e *Engine) Get(ctx context.Context, sel Selector, timeoutSecs float64) (NodeID, error) {
	if timeoutSecs <= 0 {
		timeoutSecs = e.cfg.PollTimeout
	}
	var best NodeID
	found := false
	_ = poll.Until(ctx, e.pollIntervalDuration(), secsToDuration(timeoutSecs), func() (bool, error) {
		ids, err := e.Resolve(ctx, sel)
		if err != nil {
			return false, nil
		}
		if len(ids) == 0 {
			return false, nil
		}
		best = ids[0]
		found = true
		return true, nil
	})
	if !found {
		return 0, &NotFoundError{Description: sel.Description}
	}
	return best, nil
}

// GetText resolves sel and returns its first match's normalized text.
func (e *Engine) GetText(ctx context.Context, sel Selector, timeoutSecs float64) (string, error) {
	id, err := e.Get(ctx, sel, timeoutSecs)
	if err != nil {
		return "", err
	}
	return e.eval.Text(ctx, id)
}

// GetValue resolves sel and returns its first match's form value.
func (e *Engine) GetValue(ctx context.Context, sel Selector, timeoutSecs float64) (string, error) {
	id, err := e.Get(ctx, sel, timeoutSecs)
	if err != nil {
		return "", err
	}
	return e.eval.Value(ctx, id)
}

func (e *Engine) pollIntervalDuration() time.Duration {
	if e.cfg.PollInterval <= 0 {
		return 100 * time.Millisecond
	}
	return secsToDuration(e.cfg.PollInterval)
}

func secsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

func (e *Engine) queryVisible(ctx context.Context, expr string, isXPath bool) ([]NodeID, bool, error) {
	ids, err := e.eval.Query(ctx, expr, isXPath)
	if err != nil {
		return nil, false, err
	}
	truncated := len(ids) > e.cfg.ElementsToMatch
	if truncated {
		ids = ids[:e.cfg.ElementsToMatch]
	}
	visible := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		ok, err := e.eval.Visible(ctx, id)
		if err != nil {
			continue
		}
		if ok {
			visible = append(visible, id)
		}
	}
	return visible, truncated, nil
}

func (e *Engine) resolveComposite(ctx context.Context, sel Selector) ([]NodeID, error) {
	baseIDs, err := e.Resolve(ctx, *sel.Base)
	if err != nil {
		return nil, err
	}
	if len(sel.Relatives) == 0 || len(baseIDs) == 0 {
		return baseIDs, nil
	}

	rects := make(map[int64]rectLike, len(baseIDs))
	byID := make(map[int64]NodeID, len(baseIDs))
	for _, id := range baseIDs {
		r, err := e.eval.Rect(ctx, id)
		if err != nil {
			continue
		}
		rects[int64(id)] = toRectLike(r)
		byID[int64(id)] = id
	}

	constraints := make([]constraintAnchors, 0, len(sel.Relatives))
	for _, rel := range sel.Relatives {
		anchorIDs, err := e.Resolve(ctx, rel.Anchor)
		if err != nil {
			return nil, err
		}
		anchors := make([]rectLike, 0, len(anchorIDs))
		for _, a := range anchorIDs {
			r, err := e.eval.Rect(ctx, a)
			if err != nil {
				continue
			}
			anchors = append(anchors, toRectLike(r))
		}
		constraints = append(constraints, constraintAnchors{kind: rel.Kind, anchors: anchors})
	}

	ranked := rankByConstraints(rects, constraints)
	out := make([]NodeID, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, byID[r.id])
	}
	return out, nil
}

func toRectLike(r domain.Rect) rectLike {
	return rectLike{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom}
}
