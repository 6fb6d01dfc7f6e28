package selector

import (
	"context"
	"testing"
	"time"

	"github.com/taiko-go/taiko/domain"
)

// fakeEvaluator is an in-memory Evaluator: queries are resolved by a
// caller-supplied function, every other node fact comes from a table
// keyed by NodeID.
type fakeEvaluator struct {
	query   func(expr string, isXPath bool) []NodeID
	visible map[NodeID]bool
	rects   map[NodeID]domain.Rect
	texts   map[NodeID]string
	values  map[NodeID]string
}

func (f *fakeEvaluator) Query(ctx context.Context, expr string, isXPath bool) ([]NodeID, error) {
	return f.query(expr, isXPath), nil
}
func (f *fakeEvaluator) Visible(ctx context.Context, id NodeID) (bool, error) {
	if f.visible == nil {
		return true, nil
	}
	return f.visible[id], nil
}
func (f *fakeEvaluator) Rect(ctx context.Context, id NodeID) (domain.Rect, error) {
	return f.rects[id], nil
}
func (f *fakeEvaluator) Text(ctx context.Context, id NodeID) (string, error) {
	return f.texts[id], nil
}
func (f *fakeEvaluator) Value(ctx context.Context, id NodeID) (string, error) {
	return f.values[id], nil
}

func TestResolveLabelBuildsXPathAndFiltersVisibility(t *testing.T) {
	var gotExpr string
	var gotXPath bool
	ev := &fakeEvaluator{
		query: func(expr string, isXPath bool) []NodeID {
			gotExpr, gotXPath = expr, isXPath
			return []NodeID{1, 2}
		},
		visible: map[NodeID]bool{1: true, 2: false},
	}
	eng := New(ev, Config{})

	ids, err := eng.Resolve(context.Background(), Contains("Submit"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gotXPath {
		t.Fatal("expected label selector to query as xpath")
	}
	if gotExpr == "" {
		t.Fatal("expected a non-empty xpath expression")
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected only the visible node to survive, got %v", ids)
	}
}

func TestResolveRawDetectsXPathVsCSS(t *testing.T) {
	var lastIsXPath bool
	ev := &fakeEvaluator{query: func(expr string, isXPath bool) []NodeID {
		lastIsXPath = isXPath
		return nil
	}}
	eng := New(ev, Config{})

	eng.Resolve(context.Background(), XPath("//div[@id='x']"))
	if !lastIsXPath {
		t.Fatal("expected //... to be treated as xpath")
	}
	eng.Resolve(context.Background(), CSS("#x > div.foo"))
	if lastIsXPath {
		t.Fatal("expected a CSS selector to be treated as css")
	}
}

func TestElementsToMatchCap(t *testing.T) {
	ev := &fakeEvaluator{query: func(expr string, isXPath bool) []NodeID {
		return []NodeID{1, 2, 3, 4, 5}
	}}
	eng := New(ev, Config{ElementsToMatch: 2})

	ids, err := eng.Resolve(context.Background(), Contains("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected cap of 2 raw matches before visibility filtering, got %d", len(ids))
	}
}

func TestCompositeRanksByDistanceToAnchor(t *testing.T) {
	// Two candidate rows to the right of "Bob"; row A is closer.
	ev := &fakeEvaluator{
		query: func(expr string, isXPath bool) []NodeID {
			if expr == "anchor" {
				return []NodeID{100}
			}
			return []NodeID{1, 2}
		},
		rects: map[NodeID]domain.Rect{
			100: {Left: 0, Top: 0, Right: 50, Bottom: 20},
			1:   {Left: 60, Top: 0, Right: 110, Bottom: 20},  // near anchor, to the right
			2:   {Left: 500, Top: 0, Right: 550, Bottom: 20}, // far to the right
		},
	}
	eng := New(ev, Config{})

	base := Selector{Kind: KindXPathOrCss, Raw: "candidates", Description: "candidates"}
	anchor := Selector{Kind: KindXPathOrCss, Raw: "anchor", Description: "Bob"}
	composite := base.With(ToRightOf(anchor))

	ids, err := eng.Resolve(context.Background(), composite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected both candidates to satisfy toRightOf, got %v", ids)
	}
	if ids[0] != 1 {
		t.Fatalf("expected nearest candidate (1) first, got %v", ids)
	}
}

func TestCompositeFiltersOutNonMatchingCandidates(t *testing.T) {
	ev := &fakeEvaluator{
		query: func(expr string, isXPath bool) []NodeID {
			if expr == "anchor" {
				return []NodeID{100}
			}
			return []NodeID{1, 2}
		},
		rects: map[NodeID]domain.Rect{
			100: {Left: 100, Top: 0, Right: 150, Bottom: 20},
			1:   {Left: 0, Top: 0, Right: 50, Bottom: 20},   // to the left: fails toRightOf
			2:   {Left: 200, Top: 0, Right: 250, Bottom: 20}, // to the right: passes
		},
	}
	eng := New(ev, Config{})

	base := Selector{Kind: KindXPathOrCss, Raw: "candidates", Description: "candidates"}
	anchor := Selector{Kind: KindXPathOrCss, Raw: "anchor", Description: "anchor"}
	composite := base.With(ToRightOf(anchor))

	ids, err := eng.Resolve(context.Background(), composite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("expected only candidate 2 to survive, got %v", ids)
	}
}

func TestExistsPollsUntilFound(t *testing.T) {
	calls := 0
	ev := &fakeEvaluator{query: func(expr string, isXPath bool) []NodeID {
		calls++
		if calls < 3 {
			return nil
		}
		return []NodeID{1}
	}}
	eng := New(ev, Config{PollInterval: 0.01, PollTimeout: 1})

	ok, err := eng.Exists(context.Background(), Contains("x"), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected Exists to eventually report true")
	}
	if calls < 3 {
		t.Fatalf("expected at least 3 polls, got %d", calls)
	}
}

func TestGetReturnsNotFoundOnTimeout(t *testing.T) {
	ev := &fakeEvaluator{query: func(expr string, isXPath bool) []NodeID { return nil }}
	eng := New(ev, Config{PollInterval: 0.01})

	_, err := eng.Get(context.Background(), Contains("x"), 0.05)
	if err == nil {
		t.Fatal("expected a not-found error")
	}
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected *NotFoundError, got %T: %v", err, err)
	}
}

func TestGetTextAndValue(t *testing.T) {
	ev := &fakeEvaluator{
		query:  func(expr string, isXPath bool) []NodeID { return []NodeID{7} },
		texts:  map[NodeID]string{7: "hello"},
		values: map[NodeID]string{7: "hello-value"},
	}
	eng := New(ev, Config{})

	text, err := eng.GetText(context.Background(), Contains("x"), time.Second.Seconds())
	if err != nil || text != "hello" {
		t.Fatalf("GetText = %q, %v", text, err)
	}
	value, err := eng.GetValue(context.Background(), Contains("x"), time.Second.Seconds())
	if err != nil || value != "hello-value" {
		t.Fatalf("GetValue = %q, %v", value, err)
	}
}
