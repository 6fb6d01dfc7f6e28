package selector

import "testing"

func TestSatisfiesLeftRightAboveBelow(t *testing.T) {
	anchor := rectLike{Left: 100, Top: 100, Right: 200, Bottom: 150}
	left := rectLike{Left: 0, Top: 100, Right: 50, Bottom: 150}
	right := rectLike{Left: 250, Top: 100, Right: 300, Bottom: 150}
	above := rectLike{Left: 100, Top: 0, Right: 200, Bottom: 50}
	below := rectLike{Left: 100, Top: 200, Right: 200, Bottom: 250}

	if ok, _ := satisfies(RelLeft, left, anchor); !ok {
		t.Fatal("expected left to satisfy RelLeft")
	}
	if ok, _ := satisfies(RelLeft, right, anchor); ok {
		t.Fatal("expected right to not satisfy RelLeft")
	}
	if ok, _ := satisfies(RelRight, right, anchor); !ok {
		t.Fatal("expected right to satisfy RelRight")
	}
	if ok, _ := satisfies(RelAbove, above, anchor); !ok {
		t.Fatal("expected above to satisfy RelAbove")
	}
	if ok, _ := satisfies(RelBelow, below, anchor); !ok {
		t.Fatal("expected below to satisfy RelBelow")
	}
}

func TestSatisfiesNearThreshold(t *testing.T) {
	anchor := rectLike{Left: 100, Top: 100, Right: 200, Bottom: 150}
	close_ := rectLike{Left: 105, Top: 100, Right: 205, Bottom: 150}
	far := rectLike{Left: 500, Top: 500, Right: 600, Bottom: 550}

	if ok, _ := satisfies(RelNear, close_, anchor); !ok {
		t.Fatal("expected close rect to satisfy RelNear")
	}
	if ok, _ := satisfies(RelNear, far, anchor); ok {
		t.Fatal("expected far rect to not satisfy RelNear")
	}
}

func TestRankByConstraintsSortsAscendingAndDrops(t *testing.T) {
	anchor := rectLike{Left: 0, Top: 0, Right: 10, Bottom: 10}
	candidates := map[int64]rectLike{
		1: {Left: 20, Top: 0, Right: 30, Bottom: 10},  // right of anchor, near
		2: {Left: 200, Top: 0, Right: 210, Bottom: 10}, // right of anchor, far
		3: {Left: -20, Top: 0, Right: -10, Bottom: 10}, // left of anchor: fails RelRight
	}
	constraints := []constraintAnchors{{kind: RelRight, anchors: []rectLike{anchor}}}

	ranked := rankByConstraints(candidates, constraints)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 survivors, got %d: %+v", len(ranked), ranked)
	}
	if ranked[0].id != 1 || ranked[1].id != 2 {
		t.Fatalf("expected ascending order [1,2], got %+v", ranked)
	}
}
