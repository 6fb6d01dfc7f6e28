package selector

import "math"

// satisfies reports whether candidate holds the spatial predicate kind
// against anchor, and the planar center-to-center distance used for
// ranking when multiple candidates satisfy the same constraint set
// (spec.md §4.7 "ranks candidates by planar distance to anchor").
func satisfies(kind RelativeKind, candidate, anchor rectLike) (ok bool, dist float64) {
	dist = centerDistance(candidate, anchor)
	switch kind {
	case RelLeft:
		return candidate.Left < anchor.Left, dist
	case RelRight:
		return candidate.Right > anchor.Right, dist
	case RelAbove:
		return candidate.Top < anchor.Top, dist
	case RelBelow:
		return candidate.Bottom > anchor.Bottom, dist
	case RelNear:
		return minEdgeDistance(candidate, anchor) <= nearThresholdPx, dist
	default:
		return false, dist
	}
}

// nearThresholdPx is the "near" acceptance radius named in spec.md §4.7.
const nearThresholdPx = 30.0

// rectLike mirrors domain.Rect's fields without importing the domain
// package, keeping selector's relative-position math independent of the
// CDP geometry representation (it is fed candidate/anchor boxes by the
// caller via toRectLike).
type rectLike struct {
	Left, Top, Right, Bottom float64
}

func centerDistance(a, b rectLike) float64 {
	acx, acy := (a.Left+a.Right)/2, (a.Top+a.Bottom)/2
	bcx, bcy := (b.Left+b.Right)/2, (b.Top+b.Bottom)/2
	dx, dy := acx-bcx, acy-bcy
	return math.Sqrt(dx*dx + dy*dy)
}

// minEdgeDistance is the smallest gap between any corresponding pair of
// edges, used by the "near" predicate.
func minEdgeDistance(a, b rectLike) float64 {
	d := math.Abs(a.Left - b.Left)
	if v := math.Abs(a.Right - b.Right); v < d {
		d = v
	}
	if v := math.Abs(a.Top - b.Top); v < d {
		d = v
	}
	if v := math.Abs(a.Bottom - b.Bottom); v < d {
		d = v
	}
	return d
}

// scoredCandidate is an element that satisfied every constraint in a
// Composite selector, carrying the summed distance used to rank ties.
type scoredCandidate struct {
	id    int64
	score float64
}

// rankByConstraints filters candidates against every relative constraint's
// resolved anchor rectangles and returns survivors sorted ascending by
// summed distance (spec.md §4.7: "score is the sum of positional
// differences to each anchor; candidates are returned in ascending score
// order"). A candidate passes a single constraint if it satisfies the
// predicate against at least one of that constraint's resolved anchors
// (an anchor selector commonly matches one element, but need not); its
// contribution to the score is the distance to the nearest anchor that
// passed.
func rankByConstraints(candidates map[int64]rectLike, constraints []constraintAnchors) []scoredCandidate {
	out := make([]scoredCandidate, 0, len(candidates))
candidateLoop:
	for id, rect := range candidates {
		total := 0.0
		for _, c := range constraints {
			best := math.Inf(1)
			passed := false
			for _, anchorRect := range c.anchors {
				ok, dist := satisfies(c.kind, rect, anchorRect)
				if ok {
					passed = true
					if dist < best {
						best = dist
					}
				}
			}
			if !passed {
				continue candidateLoop
			}
			total += best
		}
		out = append(out, scoredCandidate{id: id, score: total})
	}
	sortByScore(out)
	return out
}

// constraintAnchors is one relative constraint with its anchor selector
// already resolved to concrete rectangles.
type constraintAnchors struct {
	kind    RelativeKind
	anchors []rectLike
}

func sortByScore(s []scoredCandidate) {
	for i := 1; i < len(s); i++ {
		j := i
		for j > 0 && s[j-1].score > s[j].score {
			s[j-1], s[j] = s[j], s[j-1]
			j--
		}
	}
}
