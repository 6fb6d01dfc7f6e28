// Package selector implements semantic element lookup (spec.md §4.6) and
// relative-position composition (§4.7): label/attribute/XPath/CSS queries,
// visibility filtering, and spatial disambiguation scored by planar
// distance to an anchor.
package selector

import "fmt"

// Kind discriminates the tagged Selector union (spec.md §3 "Selector").
type Kind int

const (
	KindLabel Kind = iota
	KindAttrs
	KindXPathOrCss
	KindComposite
)

// AttrSelector is an attribute-predicate selector: {tag, pairs}. The
// "class" attribute matches as contains; every other attribute matches as
// equality (spec.md §3).
type AttrSelector struct {
	Tag   string
	Pairs map[string]string
}

// RelativeKind is one of the five spatial predicates (spec.md §4.7).
type RelativeKind string

const (
	RelLeft  RelativeKind = "left"
	RelRight RelativeKind = "right"
	RelAbove RelativeKind = "above"
	RelBelow RelativeKind = "below"
	RelNear  RelativeKind = "near"
)

// RelativeConstraint pairs a spatial predicate with the selector whose
// resolved rectangles anchor it (spec.md §3 "RelativeConstraint").
type RelativeConstraint struct {
	Kind   RelativeKind
	Anchor Selector
}

// Selector is the tagged record described in spec.md §3. Exactly one of
// Label/Attrs/Raw is meaningful, chosen by Kind; Composite wraps a Base
// selector plus zero or more RelativeConstraints.
type Selector struct {
	Kind Kind

	Label string
	Exact bool // false = contains match, true = exact match

	Attrs AttrSelector

	Raw string // XPath (leading "//" or "(") or CSS

	Base      *Selector
	Relatives []RelativeConstraint

	// Description is the human-readable text used in error messages and
	// ActionResult.Description (spec.md §4.6 "the exception message must
	// name the selector").
	Description string
}

// Contains builds a Label selector matching by substring (the default for
// a bare string argument, spec.md §4.6 step 1).
func Contains(text string) Selector {
	return Selector{Kind: KindLabel, Label: text, Description: fmt.Sprintf("element containing text %q", text)}
}

// Text is an alias for Contains kept for the public verb catalogue's
// text(...) helper (spec.md §6).
func Text(text string) Selector { return Contains(text) }

// ExactText builds a Label selector matching the full normalized text only.
func ExactText(text string) Selector {
	return Selector{Kind: KindLabel, Label: text, Exact: true, Description: fmt.Sprintf("element with text %q", text)}
}

// WithAttrs builds an attribute-map selector (spec.md §4.6 step 2).
func WithAttrs(tag string, pairs map[string]string) Selector {
	return Selector{Kind: KindAttrs, Attrs: AttrSelector{Tag: tag, Pairs: pairs}, Description: describeAttrs(tag, pairs)}
}

// XPath builds a raw XPath selector.
func XPath(expr string) Selector {
	return Selector{Kind: KindXPathOrCss, Raw: expr, Description: expr}
}

// CSS builds a raw CSS selector.
func CSS(expr string) Selector {
	return Selector{Kind: KindXPathOrCss, Raw: expr, Description: expr}
}

// IsXPath reports whether raw looks like an XPath expression rather than
// CSS (spec.md §4.6 step 3: detect by leading "//" or "(").
func IsXPath(raw string) bool {
	return len(raw) > 0 && (raw[0] == '(' || (len(raw) > 1 && raw[0] == '/' && raw[1] == '/'))
}

// With attaches relative constraints to a Selector, producing a Composite.
func (s Selector) With(relatives ...RelativeConstraint) Selector {
	base := s
	desc := s.Description
	for _, r := range relatives {
		desc += fmt.Sprintf(" %s %s", relWord(r.Kind), r.Anchor.Description)
	}
	return Selector{Kind: KindComposite, Base: &base, Relatives: relatives, Description: desc}
}

func relWord(k RelativeKind) string {
	switch k {
	case RelLeft:
		return "to the left of"
	case RelRight:
		return "to the right of"
	case RelAbove:
		return "above"
	case RelBelow:
		return "below"
	case RelNear:
		return "near"
	default:
		return string(k)
	}
}

// ToLeftOf, ToRightOf, Above, Below, Near construct the five relative
// constraint kinds (spec.md §6 "Relatives").
func ToLeftOf(anchor Selector) RelativeConstraint  { return RelativeConstraint{Kind: RelLeft, Anchor: anchor} }
func ToRightOf(anchor Selector) RelativeConstraint { return RelativeConstraint{Kind: RelRight, Anchor: anchor} }
func Above(anchor Selector) RelativeConstraint     { return RelativeConstraint{Kind: RelAbove, Anchor: anchor} }
func Below(anchor Selector) RelativeConstraint     { return RelativeConstraint{Kind: RelBelow, Anchor: anchor} }
func Near(anchor Selector) RelativeConstraint      { return RelativeConstraint{Kind: RelNear, Anchor: anchor} }

func describeAttrs(tag string, pairs map[string]string) string {
	desc := tag
	for k, v := range pairs {
		desc += fmt.Sprintf("[%s=%q]", k, v)
	}
	return desc
}
