package taiko

// surface.go re-exports the selector package's tagged-union constructors
// under the taiko package so callers write taiko.Text/taiko.Button/... per
// spec.md §6's public API shape, without importing the selector package
// directly — plus the small option-builder helpers named in spec.md §6
// Helpers and detailed in SPEC_FULL.md §5.

import (
	"time"

	"github.com/taiko-go/taiko/selector"
)

// Selector and RelativeConstraint alias the selector package's types so
// callers never need to import it directly.
type Selector = selector.Selector
type RelativeConstraint = selector.RelativeConstraint

// Text/Contains, ExactText, WithAttrs, XPath, CSS — the base selector
// constructors (spec.md §3, §6).
func Text(text string) Selector               { return selector.Text(text) }
func Contains(text string) Selector           { return selector.Contains(text) }
func ExactText(text string) Selector          { return selector.ExactText(text) }
func WithAttrs(tag string, pairs map[string]string) Selector { return selector.WithAttrs(tag, pairs) }
func XPath(expr string) Selector              { return selector.XPath(expr) }
func CSS(expr string) Selector                { return selector.CSS(expr) }

// TextField, InputField, FileField, CheckBox, RadioButton, ComboBox, Link,
// Button, ListItem, Image — the type-specific field/element factories
// (spec.md §6 verb catalogue).
func TextField(label string) Selector   { return selector.TextField(label) }
func InputField(label string) Selector  { return selector.InputField(label) }
func FileField(label string) Selector   { return selector.FileField(label) }
func CheckBox(label string) Selector    { return selector.CheckBox(label) }
func RadioButton(label string) Selector { return selector.RadioButton(label) }
func ComboBox(label string) Selector    { return selector.ComboBox(label) }
func Link(text string) Selector         { return selector.Link(text) }
func Button(text string) Selector       { return selector.Button(text) }
func ListItem(text string) Selector     { return selector.ListItem(text) }
func Image(alt string) Selector         { return selector.Image(alt) }

// ToLeftOf, ToRightOf, Above, Below, Near build the five relative-position
// constraints (spec.md §4.7, §6 "Relatives").
func ToLeftOf(anchor Selector) RelativeConstraint  { return selector.ToLeftOf(anchor) }
func ToRightOf(anchor Selector) RelativeConstraint { return selector.ToRightOf(anchor) }
func Above(anchor Selector) RelativeConstraint     { return selector.Above(anchor) }
func Below(anchor Selector) RelativeConstraint     { return selector.Below(anchor) }
func Near(anchor Selector) RelativeConstraint      { return selector.Near(anchor) }

// With attaches relative constraints to sel, producing a composite
// selector (spec.md §6: "selector().near(...).toLeftOf(...)" chaining).
func With(sel Selector, relatives ...RelativeConstraint) Selector { return sel.With(relatives...) }

// Into/WaitFor are functional options for Browser.WriteText, so call sites
// read as `b.WriteText(ctx, text, taiko.Into(sel))` rather than constructing
// action.WriteOptions by hand. IntervalSecs/TimeoutSecs are plain value
// helpers (below). There is no `to` helper.

// WriteOption mutates a action.WriteOptions-shaped configuration. Defined
// here (not in package action) since it is purely a call-site ergonomics
// helper for the public surface, not something the pipeline itself needs.
type WriteOption func(*writeOpts)

type writeOpts struct {
	into  *Selector
	delay time.Duration
}

// Into focuses target before writing (spec.md §6 Helpers "into").
func Into(target Selector) WriteOption {
	return func(o *writeOpts) { o.into = &target }
}

// IntervalSecs/TimeoutSecs convert a plain float64 seconds value, matching
// the verb signatures' timeoutSecs float64 parameters (spec.md §6 Helpers
// "intervalSecs"/"timeoutSecs" — kept as identity conversions since Exists/
// Get already take timeoutSecs directly; these exist so call sites read
// b.Exists(ctx, sel, taiko.TimeoutSecs(5)) symmetrically with WriteText's
// functional options).
func TimeoutSecs(secs float64) float64  { return secs }
func IntervalSecs(secs float64) float64 { return secs }

// WaitFor sets the per-character delay for Write (spec.md §6 Helpers
// "waitFor").
func WaitFor(d time.Duration) WriteOption {
	return func(o *writeOpts) { o.delay = d }
}
