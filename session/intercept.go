package session

import (
	"strings"
	"sync"
)

// DialogKind identifies a JS dialog type (spec.md §4.10).
type DialogKind string

const (
	DialogAlert           DialogKind = "alert"
	DialogPrompt          DialogKind = "prompt"
	DialogConfirm         DialogKind = "confirm"
	DialogBeforeUnload    DialogKind = "beforeunload"
)

// DialogHandler decides how to respond to a JS dialog: accept it (with an
// optional prompt-text answer) or dismiss it.
type DialogHandler func(kind DialogKind, message string) (accept bool, promptText string)

// DialogRegistry holds the registered per-kind dialog handlers
// (spec.md §4.10: "dialog handler registration").
type DialogRegistry struct {
	mu       sync.Mutex
	handlers map[DialogKind]DialogHandler
}

// NewDialogRegistry constructs an empty registry.
func NewDialogRegistry() *DialogRegistry {
	return &DialogRegistry{handlers: make(map[DialogKind]DialogHandler)}
}

// On registers handler for kind, replacing any previous registration.
func (r *DialogRegistry) On(kind DialogKind, handler DialogHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = handler
}

// Handle looks up the handler for kind. ok is false if none was registered,
// in which case the caller dismisses the dialog (spec.md §4.10 default).
func (r *DialogRegistry) Handle(kind DialogKind, message string) (accept bool, promptText string, ok bool) {
	r.mu.Lock()
	h, found := r.handlers[kind]
	r.mu.Unlock()
	if !found {
		return false, "", false
	}
	accept, promptText = h(kind, message)
	return accept, promptText, true
}

// Reset clears every registered handler (spec.md §4.10: "reset on
// CloseBrowser").
func (r *DialogRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[DialogKind]DialogHandler)
}

// InterceptAction names what an interceptor does with a matched request
// (spec.md §4.10 table: block/mockResponse/redirectUrl/requestRewriter).
type InterceptAction struct {
	Block        bool
	MockStatus   int
	MockBody     string
	MockHeaders  map[string]string
	RedirectURL  string
	RequestRewrite func(url, method string, headers map[string]string, body string) (newURL, newMethod string, newHeaders map[string]string, newBody string)
}

// interceptor pairs a URL-matching pattern with the action to take
// (spec.md §3 "Interceptor"). Pattern matching is substring containment,
// matching spec.md §4.10's description of a requestUrl pattern rather than
// a full glob/regex DSL.
type interceptor struct {
	pattern string
	action  InterceptAction
}

// InterceptTable is the ordered — first match wins — set of registered
// interceptors (spec.md §4.10: "insertion-ordered").
type InterceptTable struct {
	mu    sync.Mutex
	items []interceptor
}

// NewInterceptTable constructs an empty table.
func NewInterceptTable() *InterceptTable {
	return &InterceptTable{}
}

// Intercept registers an interceptor for requests whose URL contains
// pattern. Later registrations for an overlapping pattern do not replace
// earlier ones — insertion order decides precedence.
func (t *InterceptTable) Intercept(pattern string, action InterceptAction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, interceptor{pattern: pattern, action: action})
}

// Match returns the first registered interceptor whose pattern is a
// substring of url, insertion order, or ok=false if none match.
func (t *InterceptTable) Match(url string) (action InterceptAction, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, it := range t.items {
		if strings.Contains(url, it.pattern) {
			return it.action, true
		}
	}
	return InterceptAction{}, false
}

// Reset clears every registered interceptor (spec.md §4.10: "reset on
// CloseBrowser").
func (t *InterceptTable) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = nil
}
