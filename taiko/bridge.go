package taiko

// bridge.go implements selector.Evaluator and action.Executor against a live
// cdp.Client (spec.md §4.6 "the engine never touches the WebSocket
// directly"). Command encoding goes through github.com/chromedp/cdproto's
// generated param/result types — consistent with cdp.Client's own design
// note — rather than hand-marshaled JSON for every call.

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	cdom "github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/overlay"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"

	"github.com/taiko-go/taiko/action"
	"github.com/taiko-go/taiko/cdp"
	"github.com/taiko-go/taiko/domain"
	"github.com/taiko-go/taiko/selector"
)

// bridge adapts a single target's *cdp.Client to selector.Evaluator and
// action.Executor. One bridge is bound to whichever target a session.Manager
// currently holds — it is rebuilt (not mutated) on every target switch,
// mirroring the Client/Adapters lifecycle in session.Manager.switchTo.
type bridge struct {
	client *cdp.Client
}

func newBridge(client *cdp.Client) *bridge { return &bridge{client: client} }

var _ selector.Evaluator = (*bridge)(nil)
var _ action.Executor = (*bridge)(nil)

// Query runs expr as a DOM.performSearch — Chrome's DOM domain already
// understands CSS, XPath and plain-text "find in page" queries through one
// entry point, so there is no need to hand-walk Runtime object arrays.
func (b *bridge) Query(ctx context.Context, expr string, isXPath bool) ([]selector.NodeID, error) {
	// DOM.performSearch auto-detects XPath vs CSS vs plain text from the
	// query string's own shape (a leading "//" or "." reads as XPath); every
	// XPath string this module builds (labelXPath, attrsXPath, sel.Raw)
	// already has that shape, so isXPath needs no further translation here.
	query := expr

	var search cdom.PerformSearchParams
	search.Query = query
	var searchRes struct {
		SearchID    string `json:"searchId"`
		ResultCount int64  `json:"resultCount"`
	}
	if err := b.client.Call(ctx, "DOM.performSearch", search, &searchRes); err != nil {
		return nil, fmt.Errorf("bridge: DOM.performSearch(%q): %w", query, err)
	}
	defer func() {
		_ = b.client.Call(ctx, "DOM.discardSearchResults", cdom.DiscardSearchResultsParams{SearchID: searchRes.SearchID}, nil)
	}()
	if searchRes.ResultCount == 0 {
		return nil, nil
	}

	getResults := cdom.GetSearchResultsParams{
		SearchID:  searchRes.SearchID,
		FromIndex: 0,
		ToIndex:   searchRes.ResultCount,
	}
	var results struct {
		NodeIds []int64 `json:"nodeIds"`
	}
	if err := b.client.Call(ctx, "DOM.getSearchResults", getResults, &results); err != nil {
		return nil, fmt.Errorf("bridge: DOM.getSearchResults: %w", err)
	}
	out := make([]selector.NodeID, len(results.NodeIds))
	for i, id := range results.NodeIds {
		out[i] = selector.NodeID(id)
	}
	return out, nil
}

// Visible evaluates offsetParent !== null in the node's own context
// (spec.md §4.6 visibility filtering).
func (b *bridge) Visible(ctx context.Context, id selector.NodeID) (bool, error) {
	return b.boolOnNode(ctx, id, "function(){return this.offsetParent !== null}")
}

// Rect takes the bounding box of DOM.getContentQuads' first quad.
func (b *bridge) Rect(ctx context.Context, id selector.NodeID) (domain.Rect, error) {
	var res struct {
		Quads [][]float64 `json:"quads"`
	}
	params := cdom.GetContentQuadsParams{NodeID: cdom.NodeID(id)}
	if err := b.client.Call(ctx, "DOM.getContentQuads", params, &res); err != nil {
		return domain.Rect{}, fmt.Errorf("bridge: DOM.getContentQuads: %w", err)
	}
	if len(res.Quads) == 0 {
		return domain.Rect{}, fmt.Errorf("bridge: node %d has no content quads (not rendered)", id)
	}
	return domain.RectFromQuad(res.Quads[0]), nil
}

// Text returns the node's normalized innerText.
func (b *bridge) Text(ctx context.Context, id selector.NodeID) (string, error) {
	return b.stringOnNode(ctx, id, "function(){return (this.innerText || this.textContent || '').trim()}")
}

// Value returns the node's form .value, or "" if it has none.
func (b *bridge) Value(ctx context.Context, id selector.NodeID) (string, error) {
	return b.stringOnNode(ctx, id, "function(){return this.value === undefined ? '' : String(this.value)}")
}

// ScrollIntoView calls DOM.scrollIntoViewIfNeeded on id.
func (b *bridge) ScrollIntoView(ctx context.Context, id selector.NodeID) error {
	params := cdom.ScrollIntoViewIfNeededParams{NodeID: cdom.NodeID(id)}
	return b.client.Call(ctx, "DOM.scrollIntoViewIfNeeded", params, nil)
}

// ElementFromPoint evaluates document.elementFromPoint and resolves the
// resulting JS handle back to a DOM node id via DOM.requestNode.
func (b *bridge) ElementFromPoint(ctx context.Context, x, y float64) (selector.NodeID, bool, error) {
	expr := fmt.Sprintf("document.elementFromPoint(%s, %s)", formatFloat(x), formatFloat(y))
	eval := runtime.EvaluateParams{Expression: expr}
	var res struct {
		Result           *runtime.RemoteObject `json:"result"`
		ExceptionDetails *runtime.ExceptionDetails `json:"exceptionDetails"`
	}
	if err := b.client.Call(ctx, "Runtime.evaluate", eval, &res); err != nil {
		return 0, false, fmt.Errorf("bridge: Runtime.evaluate elementFromPoint: %w", err)
	}
	if res.ExceptionDetails != nil || res.Result == nil || res.Result.ObjectID == "" {
		return 0, false, nil
	}
	var nodeRes struct {
		NodeID int64 `json:"nodeId"`
	}
	reqParams := cdom.RequestNodeParams{ObjectID: res.Result.ObjectID}
	if err := b.client.Call(ctx, "DOM.requestNode", reqParams, &nodeRes); err != nil {
		return 0, false, fmt.Errorf("bridge: DOM.requestNode: %w", err)
	}
	return selector.NodeID(nodeRes.NodeID), true, nil
}

// Contains runs Node.prototype.contains against two resolved remote objects.
func (b *bridge) Contains(ctx context.Context, ancestor, node selector.NodeID) (bool, error) {
	if ancestor == node {
		return true, nil
	}
	ancestorObj, err := b.resolveObjectID(ctx, ancestor)
	if err != nil {
		return false, err
	}
	nodeObj, err := b.resolveObjectID(ctx, node)
	if err != nil {
		return false, err
	}
	call := runtime.CallFunctionOnParams{
		FunctionDeclaration: "function(other){return this.contains(other)}",
		ObjectID:            ancestorObj,
		Arguments:           []*runtime.CallArgument{{ObjectID: nodeObj}},
		ReturnByValue:       true,
	}
	var res struct {
		Result           *runtime.RemoteObject     `json:"result"`
		ExceptionDetails *runtime.ExceptionDetails `json:"exceptionDetails"`
	}
	if err := b.client.Call(ctx, "Runtime.callFunctionOn", call, &res); err != nil {
		return false, fmt.Errorf("bridge: Contains: %w", err)
	}
	if res.ExceptionDetails != nil || res.Result == nil {
		return false, nil
	}
	var contains bool
	_ = json.Unmarshal(res.Result.Value, &contains)
	return contains, nil
}

// Opacity reads the node's computed CSS opacity (0..1).
func (b *bridge) Opacity(ctx context.Context, id selector.NodeID) (float64, error) {
	s, err := b.stringOnNode(ctx, id, "function(){return String(getComputedStyle(this).opacity)}")
	if err != nil {
		return 1, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1, nil
	}
	return v, nil
}

// DispatchMouseEvent sends one Input.dispatchMouseEvent at (x,y). kind is
// one of "mousePressed", "mouseReleased", "mouseMoved" (action.dispatch's
// vocabulary); button is one of the action.MouseButton constants, mapped
// onto input.MouseButton's wire values directly since both use the same
// lowercase names.
func (b *bridge) DispatchMouseEvent(ctx context.Context, kind string, x, y float64, button action.MouseButton, clickCount int) error {
	params := input.DispatchMouseEventParams{
		Type:       input.MouseType(kind),
		X:          x,
		Y:          y,
		Button:     input.MouseButton(string(button)),
		ClickCount: int64(clickCount),
	}
	return b.client.Call(ctx, "Input.dispatchMouseEvent", params, nil)
}

// Focus calls DOM.focus on id.
func (b *bridge) Focus(ctx context.Context, id selector.NodeID) error {
	params := cdom.FocusParams{NodeID: cdom.NodeID(id)}
	return b.client.Call(ctx, "DOM.focus", params, nil)
}

// DocumentHasFocus evaluates document.hasFocus().
func (b *bridge) DocumentHasFocus(ctx context.Context) (bool, error) {
	return b.evalBool(ctx, "document.hasFocus()")
}

// ActiveElementWritable reports whether the focused element accepts text
// input and is not disabled (spec.md §4.9).
func (b *bridge) ActiveElementWritable(ctx context.Context) (bool, error) {
	expr := `(function(){
		var el = document.activeElement;
		if (!el || el.disabled) return false;
		var tag = el.tagName ? el.tagName.toLowerCase() : '';
		if (tag === 'textarea') return true;
		if (tag === 'input') {
			var t = (el.type || 'text').toLowerCase();
			return ['text','password','search','email','url','tel','number'].indexOf(t) !== -1;
		}
		return !!el.isContentEditable;
	})()`
	return b.evalBool(ctx, expr)
}

// ActiveElementIsPassword reports whether the focused element is a
// password-type input, used by write() to mask its result description.
func (b *bridge) ActiveElementIsPassword(ctx context.Context) (bool, error) {
	expr := `(function(){
		var el = document.activeElement;
		return !!(el && el.tagName && el.tagName.toLowerCase() === 'input' && (el.type || '').toLowerCase() === 'password');
	})()`
	return b.evalBool(ctx, expr)
}

// InsertChar dispatches one Input.dispatchKeyEvent of type "char".
func (b *bridge) InsertChar(ctx context.Context, ch rune) error {
	text := string(ch)
	params := input.DispatchKeyEventParams{Type: input.KeyType("char"), Text: text}
	return b.client.Call(ctx, "Input.dispatchKeyEvent", params, nil)
}

// DispatchKey presses or releases one named key (spec.md §4.9: Backspace,
// Enter, Tab, arrow keys, etc.) using the well-known CDP key/code/virtual
// key-code triple for each. Enter is sent as a full "keyDown" (not
// "rawKeyDown") since that is what most form-submit listeners key off.
func (b *bridge) DispatchKey(ctx context.Context, key string, down bool) error {
	kind := "keyUp"
	if down {
		kind = "rawKeyDown"
		if key == "Enter" {
			kind = "keyDown"
		}
	}
	def := keyDefinitions[key]
	params := input.DispatchKeyEventParams{
		Type:                  input.KeyType(kind),
		Key:                   key,
		Code:                  def.code,
		WindowsVirtualKeyCode: def.vk,
		NativeVirtualKeyCode:  def.vk,
	}
	return b.client.Call(ctx, "Input.dispatchKeyEvent", params, nil)
}

type keyDef struct {
	code string
	vk   int64
}

var keyDefinitions = map[string]keyDef{
	"Backspace": {code: "Backspace", vk: 8},
	"Tab":       {code: "Tab", vk: 9},
	"Enter":     {code: "Enter", vk: 13},
	"Escape":    {code: "Escape", vk: 27},
	"ArrowLeft": {code: "ArrowLeft", vk: 37},
	"ArrowUp":   {code: "ArrowUp", vk: 38},
	"ArrowRight": {code: "ArrowRight", vk: 39},
	"ArrowDown": {code: "ArrowDown", vk: 40},
	"Delete":    {code: "Delete", vk: 46},
}

// SelectActiveElementText selects the focused element's full text, the
// triple-click equivalent clear() needs ahead of deletion.
func (b *bridge) SelectActiveElementText(ctx context.Context) error {
	expr := `(function(){
		var el = document.activeElement;
		if (!el) return;
		if (typeof el.select === 'function') { el.select(); return; }
		if (el.isContentEditable) {
			var range = document.createRange();
			range.selectNodeContents(el);
			var sel = window.getSelection();
			sel.removeAllRanges();
			sel.addRange(range);
		}
	})()`
	_, err := b.evalBool(ctx, expr+"; true")
	return err
}

// ScrollBy scrolls the current window by (dx, dy).
func (b *bridge) ScrollBy(ctx context.Context, dx, dy float64) error {
	expr := fmt.Sprintf("window.scrollBy(%s, %s)", formatFloat(dx), formatFloat(dy))
	params := runtime.EvaluateParams{Expression: expr}
	return b.client.Call(ctx, "Runtime.evaluate", params, nil)
}

// resolveObjectID maps a DOM node id to a Runtime remote object id via
// DOM.resolveNode, needed wherever a command only accepts an objectId
// (Runtime.callFunctionOn's receiver/arguments).
func (b *bridge) resolveObjectID(ctx context.Context, id selector.NodeID) (runtime.RemoteObjectID, error) {
	params := cdom.ResolveNodeParams{NodeID: cdom.NodeID(id)}
	var res struct {
		Object *runtime.RemoteObject `json:"object"`
	}
	if err := b.client.Call(ctx, "DOM.resolveNode", params, &res); err != nil {
		return "", fmt.Errorf("bridge: DOM.resolveNode(%d): %w", id, err)
	}
	if res.Object == nil {
		return "", fmt.Errorf("bridge: DOM.resolveNode(%d): no object", id)
	}
	return res.Object.ObjectID, nil
}

func (b *bridge) boolOnNode(ctx context.Context, id selector.NodeID, fn string) (bool, error) {
	objID, err := b.resolveObjectID(ctx, id)
	if err != nil {
		return false, err
	}
	call := runtime.CallFunctionOnParams{FunctionDeclaration: fn, ObjectID: objID, ReturnByValue: true}
	var res struct {
		Result           *runtime.RemoteObject     `json:"result"`
		ExceptionDetails *runtime.ExceptionDetails `json:"exceptionDetails"`
	}
	if err := b.client.Call(ctx, "Runtime.callFunctionOn", call, &res); err != nil {
		return false, fmt.Errorf("bridge: callFunctionOn(%d): %w", id, err)
	}
	if res.ExceptionDetails != nil || res.Result == nil {
		return false, nil
	}
	var v bool
	_ = json.Unmarshal(res.Result.Value, &v)
	return v, nil
}

func (b *bridge) stringOnNode(ctx context.Context, id selector.NodeID, fn string) (string, error) {
	objID, err := b.resolveObjectID(ctx, id)
	if err != nil {
		return "", err
	}
	call := runtime.CallFunctionOnParams{FunctionDeclaration: fn, ObjectID: objID, ReturnByValue: true}
	var res struct {
		Result           *runtime.RemoteObject     `json:"result"`
		ExceptionDetails *runtime.ExceptionDetails `json:"exceptionDetails"`
	}
	if err := b.client.Call(ctx, "Runtime.callFunctionOn", call, &res); err != nil {
		return "", fmt.Errorf("bridge: callFunctionOn(%d): %w", id, err)
	}
	if res.ExceptionDetails != nil || res.Result == nil {
		return "", nil
	}
	var v string
	_ = json.Unmarshal(res.Result.Value, &v)
	return v, nil
}

func (b *bridge) evalBool(ctx context.Context, expr string) (bool, error) {
	params := runtime.EvaluateParams{Expression: expr, ReturnByValue: true}
	var res struct {
		Result           *runtime.RemoteObject     `json:"result"`
		ExceptionDetails *runtime.ExceptionDetails `json:"exceptionDetails"`
	}
	if err := b.client.Call(ctx, "Runtime.evaluate", params, &res); err != nil {
		return false, fmt.Errorf("bridge: Runtime.evaluate(%q): %w", expr, err)
	}
	if res.ExceptionDetails != nil || res.Result == nil {
		return false, nil
	}
	var v bool
	_ = json.Unmarshal(res.Result.Value, &v)
	return v, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IsFileInput reports whether id is an <input type="file">.
func (b *bridge) IsFileInput(ctx context.Context, id selector.NodeID) (bool, error) {
	return b.boolOnNode(ctx, id, `function(){
		return this.tagName === 'INPUT' && (this.getAttribute('type')||'').toLowerCase() === 'file';
	}`)
}

// SetFileInputFiles uploads paths into id via DOM.setFileInputFiles
// (spec.md §6 "attach").
func (b *bridge) SetFileInputFiles(ctx context.Context, id selector.NodeID, paths []string) error {
	params := cdom.SetFileInputFilesParams{Files: paths, NodeID: cdom.NodeID(id)}
	return b.client.Call(ctx, "DOM.setFileInputFiles", params, nil)
}

// IsChecked reads id's .checked property (spec.md §3 "Wrapped element":
// isChecked/isSelected).
func (b *bridge) IsChecked(ctx context.Context, id selector.NodeID) (bool, error) {
	return b.boolOnNode(ctx, id, "function(){return !!this.checked}")
}

// SetChecked sets id's .checked property and dispatches input/change events
// so page listeners observe the change the same way a real click would
// (spec.md §3 "Wrapped element": check/uncheck/deselect).
func (b *bridge) SetChecked(ctx context.Context, id selector.NodeID, checked bool) error {
	fn := fmt.Sprintf(`function(){
		this.checked = %t;
		this.dispatchEvent(new Event('input', {bubbles: true}));
		this.dispatchEvent(new Event('change', {bubbles: true}));
	}`, checked)
	return b.callVoidOnNode(ctx, id, fn)
}

// SelectOption sets id's (a <select>) .value and dispatches input/change
// events (spec.md §3 "Wrapped element": combo box select(value)).
func (b *bridge) SelectOption(ctx context.Context, id selector.NodeID, value string) error {
	fn := fmt.Sprintf(`function(){
		this.value = %s;
		this.dispatchEvent(new Event('input', {bubbles: true}));
		this.dispatchEvent(new Event('change', {bubbles: true}));
	}`, jsStringLiteral(value))
	return b.callVoidOnNode(ctx, id, fn)
}

func (b *bridge) callVoidOnNode(ctx context.Context, id selector.NodeID, fn string) error {
	objID, err := b.resolveObjectID(ctx, id)
	if err != nil {
		return err
	}
	call := runtime.CallFunctionOnParams{FunctionDeclaration: fn, ObjectID: objID}
	var res struct {
		ExceptionDetails *runtime.ExceptionDetails `json:"exceptionDetails"`
	}
	if err := b.client.Call(ctx, "Runtime.callFunctionOn", call, &res); err != nil {
		return fmt.Errorf("bridge: callFunctionOn(%d): %w", id, err)
	}
	if res.ExceptionDetails != nil {
		return fmt.Errorf("bridge: callFunctionOn(%d) threw: %s", id, res.ExceptionDetails.Text)
	}
	return nil
}

// jsStringLiteral renders s as a safely-quoted JS string literal via JSON
// encoding (JSON string syntax is a subset of JS's).
func jsStringLiteral(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// Navigate calls Page.navigate(url) (spec.md §6 "goto").
func (b *bridge) Navigate(ctx context.Context, url string) error {
	return b.client.Call(ctx, "Page.navigate", page.NavigateParams{URL: url}, nil)
}

// Reload calls Page.reload (spec.md §6 "reload"). Page.reload takes no URL
// parameter — see DESIGN.md Open Question (b) on reload(url)'s ignored
// second argument.
func (b *bridge) Reload(ctx context.Context) error {
	return b.client.Call(ctx, "Page.reload", page.ReloadParams{}, nil)
}

// GoBack/GoForward walk session history via Page.getNavigationHistory +
// Page.navigateToHistoryEntry, since CDP has no direct "go back" command.
func (b *bridge) GoBack(ctx context.Context) error  { return b.navigateHistory(ctx, -1) }
func (b *bridge) GoForward(ctx context.Context) error { return b.navigateHistory(ctx, 1) }

func (b *bridge) navigateHistory(ctx context.Context, delta int) error {
	var hist struct {
		CurrentIndex int64 `json:"currentIndex"`
		Entries      []struct {
			ID int64 `json:"id"`
		} `json:"entries"`
	}
	if err := b.client.Call(ctx, "Page.getNavigationHistory", nil, &hist); err != nil {
		return fmt.Errorf("bridge: Page.getNavigationHistory: %w", err)
	}
	target := int(hist.CurrentIndex) + delta
	if target < 0 || target >= len(hist.Entries) {
		return fmt.Errorf("bridge: no history entry %d steps from current", delta)
	}
	params := struct {
		EntryID int64 `json:"entryId"`
	}{EntryID: hist.Entries[target].ID}
	return b.client.Call(ctx, "Page.navigateToHistoryEntry", params, nil)
}

// Screenshot calls Page.captureScreenshot, optionally capturing beyond the
// viewport for a full-page shot (spec.md §6 "screenshot").
func (b *bridge) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	params := page.CaptureScreenshotParams{CaptureBeyondViewport: fullPage}
	var res struct {
		Data string `json:"data"`
	}
	if err := b.client.Call(ctx, "Page.captureScreenshot", params, &res); err != nil {
		return nil, fmt.Errorf("bridge: Page.captureScreenshot: %w", err)
	}
	return base64.StdEncoding.DecodeString(res.Data)
}

// HighlightNode shows an Overlay highlight box around id until
// ClearHighlight is called (spec.md §5 supplemented "highlight").
func (b *bridge) HighlightNode(ctx context.Context, id selector.NodeID) error {
	params := overlay.HighlightNodeParams{
		HighlightConfig: &overlay.HighlightConfig{
			ContentColor: &overlay.RGBA{R: 255, G: 102, B: 0, A: 0.4},
			BorderColor:  &overlay.RGBA{R: 255, G: 102, B: 0, A: 0.9},
		},
		NodeID: cdom.NodeID(id),
	}
	return b.client.Call(ctx, "Overlay.highlightNode", params, nil)
}

// ClearHighlight removes any active Overlay highlight.
func (b *bridge) ClearHighlight(ctx context.Context) error {
	return b.client.Call(ctx, "Overlay.hideHighlight", nil, nil)
}

// SetViewport applies Emulation.setDeviceMetricsOverride (spec.md §5
// supplemented "setViewPort").
func (b *bridge) SetViewport(ctx context.Context, width, height int, deviceScaleFactor float64, mobile bool) error {
	params := struct {
		Width             int64   `json:"width"`
		Height            int64   `json:"height"`
		DeviceScaleFactor float64 `json:"deviceScaleFactor"`
		Mobile            bool    `json:"mobile"`
	}{Width: int64(width), Height: int64(height), DeviceScaleFactor: deviceScaleFactor, Mobile: mobile}
	return b.client.Call(ctx, "Emulation.setDeviceMetricsOverride", params, nil)
}

// Evaluate runs expr as a JS expression against the page (id == nil) or
// via Runtime.callFunctionOn against a resolved node's object (id != nil),
// returning the JSON-decoded result (spec.md §5 supplemented "evaluate").
func (b *bridge) Evaluate(ctx context.Context, id *selector.NodeID, expr string) (any, error) {
	var res struct {
		Result           *runtime.RemoteObject     `json:"result"`
		ExceptionDetails *runtime.ExceptionDetails `json:"exceptionDetails"`
	}
	if id == nil {
		params := runtime.EvaluateParams{Expression: expr, ReturnByValue: true}
		if err := b.client.Call(ctx, "Runtime.evaluate", params, &res); err != nil {
			return nil, fmt.Errorf("bridge: Runtime.evaluate: %w", err)
		}
	} else {
		objID, err := b.resolveObjectID(ctx, *id)
		if err != nil {
			return nil, err
		}
		fn := fmt.Sprintf("function(){ return (%s); }", expr)
		call := runtime.CallFunctionOnParams{FunctionDeclaration: fn, ObjectID: objID, ReturnByValue: true}
		if err := b.client.Call(ctx, "Runtime.callFunctionOn", call, &res); err != nil {
			return nil, fmt.Errorf("bridge: Runtime.callFunctionOn(evaluate): %w", err)
		}
	}
	if res.ExceptionDetails != nil {
		return nil, fmt.Errorf("bridge: evaluate threw: %s", res.ExceptionDetails.Text)
	}
	if res.Result == nil || len(res.Result.Value) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(res.Result.Value, &v); err != nil {
		return nil, fmt.Errorf("bridge: decode evaluate result: %w", err)
	}
	return v, nil
}

