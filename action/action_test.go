package action

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/taiko-go/taiko/bus"
	"github.com/taiko-go/taiko/domain"
	"github.com/taiko-go/taiko/selector"
	"github.com/taiko-go/taiko/waiter"
)

// fakeExec is an in-memory Executor/Evaluator double.
type fakeExec struct {
	queryResult []selector.NodeID
	visible     map[selector.NodeID]bool
	rects       map[selector.NodeID]domain.Rect
	opacity     map[selector.NodeID]float64
	hitAt       map[[2]float64]selector.NodeID
	descendants map[selector.NodeID]selector.NodeID // child -> ancestor it belongs to

	focused      selector.NodeID
	docFocus     bool
	writable     bool
	isPassword   bool
	insertedText []rune
	pressedKeys  []string
	releasedKeys []string
	scrolled     [2]float64
	mouseEvents  []string

	fileInputs  map[selector.NodeID]bool
	uploaded    map[selector.NodeID][]string
	checked     map[selector.NodeID]bool
	selectedVal map[selector.NodeID]string
}

func (f *fakeExec) Query(ctx context.Context, expr string, isXPath bool) ([]selector.NodeID, error) {
	return f.queryResult, nil
}
func (f *fakeExec) Visible(ctx context.Context, id selector.NodeID) (bool, error) {
	if f.visible == nil {
		return true, nil
	}
	return f.visible[id], nil
}
func (f *fakeExec) Rect(ctx context.Context, id selector.NodeID) (domain.Rect, error) {
	return f.rects[id], nil
}
func (f *fakeExec) Text(ctx context.Context, id selector.NodeID) (string, error)  { return "", nil }
func (f *fakeExec) Value(ctx context.Context, id selector.NodeID) (string, error) { return "", nil }

func (f *fakeExec) ScrollIntoView(ctx context.Context, id selector.NodeID) error { return nil }
func (f *fakeExec) ElementFromPoint(ctx context.Context, x, y float64) (selector.NodeID, bool, error) {
	id, ok := f.hitAt[[2]float64{x, y}]
	return id, ok, nil
}
func (f *fakeExec) Contains(ctx context.Context, ancestor, node selector.NodeID) (bool, error) {
	return f.descendants[node] == ancestor, nil
}
func (f *fakeExec) Opacity(ctx context.Context, id selector.NodeID) (float64, error) {
	if f.opacity == nil {
		return 1, nil
	}
	if v, ok := f.opacity[id]; ok {
		return v, nil
	}
	return 1, nil
}
func (f *fakeExec) DispatchMouseEvent(ctx context.Context, kind string, x, y float64, button MouseButton, clickCount int) error {
	f.mouseEvents = append(f.mouseEvents, kind)
	return nil
}
func (f *fakeExec) Focus(ctx context.Context, id selector.NodeID) error {
	f.focused = id
	return nil
}
func (f *fakeExec) DocumentHasFocus(ctx context.Context) (bool, error) { return f.docFocus, nil }
func (f *fakeExec) ActiveElementWritable(ctx context.Context) (bool, error) {
	return f.writable, nil
}
func (f *fakeExec) ActiveElementIsPassword(ctx context.Context) (bool, error) {
	return f.isPassword, nil
}
func (f *fakeExec) InsertChar(ctx context.Context, ch rune) error {
	f.insertedText = append(f.insertedText, ch)
	return nil
}
func (f *fakeExec) DispatchKey(ctx context.Context, key string, down bool) error {
	if down {
		f.pressedKeys = append(f.pressedKeys, key)
	} else {
		f.releasedKeys = append(f.releasedKeys, key)
	}
	return nil
}
func (f *fakeExec) SelectActiveElementText(ctx context.Context) error { return nil }
func (f *fakeExec) ScrollBy(ctx context.Context, dx, dy float64) error {
	f.scrolled = [2]float64{dx, dy}
	return nil
}

func (f *fakeExec) IsFileInput(ctx context.Context, id selector.NodeID) (bool, error) {
	return f.fileInputs[id], nil
}
func (f *fakeExec) SetFileInputFiles(ctx context.Context, id selector.NodeID, paths []string) error {
	if f.uploaded == nil {
		f.uploaded = map[selector.NodeID][]string{}
	}
	f.uploaded[id] = paths
	return nil
}
func (f *fakeExec) IsChecked(ctx context.Context, id selector.NodeID) (bool, error) {
	return f.checked[id], nil
}
func (f *fakeExec) SetChecked(ctx context.Context, id selector.NodeID, checked bool) error {
	if f.checked == nil {
		f.checked = map[selector.NodeID]bool{}
	}
	f.checked[id] = checked
	return nil
}
func (f *fakeExec) SelectOption(ctx context.Context, id selector.NodeID, value string) error {
	if f.selectedVal == nil {
		f.selectedVal = map[selector.NodeID]string{}
	}
	f.selectedVal[id] = value
	return nil
}

func newPipeline(exec *fakeExec) *Pipeline {
	eng := selector.New(exec, selector.Config{ElementsToMatch: 10})
	b := bus.New()
	w := waiter.New(b)
	return New(exec, eng, w, b, Config{WaitForStart: 20 * time.Millisecond, NavTimeout: 50 * time.Millisecond})
}

func TestClickSucceedsWhenElementFromPointMatchesCandidate(t *testing.T) {
	exec := &fakeExec{
		queryResult: []selector.NodeID{1},
		rects:       map[selector.NodeID]domain.Rect{1: {Left: 0, Top: 0, Right: 100, Bottom: 20}},
		hitAt:       map[[2]float64]selector.NodeID{{50, 10}: 1},
	}
	p := newPipeline(exec)

	res, err := p.Click(context.Background(), selector.Contains("Submit"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Description == "" {
		t.Fatal("expected a non-empty description")
	}
	if len(exec.mouseEvents) != 2 || exec.mouseEvents[0] != "mousePressed" || exec.mouseEvents[1] != "mouseReleased" {
		t.Fatalf("unexpected mouse events: %v", exec.mouseEvents)
	}
}

func TestClickPassesWhenOverlayIsTransparent(t *testing.T) {
	exec := &fakeExec{
		queryResult: []selector.NodeID{1},
		rects:       map[selector.NodeID]domain.Rect{1: {Left: 0, Top: 0, Right: 100, Bottom: 20}},
		hitAt:       map[[2]float64]selector.NodeID{{50, 10}: 99}, // an overlay, not the candidate
		opacity:     map[selector.NodeID]float64{99: 0.05},
	}
	p := newPipeline(exec)

	_, err := p.Click(context.Background(), selector.Contains("Submit"))
	if err != nil {
		t.Fatalf("expected transparent-overlay tolerance to pass the occlusion check, got: %v", err)
	}
}

func TestClickFailsWhenCoveredByOpaqueElement(t *testing.T) {
	exec := &fakeExec{
		queryResult: []selector.NodeID{1},
		rects:       map[selector.NodeID]domain.Rect{1: {Left: 0, Top: 0, Right: 100, Bottom: 20}},
		hitAt:       map[[2]float64]selector.NodeID{{50, 10}: 99},
	}
	p := newPipeline(exec)

	_, err := p.Click(context.Background(), selector.Contains("Submit"))
	if _, ok := err.(*ElementCoveredError); !ok {
		t.Fatalf("expected *ElementCoveredError, got %T: %v", err, err)
	}
}

func TestClickToleratesSiblingAmbiguity(t *testing.T) {
	exec := &fakeExec{
		queryResult: []selector.NodeID{1, 2},
		rects: map[selector.NodeID]domain.Rect{
			1: {Left: 0, Top: 0, Right: 100, Bottom: 20},
			2: {Left: 0, Top: 30, Right: 100, Bottom: 50},
		},
		hitAt:       map[[2]float64]selector.NodeID{{50, 10}: 200},
		descendants: map[selector.NodeID]selector.NodeID{200: 2}, // hit is a descendant of candidate 2
	}
	p := newPipeline(exec)

	_, err := p.Click(context.Background(), selector.Contains("Item"))
	if err != nil {
		t.Fatalf("expected sibling-descendant tolerance to pass, got: %v", err)
	}
}

func TestClickTooManyMatchesWhenTruncatedAndNoneHitTestable(t *testing.T) {
	ids := make([]selector.NodeID, 15)
	rects := make(map[selector.NodeID]domain.Rect, 15)
	for i := range ids {
		ids[i] = selector.NodeID(i + 1)
		rects[ids[i]] = domain.Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}
	}
	exec := &fakeExec{queryResult: ids, rects: rects} // hitAt is empty: nothing is ever hit-testable
	p := newPipeline(exec)

	_, err := p.Click(context.Background(), selector.Contains("X"))
	if _, ok := err.(*TooManyMatchesError); !ok {
		t.Fatalf("expected *TooManyMatchesError, got %T: %v", err, err)
	}
}

func TestClickRejectsFileInputInFavorOfAttach(t *testing.T) {
	exec := &fakeExec{
		queryResult: []selector.NodeID{1},
		rects:       map[selector.NodeID]domain.Rect{1: {Left: 0, Top: 0, Right: 100, Bottom: 20}},
		hitAt:       map[[2]float64]selector.NodeID{{50, 10}: 1},
		fileInputs:  map[selector.NodeID]bool{1: true},
	}
	p := newPipeline(exec)

	_, err := p.Click(context.Background(), selector.Contains("Upload"))
	uoe, ok := err.(*UnsupportedOperationError)
	if !ok {
		t.Fatalf("expected *UnsupportedOperationError, got %T: %v", err, err)
	}
	if uoe.Op != "attach" {
		t.Fatalf("expected Op %q, got %q", "attach", uoe.Op)
	}
	if len(exec.mouseEvents) != 0 {
		t.Fatalf("expected no mouse events dispatched, got %v", exec.mouseEvents)
	}
}

func TestAttachRejectsMissingFile(t *testing.T) {
	exec := &fakeExec{}
	p := newPipeline(exec)

	_, err := p.Attach(context.Background(), selector.Contains("Upload"), "/no/such/file-"+t.Name())
	if _, ok := err.(*FileNotFoundError); !ok {
		t.Fatalf("expected *FileNotFoundError, got %T: %v", err, err)
	}
}

func TestAttachUploadsIntoFileInput(t *testing.T) {
	path := t.TempDir() + "/resume.pdf"
	if err := os.WriteFile(path, []byte("pdf"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	exec := &fakeExec{
		queryResult: []selector.NodeID{1},
		fileInputs:  map[selector.NodeID]bool{1: true},
	}
	p := newPipeline(exec)

	res, err := p.Attach(context.Background(), selector.Contains("Upload"), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := exec.uploaded[1]; len(got) != 1 || got[0] != path {
		t.Fatalf("expected %q uploaded to node 1, got %v", path, got)
	}
	if res.Description == "" {
		t.Fatal("expected a non-empty description")
	}
}

func TestAttachRejectsNonFileInput(t *testing.T) {
	exec := &fakeExec{queryResult: []selector.NodeID{1}}
	p := newPipeline(exec)

	_, err := p.Attach(context.Background(), selector.Contains("Name"), t.TempDir())
	if _, ok := err.(*UnsupportedOperationError); !ok {
		t.Fatalf("expected *UnsupportedOperationError, got %T: %v", err, err)
	}
}

func TestCheckUncheckAndIsChecked(t *testing.T) {
	exec := &fakeExec{queryResult: []selector.NodeID{1}}
	p := newPipeline(exec)

	if _, err := p.Check(context.Background(), selector.Contains("Agree")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := p.IsChecked(context.Background(), selector.Contains("Agree"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected IsChecked to report true after Check")
	}

	if _, err := p.Uncheck(context.Background(), selector.Contains("Agree")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err = p.IsSelected(context.Background(), selector.Contains("Agree"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected IsSelected to report false after Uncheck")
	}
}

func TestSelectPicksComboBoxOption(t *testing.T) {
	exec := &fakeExec{queryResult: []selector.NodeID{1}}
	p := newPipeline(exec)

	if _, err := p.Select(context.Background(), selector.Contains("Country"), "NZ"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.selectedVal[1] != "NZ" {
		t.Fatalf("expected option %q selected, got %q", "NZ", exec.selectedVal[1])
	}
}

func TestWriteRejectsWhenActiveElementNotWritable(t *testing.T) {
	exec := &fakeExec{docFocus: true, writable: false}
	p := newPipeline(exec)

	_, err := p.Write(context.Background(), "hello", WriteOptions{})
	if _, ok := err.(*NotWritableError); !ok {
		t.Fatalf("expected *NotWritableError, got %T: %v", err, err)
	}
}

func TestWriteMasksPasswordInDescription(t *testing.T) {
	exec := &fakeExec{docFocus: true, writable: true, isPassword: true}
	p := newPipeline(exec)

	res, err := p.Write(context.Background(), "hunter2", WriteOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Description != "Wrote *******" {
		t.Fatalf("expected masked description, got %q", res.Description)
	}
	if string(exec.insertedText) != "hunter2" {
		t.Fatalf("expected characters dispatched in full, got %q", string(exec.insertedText))
	}
}

func TestClearSelectsAndBackspaces(t *testing.T) {
	exec := &fakeExec{docFocus: true, writable: true}
	p := newPipeline(exec)

	res, err := p.Clear(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.pressedKeys) != 1 || exec.pressedKeys[0] != "Backspace" {
		t.Fatalf("expected a single Backspace key-down, got %v", exec.pressedKeys)
	}
	if res.Description != "Cleared" {
		t.Fatalf("unexpected description: %q", res.Description)
	}
}

func TestPressReleasesInReverseOrder(t *testing.T) {
	exec := &fakeExec{}
	p := newPipeline(exec)

	_, err := p.Press(context.Background(), []string{"Control", "A"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.pressedKeys) != 2 || exec.pressedKeys[0] != "Control" || exec.pressedKeys[1] != "A" {
		t.Fatalf("expected down order [Control, A], got %v", exec.pressedKeys)
	}
	if len(exec.releasedKeys) != 2 || exec.releasedKeys[0] != "A" || exec.releasedKeys[1] != "Control" {
		t.Fatalf("expected release order [A, Control], got %v", exec.releasedKeys)
	}
}

func TestScrollDirectionsUseDefaultDistance(t *testing.T) {
	exec := &fakeExec{}
	p := newPipeline(exec)

	if _, err := p.ScrollDown(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.scrolled[1] != defaultScrollPx {
		t.Fatalf("expected default downward scroll distance, got %v", exec.scrolled)
	}

	if _, err := p.ScrollLeft(context.Background(), 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.scrolled[0] != -40 {
		t.Fatalf("expected explicit leftward distance, got %v", exec.scrolled)
	}
}
