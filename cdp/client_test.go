package cdp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeTarget runs a minimal CDP-speaking WebSocket server: it echoes a
// canned result for "Echo.test" and can be told to emit an event.
func fakeTarget(t *testing.T) (*httptest.Server, chan string) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	emit := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		go func() {
			for method := range emit {
				frame, _ := json.Marshal(map[string]any{"method": method, "params": map[string]any{}})
				conn.WriteMessage(websocket.TextMessage, frame)
			}
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req map[string]any
			json.Unmarshal(data, &req)

			if req["method"] == "Fail.test" {
				resp := map[string]any{
					"id":    req["id"],
					"error": map[string]any{"code": -32000, "message": "boom"},
				}
				b, _ := json.Marshal(resp)
				conn.WriteMessage(websocket.TextMessage, b)
				continue
			}

			resp := map[string]any{
				"id":     req["id"],
				"result": map[string]any{"ok": true},
			}
			b, _ := json.Marshal(resp)
			conn.WriteMessage(websocket.TextMessage, b)
		}
	}))
	return srv, emit
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestCallRoundTrip(t *testing.T) {
	srv, emit := fakeTarget(t)
	defer srv.Close()
	defer close(emit)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := Dial(ctx, wsURL(srv))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.Call(ctx, "Echo.test", nil, &out); err != nil {
		t.Fatalf("call: %v", err)
	}
	if !out.OK {
		t.Fatalf("expected ok=true")
	}
}

func TestCallWireError(t *testing.T) {
	srv, emit := fakeTarget(t)
	defer srv.Close()
	defer close(emit)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := Dial(ctx, wsURL(srv))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	err = c.Call(ctx, "Fail.test", nil, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	we, ok := err.(*WireError)
	if !ok {
		t.Fatalf("expected *WireError, got %T: %v", err, err)
	}
	if we.Method != "Fail.test" || we.Message != "boom" {
		t.Fatalf("unexpected wire error: %+v", we)
	}
}

func TestEventsSubscription(t *testing.T) {
	srv, emit := fakeTarget(t)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := Dial(ctx, wsURL(srv))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	ch, cancelSub := c.Events("Page.loadEventFired")
	defer cancelSub()

	emit <- "Page.loadEventFired"

	select {
	case ev := <-ch:
		if ev.Method != "Page.loadEventFired" {
			t.Fatalf("unexpected method %s", ev.Method)
		}
	case <-time.After(time.Second):
		t.Fatal("event never arrived")
	}
	close(emit)
}

func TestWaitForEndpoint(t *testing.T) {
	r := strings.NewReader("some preamble\nDevTools listening on ws://127.0.0.1:9222/devtools/browser/abc\nmore\n")
	url, err := WaitForEndpoint(context.Background(), r, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "ws://127.0.0.1:9222/devtools/browser/abc" {
		t.Fatalf("unexpected url: %s", url)
	}
}

func TestWaitForEndpointMissing(t *testing.T) {
	r := strings.NewReader("nothing here\n")
	_, err := WaitForEndpoint(context.Background(), r, time.Second)
	if err == nil {
		t.Fatal("expected an error when no endpoint line is present")
	}
}
