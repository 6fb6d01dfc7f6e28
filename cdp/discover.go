package cdp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// TargetInfo describes one entry from Chrome's /json HTTP endpoints (spec.md
// §3 "Target descriptor"). Equality between targets is by ID.
type TargetInfo struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// endpointPattern matches the line Chrome prints to stderr on startup, e.g.
// "DevTools listening on ws://127.0.0.1:9222/devtools/browser/<uuid>".
var endpointPattern = regexp.MustCompile(`^DevTools listening on (ws://[^\s]+)$`)

// WaitForEndpoint scans r (the browser process's stderr) for the WebSocket
// endpoint announcement line, returning it or an error if deadline elapses
// first (spec.md §4.1: "Fail if the browser exits before the endpoint is
// emitted within a 15s deadline").
func WaitForEndpoint(ctx context.Context, r io.Reader, deadline time.Duration) (string, error) {
	type result struct {
		url string
		err error
	}
	resultCh := make(chan result, 1)

	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			if m := endpointPattern.FindStringSubmatch(line); m != nil {
				resultCh <- result{url: m[1]}
				return
			}
		}
		resultCh <- result{err: fmt.Errorf("cdp: browser process ended before announcing a debugging endpoint")}
	}()

	select {
	case r := <-resultCh:
		return r.url, r.err
	case <-time.After(deadline):
		return "", fmt.Errorf("cdp: timed out after %s waiting for debugging endpoint", deadline)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ListTargets calls GET http://addr/json/list.
func ListTargets(ctx context.Context, addr string) ([]TargetInfo, error) {
	var targets []TargetInfo
	if err := getJSON(ctx, fmt.Sprintf("http://%s/json/list", addr), &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// NewTarget calls GET http://addr/json/new?<url> to create a fresh page
// target and returns its descriptor.
func NewTarget(ctx context.Context, addr, url string) (TargetInfo, error) {
	if url == "" {
		url = "about:blank"
	}
	var t TargetInfo
	err := getJSON(ctx, fmt.Sprintf("http://%s/json/new?%s", addr, url), &t)
	return t, err
}

// CloseTarget calls GET http://addr/json/close/<id>.
func CloseTarget(ctx context.Context, addr, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/json/close/%s", addr, id), nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cdp: close target %s: status %s", id, resp.Status)
	}
	return nil
}

func getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("cdp: GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cdp: GET %s: status %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
