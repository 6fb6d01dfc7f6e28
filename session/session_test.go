package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildArgsIncludesProfileAndPort(t *testing.T) {
	args := buildArgs(LaunchOptions{Port: 9333, WindowWidth: 800, WindowHeight: 600}, "/tmp/profile-x")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "--remote-debugging-port=9333") {
		t.Fatalf("expected pinned port, got %q", joined)
	}
	if !strings.Contains(joined, "--user-data-dir=/tmp/profile-x") {
		t.Fatalf("expected user-data-dir flag, got %q", joined)
	}
	if !strings.Contains(joined, "--window-size=800,600") {
		t.Fatalf("expected window-size flag, got %q", joined)
	}
	if strings.Contains(joined, "--headless") {
		t.Fatalf("did not expect headless flag when Headless=false, got %q", joined)
	}
}

func TestBuildArgsHeadlessAndExtraArgs(t *testing.T) {
	args := buildArgs(LaunchOptions{Headless: true, Args: []string{"--proxy-server=localhost:8080"}}, "/tmp/p")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "--headless=new") {
		t.Fatalf("expected headless flag, got %q", joined)
	}
	if !strings.Contains(joined, "--proxy-server=localhost:8080") {
		t.Fatalf("expected extra arg passthrough, got %q", joined)
	}
}

func TestBuildArgsDefaultWindowSize(t *testing.T) {
	args := buildArgs(LaunchOptions{}, "/tmp/p")
	if !strings.Contains(strings.Join(args, " "), "--window-size=1440,900") {
		t.Fatalf("expected default window size, args: %v", args)
	}
}

func TestHostPortParsesWebSocketURL(t *testing.T) {
	addr, err := hostPort("ws://127.0.0.1:9222/devtools/browser/abcd-1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr != "127.0.0.1:9222" {
		t.Fatalf("got %q", addr)
	}
}

func TestHostPortRejectsMalformed(t *testing.T) {
	if _, err := hostPort("not a url \x7f"); err == nil {
		t.Fatal("expected an error for a malformed url")
	}
}

func TestIsExecutable(t *testing.T) {
	dir := t.TempDir()
	exePath := filepath.Join(dir, "fake-chrome")
	if err := os.WriteFile(exePath, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if !isExecutable(exePath) {
		t.Fatal("expected freshly-written 0755 file to be executable")
	}

	nonExePath := filepath.Join(dir, "not-exe")
	if err := os.WriteFile(nonExePath, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	if runtimeIsUnix() && isExecutable(nonExePath) {
		t.Fatal("expected a 0644 file to not be executable on unix")
	}
}

func TestInterceptTableFirstMatchWins(t *testing.T) {
	tbl := NewInterceptTable()
	tbl.Intercept("example.com", InterceptAction{Block: true})
	tbl.Intercept("example.com/api", InterceptAction{MockStatus: 200})

	action, ok := tbl.Match("https://example.com/api/users")
	if !ok {
		t.Fatal("expected a match")
	}
	if !action.Block {
		t.Fatal("expected the first registered (broader) pattern to win")
	}
}

func TestInterceptTableResetClears(t *testing.T) {
	tbl := NewInterceptTable()
	tbl.Intercept("x", InterceptAction{Block: true})
	tbl.Reset()
	if _, ok := tbl.Match("x"); ok {
		t.Fatal("expected no matches after Reset")
	}
}

func TestDialogRegistryDefaultsToDismiss(t *testing.T) {
	reg := NewDialogRegistry()
	_, _, ok := reg.Handle(DialogAlert, "hi")
	if ok {
		t.Fatal("expected no handler registered")
	}
}

func TestDialogRegistryInvokesRegisteredHandler(t *testing.T) {
	reg := NewDialogRegistry()
	reg.On(DialogPrompt, func(kind DialogKind, message string) (bool, string) {
		return true, "answer: " + message
	})
	accept, text, ok := reg.Handle(DialogPrompt, "your name?")
	if !ok || !accept || text != "answer: your name?" {
		t.Fatalf("unexpected result: accept=%v text=%q ok=%v", accept, text, ok)
	}
}

func runtimeIsUnix() bool {
	return os.PathSeparator == '/'
}
