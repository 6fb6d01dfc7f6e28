package session

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"sync"
	"time"

	cdom "github.com/chromedp/cdproto/dom"
	"github.com/rs/zerolog/log"

	"github.com/taiko-go/taiko/bus"
	"github.com/taiko-go/taiko/cdp"
	"github.com/taiko-go/taiko/domain"
	"github.com/taiko-go/taiko/internal/poll"
)

// Config bounds Manager's timing behavior (spec.md §4.1, §9 config table).
type Config struct {
	LaunchDeadline    time.Duration // how long to wait for the DevTools endpoint announcement
	HandshakeTimeout  time.Duration
	ReconnectInterval time.Duration // retry cadence when a target dial fails
	NetworkIdleWindow time.Duration
	TempProfilePrefix string
	// IgnoreSSLErrors applies Security.setIgnoreCertificateErrors on every
	// attach (spec.md §4.1 "set certificate-error ignore").
	IgnoreSSLErrors bool
}

// Manager owns the browser process, the CDP client for whichever target is
// current, and the domain-adapter/interceptor/dialog state scoped to it
// (spec.md §4.1, §4.10). The zero value is not usable; use New.
type Manager struct {
	cfg Config

	mu              sync.Mutex
	cmd             *exec.Cmd
	addr            string // host:port serving Chrome's /json HTTP endpoints
	userDataDir     string
	ownsUserDataDir bool

	bus      *bus.Bus
	idle     *bus.IdleTracker
	client   *cdp.Client
	adapters *domain.Adapters
	current  string // current target id

	intercept *InterceptTable
	dialogs   *DialogRegistry

	rootMu    sync.Mutex
	rootReady bool
}

// New constructs a Manager. cfg zero fields fall back to spec defaults.
func New(cfg Config) *Manager {
	if cfg.LaunchDeadline <= 0 {
		cfg.LaunchDeadline = 15 * time.Second
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = time.Second
	}
	if cfg.NetworkIdleWindow <= 0 {
		cfg.NetworkIdleWindow = 400 * time.Millisecond
	}
	if cfg.TempProfilePrefix == "" {
		cfg.TempProfilePrefix = "taiko_dev_profile-"
	}
	return &Manager{
		cfg:       cfg,
		intercept: NewInterceptTable(),
		dialogs:   NewDialogRegistry(),
	}
}

// Bus, Client, Idle and CurrentTarget expose the live wiring other packages
// (selector/action's Executor implementation, the taiko root package) need.
func (m *Manager) Bus() *bus.Bus { return m.bus }
func (m *Manager) Client() *cdp.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client
}
func (m *Manager) Idle() *bus.IdleTracker { return m.idle }
func (m *Manager) CurrentTarget() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
func (m *Manager) Intercept() *InterceptTable { return m.intercept }
func (m *Manager) Dialogs() *DialogRegistry   { return m.dialogs }

// RootReady reports whether the current target's root DOM node id has been
// fetched since the last attach or navigation (spec.md §4.1/§3/§8
// "root-id-available check"). It is the closure waiter.Config.RootReady
// polls after every armed navigation promise resolves.
func (m *Manager) RootReady() bool {
	m.rootMu.Lock()
	defer m.rootMu.Unlock()
	return m.rootReady
}

// refreshRoot re-fetches the root DOM node id via DOM.getDocument and
// records whether it succeeded. Called once synchronously on every attach
// and again, asynchronously, on every Page.loadEventFired.
func (m *Manager) refreshRoot(ctx context.Context, client *cdp.Client) {
	var res struct {
		Root struct {
			NodeID int64 `json:"nodeId"`
		} `json:"root"`
	}
	err := client.Call(ctx, "DOM.getDocument", cdom.GetDocumentParams{Depth: 0}, &res)
	ready := err == nil && res.Root.NodeID != 0
	m.rootMu.Lock()
	m.rootReady = ready
	m.rootMu.Unlock()
	if err != nil {
		log.Debug().Err(err).Msg("session: refresh root DOM node id")
	}
}

// resolveFetch matches url against the interceptor table and, if it
// matches, runs its RequestRewrite, translating session's InterceptAction
// shape into domain.FetchDecision (session depends on domain already; doing
// the translation here, rather than in package domain, keeps domain free of
// a reverse dependency on session).
func (m *Manager) resolveFetch(url, method string, headers map[string]string, body string) domain.FetchDecision {
	act, ok := m.intercept.Match(url)
	if !ok {
		return domain.FetchDecision{}
	}
	d := domain.FetchDecision{
		Ok:          true,
		Block:       act.Block,
		MockStatus:  act.MockStatus,
		MockBody:    act.MockBody,
		MockHeaders: act.MockHeaders,
		RedirectURL: act.RedirectURL,
	}
	if act.RequestRewrite != nil {
		newURL, newMethod, newHeaders, newBody := act.RequestRewrite(url, method, headers, body)
		if newURL != "" {
			d.RedirectURL = newURL
		}
		d.Method = newMethod
		d.Headers = newHeaders
		d.Body = newBody
	}
	return d
}

// OpenBrowser spawns a Chromium-family process per opts, waits for its
// DevTools endpoint announcement, and dials its first page target
// (spec.md §4.1: launch → discover endpoint → attach).
func (m *Manager) OpenBrowser(ctx context.Context, opts LaunchOptions) error {
	chromePath := opts.ChromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}
	if chromePath == "" {
		return fmt.Errorf("session: no Chrome/Chromium executable found; set CHROME_PATH or LaunchOptions.ChromePath")
	}

	userDataDir := opts.UserDataDir
	ownsDir := false
	if userDataDir == "" {
		dir, err := os.MkdirTemp("", m.cfg.TempProfilePrefix)
		if err != nil {
			return fmt.Errorf("session: create temp profile dir: %w", err)
		}
		userDataDir = dir
		ownsDir = true
	}

	args := buildArgs(opts, userDataDir)
	cmd := exec.CommandContext(ctx, chromePath, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("session: attach stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("session: start %s: %w", chromePath, err)
	}

	wsURL, err := cdp.WaitForEndpoint(ctx, stderr, m.cfg.LaunchDeadline)
	if err != nil {
		_ = cmd.Process.Kill()
		return err
	}
	addr, err := hostPort(wsURL)
	if err != nil {
		_ = cmd.Process.Kill()
		return err
	}

	targets, err := cdp.ListTargets(ctx, addr)
	if err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("session: list initial targets: %w", err)
	}
	var page cdp.TargetInfo
	found := false
	for _, t := range targets {
		if t.Type == "page" {
			page = t
			found = true
			break
		}
	}
	if !found {
		page, err = cdp.NewTarget(ctx, addr, "about:blank")
		if err != nil {
			_ = cmd.Process.Kill()
			return fmt.Errorf("session: create initial page target: %w", err)
		}
	}

	m.mu.Lock()
	m.cmd = cmd
	m.addr = addr
	m.userDataDir = userDataDir
	m.ownsUserDataDir = ownsDir
	m.bus = bus.New()
	m.idle = bus.NewIdleTracker(m.bus, m.cfg.NetworkIdleWindow)
	m.mu.Unlock()

	log.Debug().Str("addr", addr).Str("userDataDir", userDataDir).Msg("session: browser launched")
	return m.switchTo(ctx, page)
}

// CloseBrowser tears down the current target's adapters/client, kills the
// browser process, removes an owned temp profile dir, and resets the
// interceptor table and dialog handler (spec.md §4.10: "reset on
// CloseBrowser").
func (m *Manager) CloseBrowser() error {
	m.mu.Lock()
	adapters, client, cmd, dir, owns := m.adapters, m.client, m.cmd, m.userDataDir, m.ownsUserDataDir
	m.adapters, m.client, m.cmd, m.current = nil, nil, nil, ""
	m.mu.Unlock()

	if adapters != nil {
		adapters.Close()
	}
	if client != nil {
		_ = client.Close()
	}
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
	if owns && dir != "" {
		_ = os.RemoveAll(dir)
	}

	m.intercept.Reset()
	m.dialogs.Reset()

	m.rootMu.Lock()
	m.rootReady = false
	m.rootMu.Unlock()
	return nil
}

// OpenTab creates a new page target navigated to url (or about:blank) and
// switches to it, returning the new target's id.
func (m *Manager) OpenTab(ctx context.Context, url string) (string, error) {
	m.mu.Lock()
	addr := m.addr
	m.mu.Unlock()

	t, err := cdp.NewTarget(ctx, addr, url)
	if err != nil {
		return "", fmt.Errorf("session: open tab: %w", err)
	}
	if err := m.switchTo(ctx, t); err != nil {
		return "", err
	}
	return t.ID, nil
}

// CloseTab closes targetID (spec.md §4.1, scenario 6). If no page target
// remains afterward, it closes the browser entirely and reports last=true;
// otherwise, if targetID was the current target, it re-attaches to one of
// the remaining targets before returning.
func (m *Manager) CloseTab(ctx context.Context, targetID string) (last bool, err error) {
	m.mu.Lock()
	addr, wasCurrent := m.addr, m.current == targetID
	m.mu.Unlock()

	if err := cdp.CloseTarget(ctx, addr, targetID); err != nil {
		return false, err
	}

	remaining, err := cdp.ListTargets(ctx, addr)
	if err != nil {
		return false, fmt.Errorf("session: list targets after close: %w", err)
	}
	var next *cdp.TargetInfo
	for i := range remaining {
		if remaining[i].Type == "page" {
			next = &remaining[i]
			break
		}
	}

	if next == nil {
		return true, m.CloseBrowser()
	}

	if wasCurrent {
		if err := m.switchTo(ctx, *next); err != nil {
			return false, err
		}
	}
	return false, nil
}

// SwitchTo dials targetID's WebSocket endpoint and makes it the current
// target, tearing down the previous target's adapters/client.
func (m *Manager) SwitchTo(ctx context.Context, targetID string) error {
	m.mu.Lock()
	addr := m.addr
	m.mu.Unlock()

	targets, err := cdp.ListTargets(ctx, addr)
	if err != nil {
		return fmt.Errorf("session: list targets: %w", err)
	}
	for _, t := range targets {
		if t.ID == targetID {
			return m.switchTo(ctx, t)
		}
	}
	return fmt.Errorf("session: no target with id %s", targetID)
}

// switchTo dials t's debugger URL with the reconnect policy (retry every
// ReconnectInterval up to LaunchDeadline, spec.md §4.1), tears down the
// previous target's Adapters/Client, and installs fresh ones.
func (m *Manager) switchTo(ctx context.Context, t cdp.TargetInfo) error {
	client, err := m.dialWithRetry(ctx, t.WebSocketDebuggerURL)
	if err != nil {
		return err
	}

	m.mu.Lock()
	prevAdapters, prevClient := m.adapters, m.client
	m.mu.Unlock()
	if prevAdapters != nil {
		prevAdapters.Close()
	}
	if prevClient != nil {
		_ = prevClient.Close()
	}

	m.mu.Lock()
	m.idle.Reset()
	m.mu.Unlock()

	hooks := domain.Hooks{
		IgnoreSSLErrors: m.cfg.IgnoreSSLErrors,
		OnDialog: func(kind, message string) (bool, string, bool) {
			return m.dialogs.Handle(DialogKind(kind), message)
		},
		OnFetch: m.resolveFetch,
		OnLoad: func() {
			go m.refreshRoot(context.Background(), client)
		},
	}
	adapters, err := domain.Install(ctx, client, m.bus, m.idle, hooks)
	if err != nil {
		_ = client.Close()
		return fmt.Errorf("session: install domain adapters for %s: %w", t.ID, err)
	}
	m.refreshRoot(ctx, client)

	m.mu.Lock()
	m.client = client
	m.adapters = adapters
	m.current = t.ID
	m.mu.Unlock()

	log.Debug().Str("target", t.ID).Str("url", t.URL).Msg("session: switched target")
	return nil
}

func (m *Manager) dialWithRetry(ctx context.Context, wsURL string) (*cdp.Client, error) {
	deadline := time.Now().Add(m.cfg.LaunchDeadline)
	var lastErr error
	for {
		dialCtx, cancel := context.WithTimeout(ctx, m.cfg.HandshakeTimeout)
		client, err := cdp.Dial(dialCtx, wsURL)
		cancel()
		if err == nil {
			return client, nil
		}
		lastErr = err
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("session: dial %s: %w", wsURL, lastErr)
		}
		if err := poll.Sleep(ctx, m.cfg.ReconnectInterval); err != nil {
			return nil, err
		}
	}
}

// hostPort extracts "host:port" from a ws:// debugger URL.
func hostPort(wsURL string) (string, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return "", fmt.Errorf("session: parse debugger url %q: %w", wsURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("session: debugger url %q has no host", wsURL)
	}
	return u.Host, nil
}
