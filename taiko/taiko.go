package taiko

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/taiko-go/taiko/action"
	"github.com/taiko-go/taiko/internal/config"
	urlutil "github.com/taiko-go/taiko/internal/utils/url"
	"github.com/taiko-go/taiko/selector"
	"github.com/taiko-go/taiko/session"
	"github.com/taiko-go/taiko/waiter"
)

// Browser is the handle returned by OpenBrowser: one Session Manager plus
// the selector/action/waiter wiring rebuilt on every target switch
// (spec.md §4.1, §4.11). The zero value is not usable.
type Browser struct {
	cfg *config.Config
	mgr *session.Manager

	mu     sync.Mutex
	br     *bridge
	engine *selector.Engine
	pipe   *action.Pipeline
	wait   *waiter.Waiter
}

// OpenBrowser spawns a Chromium-family process, attaches to its first page
// target, and returns a ready Browser handle (spec.md §4.1, §6 "openBrowser").
func OpenBrowser(ctx context.Context, cfg *config.Config) (*Browser, error) {
	if cfg == nil {
		cfg = defaultConfig()
	}

	mgr := session.New(session.Config{
		LaunchDeadline:    config.DefaultLaunchDeadline,
		HandshakeTimeout:  config.DefaultHandshakeTimeout,
		ReconnectInterval: config.DefaultReconnectInterval,
		NetworkIdleWindow: cfg.NetworkIdleWindow,
		TempProfilePrefix: config.TempProfilePrefix,
		IgnoreSSLErrors:   cfg.IgnoreSSLErrors,
	})

	opts := session.LaunchOptions{
		ChromePath:   cfg.ChromePath,
		Headless:     cfg.Headless,
		WindowWidth:  cfg.WindowWidth,
		WindowHeight: cfg.WindowHeight,
		Args:         cfg.ExtraArgs,
	}
	if err := mgr.OpenBrowser(ctx, opts); err != nil {
		return nil, NewError(CodeInvalidOperation, "open browser", err)
	}

	b := &Browser{cfg: cfg, mgr: mgr}
	b.rewire()
	log.Info().Msg("taiko: browser opened")
	return b, nil
}

// defaultConfig mirrors internal/config.Load's literal defaults for callers
// that construct a Browser outside the CLI's cobra-flag path.
func defaultConfig() *config.Config {
	return &config.Config{
		LogLevel:          config.DefaultLogLevel,
		Headless:          true,
		WindowWidth:       config.DefaultWindowWidth,
		WindowHeight:      config.DefaultWindowHeight,
		NavigationTimeout: config.DefaultNavigationTimeout,
		GotoTimeout:       config.DefaultGotoTimeout,
		WaitForStart:      config.DefaultWaitForStart,
		NetworkIdleWindow: config.DefaultNetworkIdleWindow,
		ElementsToMatch:   config.DefaultElementsToMatch,
		NearProximity:     config.DefaultNearProximity,
		ObserveTime:       config.DefaultObserveTime,
	}
}

// rewire rebuilds the bridge/engine/pipeline/waiter set bound to
// whichever target the Manager currently holds. Called after every
// target-changing operation (OpenTab, SwitchTo, CloseTab-of-current).
func (b *Browser) rewire() {
	br := newBridge(b.mgr.Client())
	engine := selector.New(br, selector.Config{
		ElementsToMatch: b.cfg.ElementsToMatch,
		PollInterval:    config.DefaultExistsPollInterval.Seconds(),
		PollTimeout:     config.DefaultExistsTimeout.Seconds(),
	})
	wait := waiter.New(b.mgr.Bus())
	pipe := action.New(br, engine, wait, b.mgr.Bus(), action.Config{
		ElementsToMatch: b.cfg.ElementsToMatch,
		ActionTimeout:   b.cfg.NavigationTimeout,
		FocusPoll:       config.DefaultFocusPollInterval,
		FocusTimeout:    10 * time.Second,
		CharDelay:       config.DefaultWriteDelay,
		WaitForStart:    b.cfg.WaitForStart,
		NavTimeout:      b.cfg.NavigationTimeout,
		RootReady:       b.mgr.RootReady,
	})

	b.mu.Lock()
	b.br, b.engine, b.pipe, b.wait = br, engine, pipe, wait
	b.mu.Unlock()
}

func (b *Browser) current() (*selector.Engine, *action.Pipeline, *waiter.Waiter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine, b.pipe, b.wait
}

func (b *Browser) bridge() *bridge {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.br
}

// CloseBrowser kills the browser process and releases its resources
// (spec.md §6 "closeBrowser"). It returns ErrNotInitialized when the
// browser has already been closed.
func (b *Browser) CloseBrowser() error {
	if b.mgr.Client() == nil {
		return ErrNotInitialized
	}
	if err := b.mgr.CloseBrowser(); err != nil {
		return NewError(CodeInvalidOperation, "close browser", err)
	}
	return nil
}

// OpenTab creates a page target at url (or about:blank) and switches to it
// (spec.md §6 "openTab"). It returns once the new target is attached; it
// does not wait for the tab's navigation to finish.
func (b *Browser) OpenTab(ctx context.Context, rawURL string) (Result, error) {
	url := urlutil.Normalize(rawURL)
	id, err := b.mgr.OpenTab(ctx, url)
	if err != nil {
		return Result{}, NewError(CodeInvalidOperation, "open tab", err)
	}
	b.rewire()
	return Result{Description: fmt.Sprintf("Opened tab %s", id)}, nil
}

// CloseTab closes targetID (spec.md §6 "closeTab", §4.1 scenario 6). If it
// was the last remaining page target, the browser itself is closed and no
// rewire is attempted over the now-dead Manager.
func (b *Browser) CloseTab(ctx context.Context, targetID string) (Result, error) {
	last, err := b.mgr.CloseTab(ctx, targetID)
	if err != nil {
		return Result{}, NewError(CodeInvalidOperation, "close tab", err)
	}
	if last {
		return Result{Description: "Closing last target and browser."}, nil
	}
	b.rewire()
	return Result{Description: fmt.Sprintf("Closed tab %s", targetID)}, nil
}

// SwitchTo makes targetID the current tab (spec.md §6 "switchTo").
func (b *Browser) SwitchTo(ctx context.Context, targetID string) (Result, error) {
	if err := b.mgr.SwitchTo(ctx, targetID); err != nil {
		return Result{}, NewError(CodeInvalidOperation, "switch tab", err)
	}
	b.rewire()
	return Result{Description: fmt.Sprintf("Switched to tab %s", targetID)}, nil
}

// Intercept registers a request interceptor (spec.md §4.10).
func (b *Browser) Intercept(pattern string, action session.InterceptAction) {
	b.mgr.Intercept().Intercept(pattern, action)
}

// OnDialog registers a handler for one JS dialog kind (spec.md §4.10).
func (b *Browser) OnDialog(kind session.DialogKind, handler session.DialogHandler) {
	b.mgr.Dialogs().On(kind, handler)
}
