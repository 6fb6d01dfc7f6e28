// Package domain implements the thin per-CDP-domain adapters described in
// spec.md §4.3: each adapter subscribes to a fixed set of CDP events on a
// cdp.Client and republishes canonical events onto a bus.Bus, plus the
// dialog/request-interception hooks from §4.10.
//
// Command encoding for the domains actually exercised (Page, DOM, Runtime,
// Network, Input, Target, Overlay, Security, Emulation, Fetch) is mostly
// delegated to github.com/chromedp/cdproto's generated types; taiko/bridge.go
// encodes Page.navigateToHistoryEntry and Emulation.setDeviceMetricsOverride
// params with inline structs instead.
package domain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/security"
	"github.com/chromedp/cdproto/target"
	"github.com/rs/zerolog/log"

	"github.com/taiko-go/taiko/bus"
	"github.com/taiko-go/taiko/cdp"
)

// Adapters owns the subscriptions installed on one cdp.Client and the
// cancel functions needed to tear them all down on target switch.
type Adapters struct {
	client  *cdp.Client
	bus     *bus.Bus
	idle    *bus.IdleTracker
	cancels []func()
}

// DialogHandler answers a Page.javascriptDialogOpening event. ok is false
// when the caller has no handler registered for kind, in which case Install
// dismisses the dialog (spec.md §4.10 default).
type DialogHandler func(kind, message string) (accept bool, promptText string, ok bool)

// FetchDecision is what Install's Fetch.requestPaused adapter does with a
// paused request (spec.md §4.10 table: block / mockResponse / redirectUrl /
// requestRewriter). Ok is false when nothing matched the request's URL, in
// which case Install continues it unmodified.
type FetchDecision struct {
	Ok          bool
	Block       bool
	MockStatus  int
	MockBody    string
	MockHeaders map[string]string
	RedirectURL string
	Method      string
	Headers     map[string]string
	Body        string
}

// FetchHandler resolves a paused request against the caller's interceptor
// table (session.InterceptTable.Match, plus any RequestRewrite).
type FetchHandler func(url, method string, headers map[string]string, body string) FetchDecision

// Hooks bundles the attach-time policy and the §4.10 callbacks Install
// wires into the Page.javascriptDialogOpening / Fetch.requestPaused
// adapters. A nil OnDialog/OnFetch leaves the corresponding event dismissed
// or continued unmodified.
type Hooks struct {
	IgnoreSSLErrors bool
	OnDialog        DialogHandler
	OnFetch         FetchHandler
	// OnLoad, if set, runs after every Page.loadEventFired — used to
	// refresh the cached root DOM node id (spec.md §4.1/§3/§8).
	OnLoad func()
}

// Install enables the Network, Page, DOM, Overlay and Security domains
// (spec.md §4.1 attach: "enable Network, Page, DOM, Overlay, Security
// domains") — Chrome emits none of the events subscribed to below until its
// owning domain is enabled — applies the certificate-error policy, then
// subscribes every adapter in the spec §4.3 table plus the dialog/Fetch
// hooks from §4.10. idle receives Network in-flight bookkeeping. Fetch is
// enabled unconditionally so interceptors registered after attach
// (Browser.Intercept) still take effect without a second round trip.
func Install(ctx context.Context, client *cdp.Client, b *bus.Bus, idle *bus.IdleTracker, hooks Hooks) (*Adapters, error) {
	for _, method := range []string{"Network.enable", "Page.enable", "DOM.enable", "Overlay.enable", "Security.enable", "Fetch.enable"} {
		if err := client.Call(ctx, method, nil, nil); err != nil {
			return nil, fmt.Errorf("domain: %s: %w", method, err)
		}
	}
	if hooks.IgnoreSSLErrors {
		params := security.SetIgnoreCertificateErrorsParams{Ignore: true}
		if err := client.Call(ctx, "Security.setIgnoreCertificateErrors", params, nil); err != nil {
			return nil, fmt.Errorf("domain: Security.setIgnoreCertificateErrors: %w", err)
		}
	}

	a := &Adapters{client: client, bus: b, idle: idle}

	a.on("Network.requestWillBeSent", func(raw json.RawMessage) {
		var ev network.EventRequestWillBeSent
		if err := json.Unmarshal(raw, &ev); err != nil {
			log.Warn().Err(err).Msg("domain: decode requestWillBeSent")
			return
		}
		idle.RequestStarted(string(ev.RequestID))
		b.Publish(bus.Event{Kind: bus.KindXHREvent, Data: string(ev.RequestID)})
	})

	a.on("Network.loadingFinished", func(raw json.RawMessage) {
		var ev network.EventLoadingFinished
		if err := json.Unmarshal(raw, &ev); err != nil {
			return
		}
		idle.RequestFinished(string(ev.RequestID))
	})

	a.on("Network.loadingFailed", func(raw json.RawMessage) {
		var ev network.EventLoadingFailed
		if err := json.Unmarshal(raw, &ev); err != nil {
			return
		}
		idle.RequestFinished(string(ev.RequestID))
	})

	a.on("Page.loadEventFired", func(json.RawMessage) {
		b.Publish(bus.Event{Kind: bus.KindLoadEventFired})
		if hooks.OnLoad != nil {
			hooks.OnLoad()
		}
	})

	a.on("Page.domContentEventFired", func(json.RawMessage) {
		b.Publish(bus.Event{Kind: bus.KindDOMContentEventFired})
	})

	a.on("Page.frameStartedLoading", func(json.RawMessage) {
		b.Publish(bus.Event{Kind: bus.KindFrameStartedLoading})
	})

	a.on("Page.frameStoppedLoading", func(json.RawMessage) {
		b.Publish(bus.Event{Kind: bus.KindFrameStoppedLoading})
	})

	a.on("Page.lifecycleEvent", func(raw json.RawMessage) {
		var ev page.EventLifecycleEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return
		}
		switch ev.Name {
		case "firstMeaningfulPaint":
			b.Publish(bus.Event{Kind: bus.KindFirstMeaningfulPaint})
		case "firstPaint":
			b.Publish(bus.Event{Kind: bus.KindFirstPaint})
		}
	})

	a.on("Target.targetCreated", func(raw json.RawMessage) {
		var ev target.EventTargetCreated
		if err := json.Unmarshal(raw, &ev); err != nil {
			return
		}
		b.Publish(bus.Event{Kind: bus.KindTargetCreated, Data: infoOf(ev.TargetInfo)})
	})

	lastURL := make(map[string]string)
	a.on("Target.targetInfoChanged", func(raw json.RawMessage) {
		var ev target.EventTargetInfoChanged
		if err := json.Unmarshal(raw, &ev); err != nil || ev.TargetInfo == nil {
			return
		}
		// Only a URL change constitutes a navigation signal (spec.md §4.3 table).
		// The first report for a target counts as a change.
		id := string(ev.TargetInfo.TargetID)
		if prev, seen := lastURL[id]; seen && prev == ev.TargetInfo.URL {
			return
		}
		lastURL[id] = ev.TargetInfo.URL
		b.Publish(bus.Event{Kind: bus.KindTargetNavigated, Data: infoOf(ev.TargetInfo)})
	})

	a.on("Page.javascriptDialogOpening", func(raw json.RawMessage) {
		var ev page.EventJavascriptDialogOpening
		if err := json.Unmarshal(raw, &ev); err != nil {
			log.Warn().Err(err).Msg("domain: decode javascriptDialogOpening")
			return
		}
		var accept bool
		var promptText string
		if hooks.OnDialog != nil {
			accept, promptText, _ = hooks.OnDialog(string(ev.Type), ev.Message)
		}
		params := page.HandleJavaScriptDialogParams{Accept: accept, PromptText: promptText}
		if err := client.Call(context.Background(), "Page.handleJavaScriptDialog", params, nil); err != nil {
			log.Warn().Err(err).Msg("domain: Page.handleJavaScriptDialog")
		}
	})

	a.on("Fetch.requestPaused", func(raw json.RawMessage) {
		var ev fetch.EventRequestPaused
		if err := json.Unmarshal(raw, &ev); err != nil {
			log.Warn().Err(err).Msg("domain: decode requestPaused")
			return
		}
		var decision FetchDecision
		if hooks.OnFetch != nil && ev.Request != nil {
			decision = hooks.OnFetch(ev.Request.URL, ev.Request.Method, headerMap(ev.Request.Headers), ev.Request.PostData)
		}
		bctx := context.Background()
		switch {
		case !decision.Ok:
			_ = client.Call(bctx, "Fetch.continueRequest", fetch.ContinueRequestParams{RequestID: ev.RequestID}, nil)
		case decision.Block:
			_ = client.Call(bctx, "Fetch.failRequest", fetch.FailRequestParams{RequestID: ev.RequestID, ErrorReason: network.ErrorReasonBlockedByClient}, nil)
		case decision.MockStatus != 0:
			_ = client.Call(bctx, "Fetch.fulfillRequest", fetch.FulfillRequestParams{
				RequestID:       ev.RequestID,
				ResponseCode:    int64(decision.MockStatus),
				ResponseHeaders: headerEntries(decision.MockHeaders),
				Body:            base64.StdEncoding.EncodeToString([]byte(decision.MockBody)),
			}, nil)
		default:
			params := fetch.ContinueRequestParams{RequestID: ev.RequestID}
			if decision.RedirectURL != "" {
				params.URL = decision.RedirectURL
			}
			if decision.Method != "" {
				params.Method = decision.Method
			}
			if decision.Headers != nil {
				params.Headers = headerEntries(decision.Headers)
			}
			if decision.Body != "" {
				params.PostData = decision.Body
			}
			_ = client.Call(bctx, "Fetch.continueRequest", params, nil)
		}
	})

	return a, nil
}

func headerMap(h network.Headers) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

func headerEntries(h map[string]string) []*fetch.HeaderEntry {
	if len(h) == 0 {
		return nil
	}
	out := make([]*fetch.HeaderEntry, 0, len(h))
	for k, v := range h {
		out = append(out, &fetch.HeaderEntry{Name: k, Value: v})
	}
	return out
}

func infoOf(ti *target.Info) *bus.TargetInfo {
	if ti == nil {
		return nil
	}
	return &bus.TargetInfo{ID: string(ti.TargetID), Type: ti.Type, URL: ti.URL, Title: ti.Title}
}

func (a *Adapters) on(method string, handle func(json.RawMessage)) {
	ch, cancel := a.client.Events(method)
	stop := make(chan struct{})
	a.cancels = append(a.cancels, func() {
		cancel()
		close(stop)
	})
	go func() {
		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					return
				}
				handle(ev.Params)
			case <-stop:
				return
			}
		}
	}()
}

// Close tears down every subscription installed by Install.
func (a *Adapters) Close() {
	for _, cancel := range a.cancels {
		cancel()
	}
	a.idle.Reset()
}
