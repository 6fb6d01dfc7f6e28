package config

import "time"

// Default constants for taiko session and action configuration.
const (
	DefaultLogLevel = "info"
	DefaultJSONLog  = false

	DefaultWindowWidth  = 1440
	DefaultWindowHeight = 900

	// DefaultNavigationTimeout bounds how long the navigation waiter waits
	// for the armed promise set to resolve (§4.5).
	DefaultNavigationTimeout = 15 * time.Second
	// DefaultGotoTimeout is the wider deadline used by goto and reload;
	// openTab does not wait for navigation.
	DefaultGotoTimeout = 30 * time.Second
	// DefaultWaitForStart bounds how long the waiter waits for the promise
	// set to become non-empty before concluding no navigation occurred.
	DefaultWaitForStart = 500 * time.Millisecond

	// DefaultNetworkIdleWindow is the quiet window with no outstanding
	// requests before networkIdle fires (§4.4).
	DefaultNetworkIdleWindow = 400 * time.Millisecond

	// DefaultElementsToMatch caps candidate elements considered for an
	// action before occlusion-checking (§4.6).
	DefaultElementsToMatch = 10

	// DefaultNearProximity is the edge-distance threshold (pixels) for the
	// "near" relative constraint (§4.7).
	DefaultNearProximity = 30.0

	// DefaultExistsPollInterval / DefaultExistsTimeout are the default
	// polling cadence and deadline for selector.Exists / Get (§4.6).
	DefaultExistsPollInterval = 1000 * time.Millisecond
	DefaultExistsTimeout      = 10000 * time.Millisecond

	// DefaultFocusPollInterval paces the write()/clear() focus-wait loop (§4.9).
	DefaultFocusPollInterval = 500 * time.Millisecond

	// DefaultWriteDelay is the per-character delay for write() (§4.9).
	DefaultWriteDelay = 0 * time.Millisecond

	// DefaultObserveTime is the default for Config.ObserveTime. No verb
	// reads Observe or ObserveTime; no observe-mode delay is applied.
	DefaultObserveTime = 3000 * time.Millisecond

	// DefaultReconnectInterval is the CDP Client reconnect retry cadence (§4.1).
	DefaultReconnectInterval = 1 * time.Second

	// DefaultLaunchDeadline bounds how long OpenBrowser waits for the
	// WebSocket endpoint to appear on the child process's stderr (§4.1).
	DefaultLaunchDeadline = 15 * time.Second

	// DefaultHandshakeTimeout bounds the WebSocket dial to the discovered
	// debugging endpoint.
	DefaultHandshakeTimeout = 10 * time.Second

	// TempProfilePrefix names the temporary user-data-dir created per
	// session (§6 Filesystem).
	TempProfilePrefix = "taiko_dev_profile-"
)
