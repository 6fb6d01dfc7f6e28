package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Config holds the session- and action-level configuration that OpenBrowser
// and its verbs read defaults from. The CLI builds one with Load from
// flags/env; taiko.OpenBrowser falls back to built-in defaults when given nil.
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Browser launch
	Headless     bool
	ChromePath   string
	WindowWidth  int
	WindowHeight int
	ExtraArgs    []string

	// TLS
	IgnoreSSLErrors bool

	// Navigation waiter
	NavigationTimeout time.Duration
	GotoTimeout       time.Duration
	WaitForStart      time.Duration
	NetworkIdleWindow time.Duration

	// Selector engine
	ElementsToMatch int
	NearProximity   float64

	// Observability
	Observe     bool
	ObserveTime time.Duration
}

// Load builds a Config by combining defaults, environment variables, and
// CLI flags. Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		Headless:          true,
		WindowWidth:       DefaultWindowWidth,
		WindowHeight:      DefaultWindowHeight,
		NavigationTimeout: DefaultNavigationTimeout,
		GotoTimeout:       DefaultGotoTimeout,
		WaitForStart:      DefaultWaitForStart,
		NetworkIdleWindow: DefaultNetworkIdleWindow,
		ElementsToMatch:   DefaultElementsToMatch,
		NearProximity:     DefaultNearProximity,
		ObserveTime:       DefaultObserveTime,
	}

	if v := os.Getenv("TAIKO_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}

	if cmd != nil {
		if f := cmd.Flags().Lookup("chrome-path"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.ChromePath = s
			}
		}
		if f := cmd.Flags().Lookup("headless"); f != nil {
			cfg.Headless = f.Value.String() == "true"
		}
		if f := cmd.Flags().Lookup("json"); f != nil && f.Value.String() == "true" {
			cfg.JSONLog = true
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil && f.Value.String() == "true" {
			cfg.LogLevel = "debug"
		}
		if f := cmd.Flags().Lookup("nav-timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.NavigationTimeout = d
				}
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
