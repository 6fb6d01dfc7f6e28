// Package app provides the core application initialization and lifecycle
// management for the taiko-repl CLI: logger setup plus the open browser
// handle commands act against.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taiko-go/taiko/internal/config"
	"github.com/taiko-go/taiko/taiko"
)

// Application holds the dependencies shared across a taiko-repl invocation:
// the resolved config, the logger it configured and the open Browser handle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config  *config.Config
	Logger  *zerolog.Logger
	Browser *taiko.Browser

	startTime time.Time
}

// New creates and initializes a new Application: it configures logging from
// cfg and then opens a browser via taiko.OpenBrowser.
//
// If browser launch fails, an error is returned and no resources are leaked.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logLevel := zerolog.ErrorLevel // default: suppress non-verbose info logs
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		// Treat "info" as non-verbose (don't display info logs unless -v is used)
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter()
	}
	logger := log.Output(logWriter).With().Timestamp().Logger()

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Bool("headless", cfg.Headless).
		Msg("logger initialized")

	browser, err := taiko.OpenBrowser(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}

	app := &Application{
		Config:    cfg,
		Logger:    &logger,
		Browser:   browser,
		startTime: time.Now(),
	}

	logger.Info().Msg("taiko-repl: application initialized")
	return app, nil
}

// Close gracefully shuts down the application: kills the browser process and
// logs uptime. A context is accepted for symmetry with New but the browser
// teardown itself is synchronous.
func (a *Application) Close(ctx context.Context) error {
	_ = ctx
	a.Logger.Info().Msg("shutting down application")

	if a.Browser != nil {
		if err := a.Browser.CloseBrowser(); err != nil {
			a.Logger.Warn().Err(err).Msg("error closing browser")
		}
	}

	uptime := time.Since(a.startTime)
	a.Logger.Info().Dur("uptime", uptime).Msg("application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
