// Package app assembles and runs the skill backend.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voicebridge/actionable/internal/skill/config"
	"github.com/voicebridge/actionable/internal/skill/dispatch"
	"github.com/voicebridge/actionable/internal/skill/homeassistant"
	"github.com/voicebridge/actionable/internal/skill/locale"
	"github.com/voicebridge/actionable/internal/skill/server"
	"github.com/voicebridge/actionable/internal/skill/store"
)

const shutdownTimeout = 10 * time.Second

// App wires the message catalog, the audit store, the dispatcher and the
// HTTP server together.
type App struct {
	cfg    *config.Config
	store  *store.Store
	server *server.Server
}

// New builds an App from a validated configuration.
func New(cfg *config.Config) (*App, error) {
	catalog, err := locale.Load()
	if err != nil {
		return nil, fmt.Errorf("load message catalog: %w", err)
	}

	var auditStore *store.Store
	if cfg.Database.Path != "" {
		auditStore, err = store.New(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("open audit store: %w", err)
		}
		slog.Info("audit log enabled", "path", cfg.Database.Path)
	}

	haCfg := homeassistant.Config{
		BaseURL: cfg.HomeAssistant.URL,
		Token:   cfg.HomeAssistant.Token,
		Timeout: cfg.HomeAssistant.Timeout,
	}
	if cfg.HomeAssistant.VerifySSL != nil && !*cfg.HomeAssistant.VerifySSL {
		haCfg.InsecureSkipVerify = true
		slog.Warn("TLS certificate verification disabled")
	}

	dispatcher := dispatch.New(dispatch.Config{
		HomeAssistant: haCfg,
		Locales:       catalog,
		Audit:         auditStore,
	})

	return &App{
		cfg:    cfg,
		store:  auditStore,
		server: server.New(cfg.HTTP.Addr, dispatcher),
	}, nil
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM or a server
// failure, then shuts down gracefully.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("skill endpoint listening", "addr", a.cfg.HTTP.Addr)
		errCh <- a.server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		slog.Warn("server shutdown", "err", err)
	}

	a.Stop()
	return nil
}

// Stop releases held resources. Safe to call more than once.
func (a *App) Stop() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("closing audit store", "err", err)
		}
		a.store = nil
	}
}
