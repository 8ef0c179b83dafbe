package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/civic/internal/catalog"
	"github.com/alexanderramin/civic/internal/config"
	"github.com/alexanderramin/civic/internal/metrics"
	"github.com/alexanderramin/civic/internal/preference"
	"github.com/alexanderramin/civic/internal/service"
)

// App holds the engine and supporting services used by CLI commands.
type App struct {
	Engine  *service.Engine
	Import  service.ImportService
	Catalog catalog.Client
	Flusher *preference.Flusher
	Metrics *metrics.Metrics
	Config  *config.Config
	Logger  *slog.Logger

	// IsInteractive reports whether stdin is a terminal. Forms and the
	// spinner are only shown when it returns true.
	IsInteractive func() bool

	// Now overrides the wall clock in tests.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (a *App) config() *config.Config {
	if a.Config != nil {
		return a.Config
	}
	return config.Default()
}

// persist waits for background catalog writes and flushes preferences.
func (a *App) persist(ctx context.Context) error {
	if a.Engine != nil {
		a.Engine.Wait()
	}
	if a.Flusher == nil {
		return nil
	}
	if err := a.Flusher.Flush(ctx); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

func (a *App) requireEngine() error {
	if a.Engine == nil {
		return fmt.Errorf("action engine is not configured")
	}
	return nil
}
