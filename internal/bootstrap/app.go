package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sadopc/carbontrack/internal/carbon"
)

// drainTimeout bounds how long in-flight gateway requests may run after a
// shutdown signal.
const drainTimeout = 10 * time.Second

// App runs the carbon gateway: the HTTP server plus the record repository
// it owns.
type App struct {
	logger *slog.Logger
	server *http.Server
	repo   carbon.Repository
}

// NewApp is used by Wire to build the runnable app.
func NewApp(logger *slog.Logger, server *http.Server, repo carbon.Repository) *App {
	return &App{logger: logger.With("component", "gateway"), server: server, repo: repo}
}

// Run binds the listen address, serves until ctx is done, drains open
// requests and closes the repository. A bind failure is returned before
// anything is served.
func (a *App) Run(ctx context.Context) error {
	defer a.closeRepository()

	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}
	a.logger.Info("gateway listening", "address", ln.Addr().String())

	served := make(chan error, 1)
	go func() { served <- a.server.Serve(ln) }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("draining gateway requests", "timeout", drainTimeout)
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := a.server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("gateway stopped")
	return nil
}

func (a *App) closeRepository() {
	if err := a.repo.Close(); err != nil {
		a.logger.Error("close repository", "error", err)
	}
}
