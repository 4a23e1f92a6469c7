package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

// DefaultShutdownGrace is used when Run is given a non-positive grace period.
const DefaultShutdownGrace = 10 * time.Second

// Run binds srv.Addr and serves until ctx ends, SIGINT or SIGTERM arrives, or
// the server fails. A bind failure is returned before anything is served.
// In-flight requests get grace to finish before the server is closed.
func Run(ctx context.Context, srv *http.Server, logger *slog.Logger, grace time.Duration) error {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
	logger.Info("server listening", "addr", ln.Addr().String())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "grace", grace)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
