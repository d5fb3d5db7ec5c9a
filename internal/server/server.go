// Package server provides shared HTTP server utilities.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Server timeouts.
const (
	ReadHeaderTimeout = 1 * time.Second
	ReadTimeout       = 5 * time.Second
	WriteTimeout      = 5 * time.Second
	ShutdownTimeout   = 10 * time.Second
)

// Run listens on addr and serves handler on it, registering graceful shutdown
// for when the context is canceled. The returned address is the bound listener
// address; pass "127.0.0.1:0" for a random available port. The server is
// configured with standard timeouts.
func Run(ctx context.Context, grp *errgroup.Group, handler http.Handler, addr string) (string, error) {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return "", err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
	}

	grp.Go(func() error {
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	grp.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return listener.Addr().String(), nil
}
