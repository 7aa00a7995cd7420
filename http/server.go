package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// StartAsync binds srv.Addr and serves in the background. Binding errors are returned
// right away; the returned callback shuts the server down.
func StartAsync(srv *http.Server, logger zerolog.Logger) (shutdownFunc func(context.Context), err error) {
	logger = logger.With().Str(logging.FieldModule, "http").Logger()

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", srv.Addr)
	}

	go func() {
		logger.Info().Str("http.addr", listener.Addr().String()).Msg("Starting HTTP server")

		err := srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Err(err).Msg("HTTP server error")
		}
	}()

	return func(ctx context.Context) {
		logger.Info().Msg("Shutting down HTTP server")

		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Err(err).Msg("Failed to shutdown HTTP server")
			return
		}

		logger.Info().Msg("HTTP server shutdown complete")
	}, nil
}
