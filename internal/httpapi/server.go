// internal/httpapi/server.go
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
)

// Server runs the status surface until its context ends.
type Server struct {
	srv *http.Server
	log *slog.Logger
}

// NewServer wraps h with access logging (to accessLog) and panic recovery.
func NewServer(addr string, h http.Handler, accessLog io.Writer, log *slog.Logger) *Server {
	wrapped := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(log.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(false),
	)(handlers.CombinedLoggingHandler(accessLog, h))

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           wrapped,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("status_server_listening", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("status_server_stopped")
	return nil
}
