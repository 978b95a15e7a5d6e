// Package health serves the keep-alive liveness endpoint used by external
// uptime monitors. It runs independently of the bot's main flow.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Server is the liveness HTTP server.
type Server struct {
	srv *http.Server
}

// New creates a Server listening on the given port. The single route
// returns a fixed 200-OK liveness string.
func New(port int) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Bot is running and healthy!")
	})

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", s.srv.Addr).Msg("Health endpoint started")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Health endpoint failed")
	}
}
