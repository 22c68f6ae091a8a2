package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"bloghub/internal/domain"

	"github.com/gorilla/mux"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
	checkTimeout      = 2 * time.Second
	statsWindow       = 24 * time.Hour
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type SearchCounter interface {
	CountSearches(ctx context.Context, since time.Time) (map[domain.SearchOutcome]int64, error)
}

type SessionCounter interface {
	Len() int
}

type Server struct {
	db       Pinger
	searches SearchCounter
	sessions SessionCounter
	now      func() time.Time
	log      *slog.Logger
}

func New(db Pinger, searches SearchCounter, sessions SessionCounter, log *slog.Logger) *Server {
	return &Server{
		db:       db,
		searches: searches,
		sessions: sessions,
		now:      time.Now,
		log:      log,
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		s.log.WarnContext(ctx, "Readiness check is failed",
			"error", err)

		s.writeJSON(ctx, w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"error":  "database is unreachable",
		})
		return
	}

	s.writeJSON(ctx, w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	counts, err := s.searches.CountSearches(ctx, s.now().Add(-statsWindow))
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to count searches",
			"error", err)

		s.writeJSON(ctx, w, http.StatusInternalServerError, map[string]any{"error": "failed to count searches"})
		return
	}

	s.writeJSON(ctx, w, http.StatusOK, map[string]any{
		"sessions": s.sessions.Len(),
		"searches": counts,
		"window":   statsWindow.String(),
	})
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.ErrorContext(ctx, "Failed to write response",
			"error", err,
			"status", status)
	}
}
