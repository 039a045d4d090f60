package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"reelreview/internal/api"
	"reelreview/internal/logging"
	"reelreview/internal/services"
)

// maxBodyBytes bounds request bodies; drawings are the largest payloads.
const maxBodyBytes = 4 << 20

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	svc     *api.Service
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind string, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(bind),
		logger: logger,
		daemon: d,
		svc:    d.service,
	}
	srv.handler = srv.routes()
	return srv
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.daemon.metrics.Middleware)

	r.Handle("/metrics", s.daemon.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/health", s.handleHealth)
		r.Get("/timecode", s.handleTimecode)
		r.Post("/paths/simplify", s.handleSimplifyPath)
		r.Post("/paths/smooth", s.handleSmoothPath)
		r.Post("/drawings", s.handleDrawing)

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", s.handleListVideos)
			r.Post("/", s.handleRegisterVideo)
			r.Route("/{videoID}", func(r chi.Router) {
				r.Get("/", s.handleGetVideo)
				r.Delete("/", s.handleRemoveVideo)
				r.Get("/comments", s.handleListComments)
				r.Post("/comments", s.handleCreateComment)
				r.Post("/comments/import", s.handleImportComments)
				r.Get("/sessions", s.handleListSessions)
				r.Post("/sessions", s.handleCreateSession)
			})
		})

		r.Route("/comments/{commentID}", func(r chi.Router) {
			r.Patch("/", s.handleEditComment)
			r.Delete("/", s.handleDeleteComment)
			r.Post("/replies", s.handleReplyComment)
			r.Post("/resolve", s.handleResolveComment)
			r.Post("/reopen", s.handleReopenComment)
			r.Post("/reactions", s.handleReactComment)
		})

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Use(s.sessionAccess)
			r.Get("/", s.handleGetSession)
			r.Post("/participants", s.handleInviteParticipant)
			r.Delete("/participants/{participantID}", s.handleRemoveParticipant)
			r.Post("/participants/{participantID}/viewed", s.handleMarkViewed)
			r.Post("/participants/{participantID}/decision", s.handleDecide)
			r.Post("/participants/{participantID}/reset", s.handleResetParticipant)
			r.Post("/acknowledge", s.handleAcknowledge)
			r.Post("/supersede", s.handleSupersede)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, api.ErrorResponse{Error: "route not found", Kind: string(services.KindNotFound)})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, api.ErrorResponse{Error: "method not allowed", Kind: string(services.KindValidation)})
	})
	return r
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		s.server = nil
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.daemon.Status(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

// handleHealth answers 200 while the database accepts queries and 503
// otherwise.
func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.daemon.store.Ping(r.Context()); err != nil {
		logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "database ping failed", "health_check",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the database file and disk space"),
		)
		s.writeJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// decodeJSON reads the request body into dst. An empty body leaves dst at
// its zero value; unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return services.Wrap(services.ErrValidation, "daemon", "decode body", "invalid JSON body", err)
	}
	if decoder.More() {
		return services.Wrap(services.ErrValidation, "daemon", "decode body", "body must contain a single JSON value", nil)
	}
	return nil
}

// statusFor maps an error classification to its HTTP status.
func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	kind := services.KindOf(err)
	status := statusFor(kind)
	body := api.ErrorResponse{
		Error:   err.Error(),
		Kind:    string(kind),
		Details: api.ValidationDetails(err),
	}
	if status == http.StatusInternalServerError {
		body.Error = "internal error"
		s.log().Error("request failed", logging.Error(err))
	}
	s.writeError(w, status, body)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, body api.ErrorResponse) {
	s.writeJSON(w, status, body)
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.NewNop()
}
