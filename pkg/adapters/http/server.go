package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Finder is the slice of canopy.Finder the API needs.
type Finder interface {
	Run(ctx context.Context, root string) (*domain.Report, error)
	Categories(ctx context.Context) ([]string, error)
	Report(ctx context.Context, id string) (*domain.Report, error)
	Reports(ctx context.Context) ([]string, error)
}

// ErrorObserver is notified of runs that ended with an error.
type ErrorObserver interface {
	ObserveError(err error)
}

// Server serves the search API.
type Server struct {
	Finder  Finder
	Streams *StreamManager

	logger   *slog.Logger
	version  string
	gatherer prometheus.Gatherer
	observer ErrorObserver
	timeout  time.Duration
}

// Option defines a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithMetrics exposes gatherer on GET /metrics and reports failed runs to observer.
func WithMetrics(gatherer prometheus.Gatherer, observer ErrorObserver) Option {
	return func(s *Server) {
		s.gatherer = gatherer
		s.observer = observer
	}
}

// WithStreams shares a StreamManager whose Hooks feed the Finder, so that
// GET /events streams search progress.
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		s.Streams = streams
	}
}

// WithRunTimeout bounds a single POST /runs request.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// NewHandler creates a new HTTP handler for the finder.
func NewHandler(finder Finder, opts ...Option) http.Handler {
	s := &Server{
		Finder:  finder,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/categories", s.ListCategories)
	r.Get("/events", s.SubscribeEvents)
	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.CreateRun)
		r.Get("/", s.ListRuns)
		r.Get("/{id}", s.GetRun)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RunRequest is the body of POST /runs.
type RunRequest struct {
	Root string `json:"root"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string         `json:"error"`
	Report *domain.Report `json:"report,omitempty"`
}

// CreateRun handles POST /runs. Found and Exhausted both answer 201: an
// exhausted search is a result, not a failure.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		s.logger.Warn("CreateRun: invalid request body", "error", err)
		return
	}
	body.Root = strings.TrimSpace(body.Root)
	if body.Root == "" {
		s.writeError(w, http.StatusBadRequest, "root is required", nil)
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, err := s.Finder.Run(ctx, body.Root)
	if err != nil {
		if s.observer != nil {
			s.observer.ObserveError(err)
		}
		status := statusFor(err)
		s.logger.Error("CreateRun failed", "root", body.Root, "status", status, "error", err)
		s.writeError(w, status, err.Error(), report)
		return
	}

	w.Header().Set("Location", "/runs/"+report.ID)
	s.writeJSON(w, http.StatusCreated, report)
}

// ListRuns handles GET /runs.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Finder.Reports(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("List error: %v", err), nil)
		s.logger.Error("ListRuns failed", "error", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"runs": ids})
}

// GetRun handles GET /runs/{id}.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.Finder.Report(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("run %s not found", id), nil)
			return
		}
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Load error: %v", err), nil)
		s.logger.Error("GetRun failed", "id", id, "error", err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// ListCategories handles GET /categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	roots, err := s.Finder.Categories(r.Context())
	if err != nil {
		s.writeError(w, statusFor(err), err.Error(), nil)
		s.logger.Error("ListCategories failed", "error", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"categories": roots})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "canopy-http",
		"version": s.version,
	})
}

// SubscribeEvents handles GET /events (SSE). Every lifecycle event of every
// run is forwarded as a JSON data line.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// statusFor maps run errors to HTTP status codes.
func statusFor(err error) int {
	var limitsErr *domain.LimitsError
	switch {
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNavigation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &limitsErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string, report *domain.Report) {
	s.writeJSON(w, status, ErrorResponse{Error: msg, Report: report})
}
