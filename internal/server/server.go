// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/archive"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/errors"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/logger"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/metrics"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/observability"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/popularity"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/puzzle/template"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/search"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/pkg/registry"
)

// Options carries the collaborators the API server dispatches to.
// Popularity, Archive, Search, and Observability are optional; the
// matching endpoints and instrumentation degrade when they are nil.
type Options struct {
	Cache         *template.Cache
	Warmer        *template.Warmer
	Registry      *registry.ShapeRegistry
	Popularity    *popularity.Tracker
	Archive       *archive.Store
	Search        *search.Service
	Observability *observability.Observability
	Logger        logger.Logger
}

// Server is the HTTP surface of the template service.
type Server struct {
	cache      *template.Cache
	warmer     *template.Warmer
	registry   *registry.ShapeRegistry
	popularity *popularity.Tracker
	archive    *archive.Store
	search     *search.Service
	obs        *observability.Observability
	logger     logger.Logger
	errors     *errors.ErrorHandler
	mux        *http.ServeMux
}

// New wires the route table. Cache and Registry are required.
func New(opts Options) (*Server, error) {
	if opts.Cache == nil {
		return nil, errors.NewConfigInvalidError("server requires a template cache")
	}
	if opts.Registry == nil {
		return nil, errors.NewConfigInvalidError("server requires a shape registry")
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	s := &Server{
		cache:      opts.Cache,
		warmer:     opts.Warmer,
		registry:   opts.Registry,
		popularity: opts.Popularity,
		archive:    opts.Archive,
		search:     opts.Search,
		obs:        opts.Observability,
		logger:     log,
		errors:     errors.NewErrorHandler(log),
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/templates", s.instrument("/api/v1/templates", s.handleGenerateTemplate))
	s.mux.HandleFunc("/api/v1/templates/", s.instrument("/api/v1/templates/{key}", s.handleTemplateItem))
	s.mux.HandleFunc("/api/v1/admin/warm", s.instrument("/api/v1/admin/warm", s.handleWarm))
	s.mux.HandleFunc("/api/v1/shapes", s.instrument("/api/v1/shapes", s.handleListShapes))
	s.mux.HandleFunc("/api/v1/shapes/search", s.instrument("/api/v1/shapes/search", s.handleSearchShapes))

	s.mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	s.mux.HandleFunc("/ready", s.handleReady)
	s.mux.Handle("/metrics", promhttp.Handler())
}

// handleReady pings every wired backing store. A deployment with
// archive or search disabled is ready without them.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]func(context.Context) error{}
	if s.popularity != nil {
		checks["redis"] = s.popularity.Ping
	}
	if s.archive != nil {
		checks["postgres"] = s.archive.Ping
	}
	if s.search != nil {
		checks["elasticsearch"] = s.search.Ping
	}

	components := make(map[string]string, len(checks))
	ready := true
	for name, ping := range checks {
		if err := ping(ctx); err != nil {
			components[name] = err.Error()
			ready = false
			continue
		}
		components[name] = "ok"
	}

	status := "ready"
	code := http.StatusOK
	if !ready {
		status = "not ready"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"components": components,
		"time":       time.Now().Format(time.RFC3339),
	})
}

// Handler returns the root handler for mounting in an http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// statusRecorder captures the written status for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument tags every request with an id and records its duration
// under the route label rather than the raw path.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(rec, r)
		duration := time.Since(start)

		metrics.HTTPRequestDuration.WithLabelValues(route, strconv.Itoa(rec.status)).Observe(duration.Seconds())

		s.logger.Debug("Request handled", map[string]interface{}{
			"requestId": requestID,
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    rec.status,
			"duration":  duration.String(),
		})
	}
}

func requestIDFrom(w http.ResponseWriter) string {
	return w.Header().Get("X-Request-ID")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Response encoding failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
