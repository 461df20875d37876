// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/errors"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/validation"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/models"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/search"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/pkg/registry"
)

const (
	sideEffectTimeout = 2 * time.Second
	readinessTimeout  = 3 * time.Second
)

// GenerateRequest is the selection posted by the storefront.
type GenerateRequest struct {
	ShapeIDs []string `json:"shapeIds"`
}

// GenerateResponse carries the template plus whether this request
// produced a fresh build.
type GenerateResponse struct {
	Template *models.PuzzleTemplate `json:"template"`
	Cached   bool                   `json:"cached"`
}

// WarmRequest is an operator-supplied batch of combinations.
type WarmRequest struct {
	Combinations [][]string `json:"combinations"`
}

// WarmResponse reports the outcome of a warming batch.
type WarmResponse struct {
	Built   int `json:"built"`
	Skipped int `json:"skipped"`
}

// ClearResponse reports how many templates a cache clear removed.
type ClearResponse struct {
	Removed int `json:"removed"`
}

// ShapeListResponse is the catalog listing payload.
type ShapeListResponse struct {
	Shapes []registry.Shape `json:"shapes"`
	Count  int              `json:"count"`
}

// handleGenerateTemplate serves POST /api/v1/templates: validate the
// selection, return the cached template or build it, then feed the
// popularity and archive stores.
func (s *Server) handleGenerateTemplate(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(w)

	if r.Method != http.MethodPost {
		s.errors.WriteHTTP(w, r, requestID, errors.NewMethodNotAllowedError(r.Method))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errors.WriteHTTP(w, r, requestID, errors.NewBadRequestError(err.Error()))
		return
	}

	// Malformed ids fall through to the cache's own validation so the
	// syntax error wins over the membership error.
	for _, id := range req.ShapeIDs {
		if validation.ValidateShapeID(id) != nil {
			continue
		}
		if !s.registry.Has(id) {
			s.errors.WriteHTTP(w, r, requestID, errors.NewUnknownShapeError(id))
			return
		}
	}

	ctx := r.Context()
	if s.obs != nil {
		var span trace.Span
		ctx, span = s.obs.StartSpan(ctx, "template.generate")
		defer span.End()
	}

	start := time.Now()
	tpl, built, err := s.cache.GetOrCreate(req.ShapeIDs)
	if err != nil {
		s.errors.WriteHTTP(w, r, requestID, err)
		return
	}

	if s.obs != nil {
		tier := strconv.Itoa(len(tpl.Pieces)) + "pc"
		outcome := "cache_hit"
		if built {
			outcome = "built"
			s.obs.RecordGenerateDuration(ctx, time.Since(start), tier)
		}
		s.obs.RecordTemplateGenerated(ctx, tier, outcome)
	}

	s.recordSelection(req.ShapeIDs, tpl, built)

	status := http.StatusOK
	if built {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, &GenerateResponse{Template: tpl, Cached: !built})
}

// recordSelection performs the best-effort side writes after a
// successful generate. Popularity counts every request; the archive
// only needs fresh builds.
func (s *Server) recordSelection(shapeIDs []string, tpl *models.PuzzleTemplate, built bool) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if s.popularity != nil {
		if err := s.popularity.Record(ctx, shapeIDs); err != nil {
			s.logger.Warn("Popularity record failed", map[string]interface{}{
				"cacheKey": tpl.CacheKey,
				"error":    err.Error(),
			})
		}
	}

	if built && s.archive != nil {
		if err := s.archive.Save(ctx, tpl); err != nil {
			s.logger.Warn("Archive save failed", map[string]interface{}{
				"cacheKey": tpl.CacheKey,
				"error":    err.Error(),
			})
		}
	}
}

// handleTemplateItem routes the /api/v1/templates/ subtree: the stats
// and cache resources, or a template looked up by cache key.
func (s *Server) handleTemplateItem(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(w)
	suffix := strings.TrimPrefix(r.URL.Path, "/api/v1/templates/")

	switch suffix {
	case "stats":
		if r.Method != http.MethodGet {
			s.errors.WriteHTTP(w, r, requestID, errors.NewMethodNotAllowedError(r.Method))
			return
		}
		s.writeJSON(w, http.StatusOK, s.cache.Stats())

	case "cache":
		if r.Method != http.MethodDelete {
			s.errors.WriteHTTP(w, r, requestID, errors.NewMethodNotAllowedError(r.Method))
			return
		}
		removed := s.cache.Clear()
		s.writeJSON(w, http.StatusOK, &ClearResponse{Removed: removed})

	case "":
		s.errors.WriteHTTP(w, r, requestID, errors.NewBadRequestError("template cache key missing in path"))

	default:
		if r.Method != http.MethodGet {
			s.errors.WriteHTTP(w, r, requestID, errors.NewMethodNotAllowedError(r.Method))
			return
		}
		tpl, ok := s.cache.Lookup(suffix)
		if !ok {
			tpl, ok = s.restoreFromArchive(r.Context(), suffix)
		}
		if !ok {
			s.errors.WriteHTTP(w, r, requestID, errors.NewNotFoundError("Template", "cacheKey: "+suffix))
			return
		}
		s.writeJSON(w, http.StatusOK, tpl)
	}
}

// restoreFromArchive rebuilds an evicted or pre-restart template from
// its archived selection. Builds are deterministic, so the restored
// pieces match the originals byte for byte.
func (s *Server) restoreFromArchive(ctx context.Context, key string) (*models.PuzzleTemplate, bool) {
	if s.archive == nil {
		return nil, false
	}

	rec, err := s.archive.GetByKey(ctx, key)
	if err != nil {
		s.logger.Debug("Archive lookup missed", map[string]interface{}{
			"cacheKey": key,
			"error":    err.Error(),
		})
		return nil, false
	}

	tpl, _, err := s.cache.GetOrCreate(rec.ShapeIDs)
	if err != nil {
		s.logger.Warn("Archived selection no longer builds", map[string]interface{}{
			"cacheKey": key,
			"error":    err.Error(),
		})
		return nil, false
	}
	return tpl, true
}

// handleWarm serves POST /api/v1/admin/warm with an explicit batch of
// combinations to pregenerate.
func (s *Server) handleWarm(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(w)

	if r.Method != http.MethodPost {
		s.errors.WriteHTTP(w, r, requestID, errors.NewMethodNotAllowedError(r.Method))
		return
	}
	if s.warmer == nil {
		s.errors.WriteHTTP(w, r, requestID, errors.NewConfigInvalidError("warming is not wired on this server"))
		return
	}

	var req WarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errors.WriteHTTP(w, r, requestID, errors.NewBadRequestError(err.Error()))
		return
	}

	built, skipped := s.warmer.PregeneratePopular(r.Context(), req.Combinations, "api")
	s.writeJSON(w, http.StatusOK, &WarmResponse{Built: built, Skipped: skipped})
}

// handleListShapes serves GET /api/v1/shapes, optionally narrowed by
// ?category=.
func (s *Server) handleListShapes(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(w)

	if r.Method != http.MethodGet {
		s.errors.WriteHTTP(w, r, requestID, errors.NewMethodNotAllowedError(r.Method))
		return
	}

	shapes := s.registry.Shapes
	if category := r.URL.Query().Get("category"); category != "" {
		shapes = s.registry.FilterByCategory(category)
	}

	s.writeJSON(w, http.StatusOK, &ShapeListResponse{Shapes: shapes, Count: len(shapes)})
}

// handleSearchShapes serves GET /api/v1/shapes/search backed by the
// Elasticsearch catalog.
func (s *Server) handleSearchShapes(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(w)

	if r.Method != http.MethodGet {
		s.errors.WriteHTTP(w, r, requestID, errors.NewMethodNotAllowedError(r.Method))
		return
	}
	if s.search == nil {
		s.errors.WriteHTTP(w, r, requestID, errors.NewSearchUnavailableError())
		return
	}

	params := r.URL.Query()
	from, _ := strconv.Atoi(params.Get("from"))
	size, _ := strconv.Atoi(params.Get("size"))

	result, err := s.search.Search(r.Context(), search.Query{
		Keywords: params.Get("q"),
		Category: params.Get("category"),
		From:     from,
		Size:     size,
	})
	if err != nil {
		s.errors.WriteHTTP(w, r, requestID, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}
