// internal/puzzle/template/warmer.go
package template

import (
	"context"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/logger"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/metrics"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/pkg/registry"
)

// Warmer pregenerates templates for known combinations ahead of user
// traffic. When a registry is attached, combinations referencing
// unregistered shapes are skipped instead of cached.
type Warmer struct {
	cache    *Cache
	registry *registry.ShapeRegistry
	logger   logger.Logger
}

func NewWarmer(cache *Cache, reg *registry.ShapeRegistry, log logger.Logger) *Warmer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Warmer{
		cache:    cache,
		registry: reg,
		logger:   log,
	}
}

// PregeneratePopular warms the cache with the given combinations.
// Failures on individual combinations are logged and skipped, never
// fatal to the batch. Returns how many templates were actually built
// and how many combinations were skipped; combinations already cached
// count toward neither.
func (w *Warmer) PregeneratePopular(ctx context.Context, combinations [][]string, source string) (built, skipped int) {
	for _, combo := range combinations {
		if ctx.Err() != nil {
			w.logger.Warn("cache warming interrupted", map[string]interface{}{
				"source": source,
				"built":  built,
			})
			return built, skipped
		}

		if unknown, has := w.unregisteredShape(combo); has {
			w.logger.Warn("skipping combination with unregistered shape", map[string]interface{}{
				"source":  source,
				"shapeId": unknown,
			})
			skipped++
			continue
		}

		tpl, wasBuilt, err := w.cache.GetOrCreate(combo)
		if err != nil {
			w.logger.Warn("skipping combination", map[string]interface{}{
				"source": source,
				"shapes": len(combo),
				"error":  err.Error(),
			})
			skipped++
			continue
		}

		if wasBuilt {
			built++
			metrics.TemplatesWarmed.WithLabelValues(source).Inc()
			w.logger.Debug("combination warmed", map[string]interface{}{
				"source":   source,
				"cacheKey": tpl.CacheKey,
			})
		}
	}

	return built, skipped
}

func (w *Warmer) unregisteredShape(combo []string) (string, bool) {
	if w.registry == nil {
		return "", false
	}
	for _, id := range combo {
		if !w.registry.Has(id) {
			return id, true
		}
	}
	return "", false
}
