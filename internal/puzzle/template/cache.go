// internal/puzzle/template/cache.go
package template

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/errors"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/logger"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/metrics"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/validation"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/models"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/puzzle/layout"
)

// Cache maps ordered shape selections to built puzzle templates. It is
// the only mutable shared state in the generation core; every access
// goes through one mutex, held across the check-then-insert sequence
// so each distinct key is built at most once per process. Builds are
// pure CPU path math, so nothing slow runs inside the critical
// section.
type Cache struct {
	config Config
	engine *layout.Engine
	logger logger.Logger

	mu      sync.Mutex
	entries map[string]*models.PuzzleTemplate
	order   []string
	hits    uint64
	misses  uint64
}

func NewCache(config Config, engine *layout.Engine, log logger.Logger) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if engine == nil {
		return nil, errors.NewConfigInvalidError("layout engine is required")
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Cache{
		config:  config,
		engine:  engine,
		logger:  log,
		entries: make(map[string]*models.PuzzleTemplate),
	}, nil
}

// DeriveKey computes the deterministic cache key for an ordered shape
// selection. Ids are length-prefixed before hashing so adjacent ids
// cannot collide by concatenation, and the key is order-sensitive
// because slot assignment follows selection order.
func DeriveKey(shapeIDs []string) string {
	h := fnv.New64a()
	var b [8]byte

	binary.BigEndian.PutUint64(b[:], uint64(len(shapeIDs)))
	h.Write(b[:])
	for _, id := range shapeIDs {
		binary.BigEndian.PutUint64(b[:], uint64(len(id)))
		h.Write(b[:])
		h.Write([]byte(id))
	}

	return fmt.Sprintf("%016x", h.Sum64())
}

// GetOrCreate returns the cached template for the selection, building
// and storing it first when absent. The second return reports whether
// this call performed the build. Callers must treat the returned
// template as read-only; it is shared across all callers of the same
// key.
func (c *Cache) GetOrCreate(shapeIDs []string) (*models.PuzzleTemplate, bool, error) {
	tier, ok := c.config.resolveTier(len(shapeIDs))
	if !ok {
		return nil, false, errors.NewInvalidSelectionError(len(shapeIDs), c.config.allowedSizes())
	}

	for _, id := range shapeIDs {
		if err := validation.ValidateShapeID(id); err != nil {
			return nil, false, errors.NewInvalidShapeIDError(id)
		}
	}

	key := DeriveKey(shapeIDs)

	c.mu.Lock()
	defer c.mu.Unlock()

	if tpl, found := c.entries[key]; found {
		c.hits++
		metrics.TemplateCacheHits.Inc()
		return tpl, false, nil
	}

	start := time.Now()
	pieces, err := c.engine.BuildGrid(tier.Rows, tier.Cols)
	if err != nil {
		return nil, false, errors.NewTemplateBuildFailedError(
			fmt.Sprintf("tier %s grid %dx%d: %v", tier.Name, tier.Rows, tier.Cols, err))
	}
	for i := range pieces {
		pieces[i].AssignedShape = shapeIDs[i]
	}

	tpl := &models.PuzzleTemplate{
		ID:        uuid.New().String(),
		CacheKey:  key,
		Rows:      tier.Rows,
		Cols:      tier.Cols,
		Pieces:    pieces,
		CreatedAt: time.Now().UTC(),
	}

	c.entries[key] = tpl
	c.order = append(c.order, key)
	c.misses++

	metrics.TemplateCacheMisses.Inc()
	metrics.TemplateBuildDuration.WithLabelValues(tier.Name).Observe(time.Since(start).Seconds())

	c.evictLocked()
	metrics.TemplateCacheEntries.Set(float64(len(c.entries)))

	c.logger.Debug("template built", map[string]interface{}{
		"cacheKey": key,
		"tier":     tier.Name,
		"pieces":   len(pieces),
	})

	return tpl, true, nil
}

// evictLocked drops the oldest entries until the configured bound
// holds. Caller must hold c.mu.
func (c *Cache) evictLocked() {
	if c.config.MaxEntries <= 0 {
		return
	}
	for len(c.entries) > c.config.MaxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		metrics.TemplateCacheEvictions.Inc()
		c.logger.Warn("template evicted", map[string]interface{}{
			"cacheKey":   oldest,
			"maxEntries": c.config.MaxEntries,
		})
	}
}

// Lookup returns the cached template for a key without counting a hit
// or miss; it serves diagnostic reads, not generation requests.
func (c *Cache) Lookup(key string) (*models.PuzzleTemplate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tpl, found := c.entries[key]
	return tpl, found
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() models.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CacheStats{
		Hits:       c.hits,
		Misses:     c.misses,
		EntryCount: len(c.entries),
	}
}

// Clear removes every entry and returns how many were dropped. The
// cumulative hit and miss counters survive the clear.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	c.entries = make(map[string]*models.PuzzleTemplate)
	c.order = c.order[:0]
	metrics.TemplateCacheEntries.Set(0)

	c.logger.Info("template cache cleared", map[string]interface{}{
		"removed": removed,
	})
	return removed
}
