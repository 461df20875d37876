package template

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/errors"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/logger"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/models"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/puzzle/layout"
)

func createTestConfig() Config {
	return Config{
		Tiers: []models.TierSpec{
			{Name: "mini", PieceCount: 5, Rows: 1, Cols: 5},
			{Name: "duo", PieceCount: 7, Rows: 1, Cols: 7},
			{Name: "classic", PieceCount: 10, Rows: 2, Cols: 5},
			{Name: "grande", PieceCount: 15, Rows: 3, Cols: 5},
		},
	}
}

func newTestCache(t testing.TB, config Config) *Cache {
	t.Helper()
	engine, err := layout.NewEngine(layout.DefaultGeometry())
	require.NoError(t, err)
	cache, err := NewCache(config, engine, logger.NewTestLogger(t))
	require.NoError(t, err)
	return cache
}

func classicSelection() []string {
	return []string{"heart", "rose", "sun", "moon", "star", "leaf-simple", "owl", "fox", "tree", "wave"}
}

// ==========================
// Key Derivation Tests
// ==========================

func TestDeriveKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		ids := classicSelection()
		assert.Equal(t, DeriveKey(ids), DeriveKey(ids))
		assert.Len(t, DeriveKey(ids), 16)
	})

	t.Run("order sensitive", func(t *testing.T) {
		assert.NotEqual(t, DeriveKey([]string{"a", "b", "c"}), DeriveKey([]string{"c", "b", "a"}))
	})

	t.Run("length prefixed", func(t *testing.T) {
		assert.NotEqual(t, DeriveKey([]string{"ab", "c"}), DeriveKey([]string{"a", "bc"}))
	})

	t.Run("distinct counts", func(t *testing.T) {
		assert.NotEqual(t, DeriveKey([]string{"heart"}), DeriveKey([]string{"heart", "heart"}))
	})
}

// ==========================
// GetOrCreate Tests
// ==========================

func TestCache_GetOrCreate_MissThenHit(t *testing.T) {
	cache := newTestCache(t, createTestConfig())
	ids := classicSelection()

	first, built, err := cache.GetOrCreate(ids)
	require.NoError(t, err)
	assert.True(t, built)
	require.NotNil(t, first)
	assert.Equal(t, DeriveKey(ids), first.CacheKey)
	assert.Equal(t, 2, first.Rows)
	assert.Equal(t, 5, first.Cols)
	assert.Len(t, first.Pieces, 10)

	second, built, err := cache.GetOrCreate(ids)
	require.NoError(t, err)
	assert.False(t, built)
	assert.Equal(t, first.CacheKey, second.CacheKey)
	assert.Equal(t, first.Pieces, second.Pieces)

	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.EntryCount)
}

func TestCache_GetOrCreate_AssignsShapesInOrder(t *testing.T) {
	cache := newTestCache(t, createTestConfig())
	ids := classicSelection()

	tpl, _, err := cache.GetOrCreate(ids)
	require.NoError(t, err)

	assert.Equal(t, ids, tpl.ShapeIDs())
	for i, piece := range tpl.Pieces {
		assert.Equal(t, ids[i], piece.AssignedShape)
		assert.NotEmpty(t, piece.OutlinePath)
	}
}

func TestCache_GetOrCreate_OrderSensitivity(t *testing.T) {
	cache := newTestCache(t, createTestConfig())

	forward := classicSelection()
	reversed := make([]string, len(forward))
	for i, id := range forward {
		reversed[len(forward)-1-i] = id
	}

	first, _, err := cache.GetOrCreate(forward)
	require.NoError(t, err)
	second, built, err := cache.GetOrCreate(reversed)
	require.NoError(t, err)

	assert.True(t, built)
	assert.NotEqual(t, first.CacheKey, second.CacheKey)
	assert.Equal(t, forward, first.ShapeIDs())
	assert.Equal(t, reversed, second.ShapeIDs())
	assert.Equal(t, 2, cache.Stats().EntryCount)
}

func TestCache_GetOrCreate_TierResolution(t *testing.T) {
	tests := []struct {
		name       string
		pieceCount int
		rows, cols int
	}{
		{"mini", 5, 1, 5},
		{"duo", 7, 1, 7},
		{"classic", 10, 2, 5},
		{"grande", 15, 3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newTestCache(t, createTestConfig())

			ids := make([]string, tt.pieceCount)
			for i := range ids {
				ids[i] = fmt.Sprintf("shape-%d", i)
			}

			tpl, built, err := cache.GetOrCreate(ids)
			require.NoError(t, err)
			assert.True(t, built)
			assert.Equal(t, tt.rows, tpl.Rows)
			assert.Equal(t, tt.cols, tpl.Cols)
			assert.Len(t, tpl.Pieces, tt.pieceCount)
		})
	}
}

func TestCache_GetOrCreate_InvalidSelection(t *testing.T) {
	cache := newTestCache(t, createTestConfig())

	tests := []struct {
		name string
		ids  []string
	}{
		{"empty selection", []string{}},
		{"nil selection", nil},
		{"below smallest tier", []string{"heart", "rose"}},
		{"between tiers", []string{"heart", "rose", "sun", "moon", "star", "leaf-simple", "owl", "fox"}},
		{"above largest tier", make([]string, 16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, built, err := cache.GetOrCreate(tt.ids)
			require.Error(t, err)
			assert.False(t, built)

			var stdErr *errors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, errors.ErrCodeInvalidSelection, stdErr.Code)
		})
	}

	assert.Equal(t, 0, cache.Stats().EntryCount)
}

func TestCache_GetOrCreate_MalformedShapeID(t *testing.T) {
	cache := newTestCache(t, createTestConfig())

	ids := []string{"heart", "rose", "sun", "moon", "Star!"}
	_, _, err := cache.GetOrCreate(ids)
	require.Error(t, err)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeInvalidShapeID, stdErr.Code)
	assert.Contains(t, stdErr.Details, "Star!")
}

func TestCache_GetOrCreate_DuplicateShapesAllowed(t *testing.T) {
	cache := newTestCache(t, createTestConfig())

	tpl, built, err := cache.GetOrCreate([]string{"heart", "heart", "heart", "heart", "heart"})
	require.NoError(t, err)
	assert.True(t, built)
	assert.Len(t, tpl.Pieces, 5)
}

func TestCache_GetOrCreate_Concurrent(t *testing.T) {
	cache := newTestCache(t, createTestConfig())
	ids := classicSelection()

	const callers = 20
	keys := make(chan string, callers)
	builds := make(chan bool, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tpl, built, err := cache.GetOrCreate(ids)
			assert.NoError(t, err)
			keys <- tpl.CacheKey
			builds <- built
		}()
	}
	wg.Wait()
	close(keys)
	close(builds)

	expectedKey := DeriveKey(ids)
	for key := range keys {
		assert.Equal(t, expectedKey, key)
	}

	buildCount := 0
	for built := range builds {
		if built {
			buildCount++
		}
	}
	assert.Equal(t, 1, buildCount)

	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(callers-1), stats.Hits)
	assert.Equal(t, 1, stats.EntryCount)
}

// ==========================
// Lookup / Stats / Clear Tests
// ==========================

func TestCache_Lookup(t *testing.T) {
	cache := newTestCache(t, createTestConfig())
	ids := classicSelection()

	tpl, _, err := cache.GetOrCreate(ids)
	require.NoError(t, err)

	found, ok := cache.Lookup(tpl.CacheKey)
	require.True(t, ok)
	assert.Equal(t, tpl.CacheKey, found.CacheKey)

	_, ok = cache.Lookup("0000000000000000")
	assert.False(t, ok)

	// Diagnostic reads leave the hit/miss counters alone.
	stats := cache.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestCache_Clear(t *testing.T) {
	cache := newTestCache(t, createTestConfig())

	_, _, err := cache.GetOrCreate(classicSelection())
	require.NoError(t, err)
	_, _, err = cache.GetOrCreate([]string{"heart", "rose", "sun", "moon", "star"})
	require.NoError(t, err)

	removed := cache.Clear()
	assert.Equal(t, 2, removed)

	stats := cache.Stats()
	assert.Equal(t, 0, stats.EntryCount)
	assert.Equal(t, uint64(2), stats.Misses)

	_, built, err := cache.GetOrCreate(classicSelection())
	require.NoError(t, err)
	assert.True(t, built)

	assert.Equal(t, 0, cache.Clear())
}

func TestCache_Eviction(t *testing.T) {
	config := createTestConfig()
	config.MaxEntries = 2
	cache := newTestCache(t, config)

	selections := [][]string{
		{"heart", "rose", "sun", "moon", "star"},
		{"owl", "fox", "tree", "wave", "leaf-simple"},
		{"sun", "moon", "star", "heart", "rose"},
	}

	var keys []string
	for _, ids := range selections {
		tpl, built, err := cache.GetOrCreate(ids)
		require.NoError(t, err)
		assert.True(t, built)
		keys = append(keys, tpl.CacheKey)
	}

	assert.Equal(t, 2, cache.Stats().EntryCount)

	_, ok := cache.Lookup(keys[0])
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = cache.Lookup(keys[1])
	assert.True(t, ok)
	_, ok = cache.Lookup(keys[2])
	assert.True(t, ok)
}

func TestCache_UnboundedByDefault(t *testing.T) {
	cache := newTestCache(t, createTestConfig())

	for i := 0; i < 50; i++ {
		ids := []string{fmt.Sprintf("shape-%d", i), "rose", "sun", "moon", "star"}
		_, built, err := cache.GetOrCreate(ids)
		require.NoError(t, err)
		assert.True(t, built)
	}

	assert.Equal(t, 50, cache.Stats().EntryCount)
}

// ==========================
// Construction Tests
// ==========================

func TestNewCache_Validation(t *testing.T) {
	engine, err := layout.NewEngine(layout.DefaultGeometry())
	require.NoError(t, err)

	tests := []struct {
		name   string
		config Config
		engine *layout.Engine
	}{
		{"no tiers", Config{}, engine},
		{
			"duplicate piece counts",
			Config{Tiers: []models.TierSpec{
				{Name: "a", PieceCount: 10, Rows: 2, Cols: 5},
				{Name: "b", PieceCount: 10, Rows: 5, Cols: 2},
			}},
			engine,
		},
		{
			"duplicate tier names",
			Config{Tiers: []models.TierSpec{
				{Name: "a", PieceCount: 10, Rows: 2, Cols: 5},
				{Name: "a", PieceCount: 15, Rows: 3, Cols: 5},
			}},
			engine,
		},
		{
			"piece count mismatch",
			Config{Tiers: []models.TierSpec{
				{Name: "a", PieceCount: 9, Rows: 2, Cols: 5},
			}},
			engine,
		},
		{
			"negative max entries",
			Config{
				Tiers:      createTestConfig().Tiers,
				MaxEntries: -1,
			},
			engine,
		},
		{"nil engine", createTestConfig(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCache(tt.config, tt.engine, logger.NewTestLogger(t))
			require.Error(t, err)

			var stdErr *errors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, errors.ErrCodeConfigInvalid, stdErr.Code)
		})
	}
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkCache_GetOrCreate_Hit(b *testing.B) {
	cache := newTestCache(b, createTestConfig())
	ids := classicSelection()
	if _, _, err := cache.GetOrCreate(ids); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := cache.GetOrCreate(ids); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDeriveKey(b *testing.B) {
	ids := classicSelection()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DeriveKey(ids)
	}
}
