// internal/puzzle/template/config.go
package template

import (
	"fmt"
	"sort"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/errors"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/models"
)

// Config holds the cache's tier table and entry bound. MaxEntries of
// zero keeps the cache unbounded.
type Config struct {
	Tiers      []models.TierSpec
	MaxEntries int
}

func (c Config) Validate() error {
	if len(c.Tiers) == 0 {
		return errors.NewConfigInvalidError("at least one tier is required")
	}

	seenNames := make(map[string]bool, len(c.Tiers))
	seenCounts := make(map[int]string, len(c.Tiers))
	for _, tier := range c.Tiers {
		if err := tier.Validate(); err != nil {
			return errors.NewConfigInvalidError(err.Error())
		}
		if seenNames[tier.Name] {
			return errors.NewConfigInvalidError(fmt.Sprintf("duplicate tier name: %s", tier.Name))
		}
		seenNames[tier.Name] = true
		if other, dup := seenCounts[tier.PieceCount]; dup {
			return errors.NewConfigInvalidError(fmt.Sprintf("tiers %s and %s share piece count %d", other, tier.Name, tier.PieceCount))
		}
		seenCounts[tier.PieceCount] = tier.Name
	}

	if c.MaxEntries < 0 {
		return errors.NewConfigInvalidError(fmt.Sprintf("max_entries must be >= 0, got %d", c.MaxEntries))
	}

	return nil
}

// resolveTier maps a selection length to its tier. Piece counts are
// pairwise distinct, so the length alone identifies the tier.
func (c Config) resolveTier(count int) (models.TierSpec, bool) {
	for _, tier := range c.Tiers {
		if tier.PieceCount == count {
			return tier, true
		}
	}
	return models.TierSpec{}, false
}

func (c Config) allowedSizes() []int {
	sizes := make([]int, len(c.Tiers))
	for i, tier := range c.Tiers {
		sizes[i] = tier.PieceCount
	}
	sort.Ints(sizes)
	return sizes
}
