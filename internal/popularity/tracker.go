// internal/popularity/tracker.go
package popularity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/errors"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/logger"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/puzzle/template"
)

const (
	// popularityKey is a sorted set scoring cache keys by request count.
	popularityKey = "puzzle:popularity"
	// combosKey maps cache keys back to their ordered shape selections.
	combosKey = "puzzle:combos"
)

// Tracker records which selections customers actually request so cache
// warming can replay the most popular ones after a restart.
type Tracker struct {
	redis  *redis.Client
	logger logger.Logger
}

func NewTracker(client *redis.Client, log logger.Logger) *Tracker {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Tracker{
		redis:  client,
		logger: log,
	}
}

// Ping reports whether the backing redis is reachable.
func (t *Tracker) Ping(ctx context.Context) error {
	if err := t.redis.Ping(ctx).Err(); err != nil {
		return errors.NewRedisConnectionFailedError(err)
	}
	return nil
}

// Record bumps the selection's popularity score and stores the
// combination payload for later replay.
func (t *Tracker) Record(ctx context.Context, shapeIDs []string) error {
	if len(shapeIDs) == 0 {
		return errors.NewPopularityTrackingFailedError("record", fmt.Errorf("empty selection"))
	}

	key := template.DeriveKey(shapeIDs)
	data, err := json.Marshal(shapeIDs)
	if err != nil {
		return errors.NewPopularityTrackingFailedError("record", err)
	}

	_, err = t.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZIncrBy(ctx, popularityKey, 1, key)
		pipe.HSet(ctx, combosKey, key, string(data))
		return nil
	})
	if err != nil {
		return errors.NewPopularityTrackingFailedError("record", err)
	}

	return nil
}

// Top returns up to n of the most requested selections, most popular
// first. Keys whose combination payload is missing or corrupt are
// logged and dropped from the result.
func (t *Tracker) Top(ctx context.Context, n int) ([][]string, error) {
	if n <= 0 {
		return nil, nil
	}

	keys, err := t.redis.ZRevRange(ctx, popularityKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, errors.NewPopularityTrackingFailedError("top", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := t.redis.HMGet(ctx, combosKey, keys...).Result()
	if err != nil {
		return nil, errors.NewPopularityTrackingFailedError("top", err)
	}

	combos := make([][]string, 0, len(keys))
	for i, value := range values {
		payload, ok := value.(string)
		if !ok || payload == "" {
			t.logger.Warn("combination payload missing for popular key", map[string]interface{}{
				"cacheKey": keys[i],
			})
			continue
		}

		var combo []string
		if err := json.Unmarshal([]byte(payload), &combo); err != nil {
			t.logger.Warn("corrupt combination payload", map[string]interface{}{
				"cacheKey": keys[i],
				"error":    err.Error(),
			})
			continue
		}
		combos = append(combos, combo)
	}

	return combos, nil
}
