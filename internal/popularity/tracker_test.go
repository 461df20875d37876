package popularity

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/errors"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/logger"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/puzzle/template"
)

// ==========================
// Test Helper Functions
// ==========================

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func createTracker(t *testing.T, client *redis.Client) *Tracker {
	return NewTracker(client, logger.NewTestLogger(t))
}

// ==========================
// Record / Top Tests
// ==========================

func TestTracker_RecordAndTop(t *testing.T) {
	client := setupRedis(t)
	tracker := createTracker(t, client)
	ctx := context.Background()

	favorite := []string{"heart", "rose", "sun", "moon", "star"}
	occasional := []string{"owl", "fox", "tree", "wave", "leaf-simple"}

	require.NoError(t, tracker.Record(ctx, favorite))
	require.NoError(t, tracker.Record(ctx, favorite))
	require.NoError(t, tracker.Record(ctx, occasional))

	top, err := tracker.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, favorite, top[0])
	assert.Equal(t, occasional, top[1])
}

func TestTracker_TopLimitsResults(t *testing.T) {
	client := setupRedis(t)
	tracker := createTracker(t, client)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		combo := []string{fmt.Sprintf("shape-%d", i), "rose", "sun", "moon", "star"}
		for j := 0; j <= i; j++ {
			require.NoError(t, tracker.Record(ctx, combo))
		}
	}

	top, err := tracker.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "shape-4", top[0][0])
	assert.Equal(t, "shape-3", top[1][0])
}

func TestTracker_TopEmpty(t *testing.T) {
	client := setupRedis(t)
	tracker := createTracker(t, client)

	top, err := tracker.Top(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestTracker_TopZeroLimit(t *testing.T) {
	client := setupRedis(t)
	tracker := createTracker(t, client)

	top, err := tracker.Top(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestTracker_TopSkipsMissingPayload(t *testing.T) {
	client := setupRedis(t)
	tracker := createTracker(t, client)
	ctx := context.Background()

	combo := []string{"heart", "rose", "sun", "moon", "star"}
	require.NoError(t, tracker.Record(ctx, combo))

	// A score without a stored combination payload cannot be replayed.
	require.NoError(t, client.ZIncrBy(ctx, popularityKey, 99, "feedbeeffeedbeef").Err())

	top, err := tracker.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, combo, top[0])
}

func TestTracker_TopSkipsCorruptPayload(t *testing.T) {
	client := setupRedis(t)
	tracker := createTracker(t, client)
	ctx := context.Background()

	combo := []string{"heart", "rose", "sun", "moon", "star"}
	require.NoError(t, tracker.Record(ctx, combo))

	corruptKey := "0123456789abcdef"
	require.NoError(t, client.ZIncrBy(ctx, popularityKey, 99, corruptKey).Err())
	require.NoError(t, client.HSet(ctx, combosKey, corruptKey, "{not json").Err())

	top, err := tracker.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, combo, top[0])
}

func TestTracker_RecordEmptySelection(t *testing.T) {
	client := setupRedis(t)
	tracker := createTracker(t, client)

	err := tracker.Record(context.Background(), nil)
	require.Error(t, err)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodePopularityTrackingFailed, stdErr.Code)
}

// ==========================
// Command-Level Tests
// ==========================

func TestTracker_RecordCommands(t *testing.T) {
	client, mock := redismock.NewClientMock()
	tracker := createTracker(t, client)

	combo := []string{"heart", "rose", "sun", "moon", "star"}
	key := template.DeriveKey(combo)
	payload, err := json.Marshal(combo)
	require.NoError(t, err)

	mock.ExpectZIncrBy(popularityKey, 1, key).SetVal(1)
	mock.ExpectHSet(combosKey, key, string(payload)).SetVal(1)

	require.NoError(t, tracker.Record(context.Background(), combo))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTracker_RecordFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	tracker := createTracker(t, client)

	combo := []string{"heart", "rose", "sun", "moon", "star"}
	key := template.DeriveKey(combo)

	mock.ExpectZIncrBy(popularityKey, 1, key).SetErr(fmt.Errorf("connection refused"))

	err := tracker.Record(context.Background(), combo)
	require.Error(t, err)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodePopularityTrackingFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestTracker_TopFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	tracker := createTracker(t, client)

	mock.ExpectZRevRange(popularityKey, 0, 9).SetErr(fmt.Errorf("connection refused"))

	_, err := tracker.Top(context.Background(), 10)
	require.Error(t, err)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodePopularityTrackingFailed, stdErr.Code)
}
