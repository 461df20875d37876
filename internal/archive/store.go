// internal/archive/store.go
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	commonerrors "github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/errors"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/logger"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/models"
)

// Record is one archived template selection. The archive keeps the
// selection and grid shape, not the piece geometry; templates are
// rebuilt deterministically from the selection on restore.
type Record struct {
	CacheKey   string    `json:"cacheKey"`
	TemplateID string    `json:"templateId"`
	Rows       int       `json:"rows"`
	Cols       int       `json:"cols"`
	ShapeIDs   []string  `json:"shapeIds"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store persists built selections to PostgreSQL so warming survives
// process restarts independent of the popularity tracker.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{
		db:     db,
		logger: log,
	}
}

// Ping reports whether the backing database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return commonerrors.NewPostgresConnectionFailedError(err)
	}
	return nil
}

// EnsureSchema creates the archive table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS puzzle_templates (
		cache_key   TEXT PRIMARY KEY,
		template_id TEXT NOT NULL,
		grid_rows   INTEGER NOT NULL,
		grid_cols   INTEGER NOT NULL,
		shape_ids   TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	)`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return commonerrors.NewArchiveWriteFailedError(err)
	}

	s.logger.Debug("archive schema ready", nil)
	return nil
}

// Save archives a built template's selection. Saving the same cache
// key twice is a no-op; archived selections are immutable.
func (s *Store) Save(ctx context.Context, tpl *models.PuzzleTemplate) error {
	shapeIDs, err := json.Marshal(tpl.ShapeIDs())
	if err != nil {
		return commonerrors.NewArchiveWriteFailedError(err)
	}

	query := `INSERT INTO puzzle_templates (cache_key, template_id, grid_rows, grid_cols, shape_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cache_key) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query,
		tpl.CacheKey, tpl.ID, tpl.Rows, tpl.Cols, string(shapeIDs), tpl.CreatedAt,
	); err != nil {
		return commonerrors.NewArchiveWriteFailedError(err)
	}

	return nil
}

// GetByKey returns the archived record for a cache key.
func (s *Store) GetByKey(ctx context.Context, key string) (*Record, error) {
	query := `SELECT cache_key, template_id, grid_rows, grid_cols, shape_ids, created_at
		FROM puzzle_templates WHERE cache_key = $1`

	var rec Record
	var shapeIDs string
	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&rec.CacheKey, &rec.TemplateID, &rec.Rows, &rec.Cols, &shapeIDs, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commonerrors.NewNotFoundError("archived template", key)
		}
		return nil, commonerrors.NewArchiveReadFailedError(err)
	}

	if err := json.Unmarshal([]byte(shapeIDs), &rec.ShapeIDs); err != nil {
		return nil, commonerrors.NewArchiveReadFailedError(err)
	}

	return &rec, nil
}

// ListRecentSelections returns the most recently archived selections,
// newest first, for warm-on-start replay.
func (s *Store) ListRecentSelections(ctx context.Context, limit int) ([][]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT shape_ids FROM puzzle_templates ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, commonerrors.NewArchiveReadFailedError(err)
	}
	defer rows.Close()

	var selections [][]string
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, commonerrors.NewArchiveReadFailedError(err)
		}

		var combo []string
		if err := json.Unmarshal([]byte(payload), &combo); err != nil {
			s.logger.Warn("corrupt archived selection", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		selections = append(selections, combo)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewArchiveReadFailedError(err)
	}

	return selections, nil
}
