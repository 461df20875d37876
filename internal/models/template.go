// internal/models/template.go
package models

import "time"

// PuzzleTemplate is the complete geometric description of one puzzle
// for a given ordered shape selection: the piece grid, the interlock
// edges, and the shape assigned to each slot. Templates are immutable
// once built. ID and CreatedAt are bookkeeping; the deterministic
// content covered by caching is Rows, Cols, Pieces.
type PuzzleTemplate struct {
	ID        string        `json:"id"`
	CacheKey  string        `json:"cacheKey"`
	Rows      int           `json:"rows"`
	Cols      int           `json:"cols"`
	Pieces    []PuzzlePiece `json:"pieces"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ShapeIDs returns the assigned shape ids in piece (row-major) order.
func (t *PuzzleTemplate) ShapeIDs() []string {
	ids := make([]string, len(t.Pieces))
	for i, p := range t.Pieces {
		ids[i] = p.AssignedShape
	}
	return ids
}

// PieceAt returns the piece at the given grid cell, or nil when the
// coordinate is outside the template.
func (t *PuzzleTemplate) PieceAt(row, col int) *PuzzlePiece {
	if row < 0 || row >= t.Rows || col < 0 || col >= t.Cols {
		return nil
	}
	return &t.Pieces[row*t.Cols+col]
}

// CacheStats is a point-in-time snapshot of the template cache
// counters.
type CacheStats struct {
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	EntryCount int    `json:"entryCount"`
}
