// internal/puzzle/layout/layout.go
package layout

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/errors"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/models"
)

// Shared-edge orientations. A vertical edge sits between (row,col) and
// (row,col+1) and is owned by the left piece; a horizontal edge sits
// between (row,col) and (row+1,col) and is owned by the top piece.
const (
	sharedEdgeVertical   byte = 'v'
	sharedEdgeHorizontal byte = 'h'
)

// Engine produces interlocking piece grids for one geometry.
type Engine struct {
	geometry Geometry
}

func NewEngine(geometry Geometry) (*Engine, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	return &Engine{geometry: geometry}, nil
}

func (e *Engine) Geometry() Geometry {
	return e.geometry
}

// edgeDecision picks tab or blank for a shared edge, identified by the
// owning piece's coordinate and the edge orientation. The choice is a
// pure function of the grid dimensions and edge position, so both
// pieces bordering the edge derive the same decision independently.
func edgeDecision(rows, cols, row, col int, orientation byte) models.EdgeType {
	h := fnv.New64a()
	var b [8]byte
	for _, v := range [4]int{rows, cols, row, col} {
		binary.BigEndian.PutUint64(b[:], uint64(v))
		h.Write(b[:])
	}
	h.Write([]byte{orientation})

	if h.Sum64()&1 == 0 {
		return models.EdgeTab
	}
	return models.EdgeBlank
}

// ComputeEdges returns the edge configuration for one cell. Boundary
// sides are flat; interior sides come from the owning piece's decision,
// complemented when this piece is the non-owning neighbor.
func ComputeEdges(rows, cols, row, col int) (models.PieceEdges, error) {
	if rows < 1 || cols < 1 {
		return models.PieceEdges{}, errors.NewInvalidGridError(rows, cols)
	}
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return models.PieceEdges{}, errors.NewInvalidCoordinateError(rows, cols, row, col)
	}

	edges := models.PieceEdges{
		Top:    models.EdgeFlat,
		Right:  models.EdgeFlat,
		Bottom: models.EdgeFlat,
		Left:   models.EdgeFlat,
	}

	if col < cols-1 {
		edges.Right = edgeDecision(rows, cols, row, col, sharedEdgeVertical)
	}
	if col > 0 {
		edges.Left = edgeDecision(rows, cols, row, col-1, sharedEdgeVertical).Complement()
	}
	if row < rows-1 {
		edges.Bottom = edgeDecision(rows, cols, row, col, sharedEdgeHorizontal)
	}
	if row > 0 {
		edges.Top = edgeDecision(rows, cols, row-1, col, sharedEdgeHorizontal).Complement()
	}

	return edges, nil
}

// BuildGrid computes edges and outline paths for every cell in
// row-major order. AssignedShape is left empty for the coordinator to
// fill in.
func (e *Engine) BuildGrid(rows, cols int) ([]models.PuzzlePiece, error) {
	if rows < 1 || cols < 1 {
		return nil, errors.NewInvalidGridError(rows, cols)
	}

	pieces := make([]models.PuzzlePiece, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			edges, err := ComputeEdges(rows, cols, row, col)
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, models.PuzzlePiece{
				GridRow:     row,
				GridCol:     col,
				Edges:       edges,
				OutlinePath: e.OutlinePath(edges),
			})
		}
	}

	return pieces, nil
}
