// internal/models/puzzle.go
package models

// EdgeType classifies one side of a puzzle piece.
type EdgeType string

const (
	EdgeFlat  EdgeType = "flat"
	EdgeTab   EdgeType = "tab"
	EdgeBlank EdgeType = "blank"
)

// Complement returns the edge type that interlocks with e. Flat has no
// partner and maps to itself.
func (e EdgeType) Complement() EdgeType {
	switch e {
	case EdgeTab:
		return EdgeBlank
	case EdgeBlank:
		return EdgeTab
	default:
		return EdgeFlat
	}
}

func (e EdgeType) IsValid() bool {
	return e == EdgeFlat || e == EdgeTab || e == EdgeBlank
}

// PieceEdges holds the edge type for each side of one grid cell.
type PieceEdges struct {
	Top    EdgeType `json:"top"`
	Right  EdgeType `json:"right"`
	Bottom EdgeType `json:"bottom"`
	Left   EdgeType `json:"left"`
}

// PuzzlePiece is one cell of a generated template. AssignedShape stays
// empty until the coordinator maps a selection onto the grid. The
// outline path is in piece-local coordinates with the origin at the
// cell's top-left corner; tab bumps extend outside the cell bounds.
type PuzzlePiece struct {
	GridRow       int        `json:"gridRow"`
	GridCol       int        `json:"gridCol"`
	Edges         PieceEdges `json:"edges"`
	AssignedShape string     `json:"assignedShape,omitempty"`
	OutlinePath   string     `json:"outlinePath"`
}
