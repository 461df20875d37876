// internal/puzzle/layout/config.go
package layout

import (
	"fmt"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/errors"
)

// Geometry holds the constants that shape a piece outline. TabSize and
// NeckWidth are fractions of CellSize; CornerRadius is absolute.
type Geometry struct {
	CellSize     float64 `mapstructure:"cell_size"`
	TabSize      float64 `mapstructure:"tab_size"`
	NeckWidth    float64 `mapstructure:"neck_width"`
	CornerRadius float64 `mapstructure:"corner_radius"`
}

func DefaultGeometry() Geometry {
	return Geometry{
		CellSize:     100,
		TabSize:      0.2,
		NeckWidth:    0.1,
		CornerRadius: 8,
	}
}

func (g Geometry) Validate() error {
	if g.CellSize <= 0 {
		return errors.NewInvalidGeometryError(fmt.Sprintf("cell_size must be positive, got %v", g.CellSize))
	}
	if g.TabSize <= 0 || g.TabSize > 0.4 {
		return errors.NewInvalidGeometryError(fmt.Sprintf("tab_size must be in (0, 0.4], got %v", g.TabSize))
	}
	if g.NeckWidth <= 0 || g.NeckWidth > 0.5 {
		return errors.NewInvalidGeometryError(fmt.Sprintf("neck_width must be in (0, 0.5], got %v", g.NeckWidth))
	}
	if g.CornerRadius < 0 || g.CornerRadius > g.CellSize/4 {
		return errors.NewInvalidGeometryError(fmt.Sprintf("corner_radius must be in [0, cell_size/4], got %v", g.CornerRadius))
	}
	return nil
}
