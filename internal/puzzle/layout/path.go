// internal/puzzle/layout/path.go
package layout

import (
	"fmt"
	"strings"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/models"
)

// kappa approximates a quarter circle with a single cubic segment.
const kappa = 0.5523

type xy struct {
	x, y float64
}

// edgeFrame maps edge-local coordinates (u along the edge, v outward)
// into piece-local coordinates for one side of the cell.
type edgeFrame struct {
	start xy
	tan   xy
	norm  xy
}

func (f edgeFrame) point(u, v float64) xy {
	return xy{
		x: f.start.x + u*f.tan.x + v*f.norm.x,
		y: f.start.y + u*f.tan.y + v*f.norm.y,
	}
}

// OutlinePath traces the closed piece boundary clockwise from the
// top-left corner. Tabs bulge outward, blanks notch inward, flat edges
// stay straight. Corners between two flat edges are rounded with a
// quadratic segment when the geometry has a corner radius. Coordinates
// are formatted with two decimals so equal inputs always produce
// byte-identical strings.
func (e *Engine) OutlinePath(edges models.PieceEdges) string {
	s := e.geometry.CellSize
	r := e.geometry.CornerRadius

	types := [4]models.EdgeType{edges.Top, edges.Right, edges.Bottom, edges.Left}
	frames := [4]edgeFrame{
		{start: xy{0, 0}, tan: xy{1, 0}, norm: xy{0, -1}},
		{start: xy{s, 0}, tan: xy{0, 1}, norm: xy{1, 0}},
		{start: xy{s, s}, tan: xy{-1, 0}, norm: xy{0, 1}},
		{start: xy{0, s}, tan: xy{0, -1}, norm: xy{-1, 0}},
	}

	// rounded[i] marks the corner at the start of edge i.
	var rounded [4]bool
	for i := 0; i < 4; i++ {
		prev := (i + 3) % 4
		rounded[i] = r > 0 && types[i] == models.EdgeFlat && types[prev] == models.EdgeFlat
	}

	var b strings.Builder
	start := frames[0].point(0, 0)
	if rounded[0] {
		start = frames[0].point(r, 0)
	}
	fmt.Fprintf(&b, "M %.2f %.2f", start.x, start.y)

	for i := 0; i < 4; i++ {
		f := frames[i]
		next := (i + 1) % 4

		switch types[i] {
		case models.EdgeFlat:
			end := f.point(s, 0)
			if rounded[next] {
				end = f.point(s-r, 0)
			}
			fmt.Fprintf(&b, " L %.2f %.2f", end.x, end.y)
		default:
			e.writeInterlock(&b, f, types[i])
		}

		if rounded[next] {
			corner := f.point(s, 0)
			landing := frames[next].point(r, 0)
			fmt.Fprintf(&b, " Q %.2f %.2f %.2f %.2f", corner.x, corner.y, landing.x, landing.y)
		}
	}

	b.WriteString(" Z")
	return b.String()
}

// writeInterlock emits one interlocking edge as two straight leads and
// four cubic segments forming a round-capped bump with a narrowed neck.
// The profile is symmetric about the edge midpoint, so the two pieces
// sharing the edge trace the same curve from opposite directions.
func (e *Engine) writeInterlock(b *strings.Builder, f edgeFrame, t models.EdgeType) {
	s := e.geometry.CellSize
	mid := s / 2
	neck := e.geometry.NeckWidth * s
	bulb := e.geometry.TabSize * s
	depth := e.geometry.TabSize * s
	shoulder := 0.6 * depth
	cap := depth - shoulder

	sign := 1.0
	if t == models.EdgeBlank {
		sign = -1
	}

	pt := func(u, v float64) xy {
		return f.point(u, sign*v)
	}
	line := func(p xy) {
		fmt.Fprintf(b, " L %.2f %.2f", p.x, p.y)
	}
	cubic := func(c1, c2, p xy) {
		fmt.Fprintf(b, " C %.2f %.2f %.2f %.2f %.2f %.2f", c1.x, c1.y, c2.x, c2.y, p.x, p.y)
	}

	line(pt(mid-neck, 0))
	cubic(pt(mid-neck, 0.4*depth), pt(mid-bulb, 0.15*depth), pt(mid-bulb, shoulder))
	cubic(pt(mid-bulb, shoulder+kappa*cap), pt(mid-kappa*bulb, depth), pt(mid, depth))
	cubic(pt(mid+kappa*bulb, depth), pt(mid+bulb, shoulder+kappa*cap), pt(mid+bulb, shoulder))
	cubic(pt(mid+bulb, 0.15*depth), pt(mid+neck, 0.4*depth), pt(mid+neck, 0))
	line(pt(s, 0))
}
