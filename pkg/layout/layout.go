// Package layout places diagram entities on a fixed-size canvas.
package layout

import (
	"math"

	"github.com/aretw0/seqflow/pkg/domain"
)

// Grid describes the cell grid AutoLayout uses for n entities.
type Grid struct {
	Cols       int
	Rows       int
	CellWidth  float64
	CellHeight float64
}

// GridFor returns the square-ish grid for n entities on a w x h canvas.
func GridFor(n int, w, h float64) Grid {
	if n <= 0 {
		return Grid{}
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := int(math.Ceil(float64(n) / float64(cols)))
	return Grid{
		Cols:       cols,
		Rows:       rows,
		CellWidth:  w / float64(cols),
		CellHeight: h / float64(rows),
	}
}

// AutoLayout assigns every entity a grid cell in insertion order, centers its
// box in the cell and clamps it inside the canvas. The slice is mutated in
// place and returned.
func AutoLayout(entities []*domain.Entity, w, h float64) []*domain.Entity {
	g := GridFor(len(entities), w, h)
	if g.Cols == 0 {
		return entities
	}

	for i, e := range entities {
		if e == nil {
			continue
		}
		col, row := i%g.Cols, i/g.Cols
		x := float64(col)*g.CellWidth + (g.CellWidth-e.Size.Width)/2
		y := float64(row)*g.CellHeight + (g.CellHeight-e.Size.Height)/2
		e.Position = domain.Point{
			X: clamp(x, w-e.Size.Width),
			Y: clamp(y, h-e.Size.Height),
		}
	}
	return entities
}

// clamp keeps v within [0, limit]. A negative limit (box wider than the canvas) pins to 0.
func clamp(v, limit float64) float64 {
	if v > limit {
		v = limit
	}
	if v < 0 {
		v = 0
	}
	return v
}
