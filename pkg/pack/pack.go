// Package pack covers the occupied cells of an activity grid with falling
// pieces.
//
// [Pack] is a greedy, seeded packer. It repeatedly takes the lowest row that
// still has uncovered occupied cells, picks one of those cells at random, and
// places the best-scoring tetromino that covers it using only uncovered
// occupied cells. When no tetromino fits, the cell gets a one-cell [shape.Unit]
// piece. The result partitions the occupied cells: every one of them is
// covered by exactly one placement and no empty cell is ever covered.
package pack

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/blockfall/pkg/activity"
	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/rng"
	"github.com/matzehuels/blockfall/pkg/shape"
)

// MaxIterations caps the packing loop. Each iteration covers at least one new
// cell, so a correct run never gets close on a 53×7 grid.
const MaxIterations = 4000

// ErrSafetyBound reports that the packer hit MaxIterations with cells left
// uncovered. It indicates broken coverage bookkeeping and is always fatal.
var ErrSafetyBound = errors.New("pack: iteration bound reached with uncovered cells")

// Placement is one committed piece.
type Placement struct {
	Kind     shape.Kind     `json:"kind"`
	Rotation int            `json:"rotation"`
	Offsets  []shape.Offset `json:"offsets"`
	X        int            `json:"x"` // anchor column
	Y        int            `json:"y"` // anchor row
	Score    int            `json:"score"`
}

// Cells returns the absolute grid cells the placement covers, in offset order.
func (p Placement) Cells() []activity.Cell {
	cells := make([]activity.Cell, len(p.Offsets))
	for i, o := range p.Offsets {
		cells[i] = activity.Cell{X: p.X + o.DX, Y: p.Y + o.DY}
	}
	return cells
}

// Bottom returns the largest row index the placement covers.
func (p Placement) Bottom() int {
	b := p.Y
	for _, o := range p.Offsets {
		b = max(b, p.Y+o.DY)
	}
	return b
}

// Pack covers every occupied cell of g, drawing cell choices from next.
// Pack owns a fresh coverage mask per call; next must not be shared with
// another concurrent Pack call. An empty grid yields no placements.
func Pack(g *activity.Grid, next rng.Source) ([]Placement, error) {
	m := newMask(g)
	placements := make([]Placement, 0, m.remaining)

	for iter := 0; m.remaining > 0; iter++ {
		if iter >= MaxIterations {
			return placements, bferrors.Wrap(bferrors.ErrCodeInternal, ErrSafetyBound,
				"%d cells still uncovered after %d placements", m.remaining, len(placements))
		}

		x, y := m.pick(next)
		p, ok := bestFit(g, m, x, y)
		if !ok {
			p = Placement{
				Kind:    shape.Unit,
				Offsets: slices.Clone(shape.Rotations(shape.Unit)[0]),
				X:       x,
				Y:       y,
				Score:   g.Level(x, y),
			}
		}
		m.commit(p)
		placements = append(placements, p)
	}
	return placements, nil
}

// bestFit searches every kind, rotation and anchor alignment that covers
// (x, y) and returns the highest-scoring legal placement. Ties keep the first
// candidate in enumeration order.
func bestFit(g *activity.Grid, m *mask, x, y int) (Placement, bool) {
	var best Placement
	found := false

	for _, k := range shape.Kinds() {
		for r, offs := range shape.Rotations(k) {
			for _, pivot := range offs {
				ax, ay := x-pivot.DX, y-pivot.DY
				score, ok := m.fits(g, offs, ax, ay)
				if !ok || (found && score <= best.Score) {
					continue
				}
				best = Placement{Kind: k, Rotation: r, Offsets: offs, X: ax, Y: ay, Score: score}
				found = true
			}
		}
	}
	if found {
		best.Offsets = slices.Clone(best.Offsets)
	}
	return best, found
}

// mask tracks occupied cells not yet covered by a placement.
type mask struct {
	open      [][]bool // [y][x]
	remaining int
}

func newMask(g *activity.Grid) *mask {
	m := &mask{open: make([][]bool, g.Height())}
	for y := range m.open {
		m.open[y] = make([]bool, g.Width())
		for x := range m.open[y] {
			if g.Occupied(x, y) {
				m.open[y][x] = true
				m.remaining++
			}
		}
	}
	return m
}

// pick selects a random open cell from the lowest row that has one.
// It must only be called while remaining > 0.
func (m *mask) pick(next rng.Source) (int, int) {
	for y := len(m.open) - 1; y >= 0; y-- {
		var xs []int
		for x, open := range m.open[y] {
			if open {
				xs = append(xs, x)
			}
		}
		if len(xs) > 0 {
			return xs[next.Intn(len(xs))], y
		}
	}
	panic("pack: pick called on a fully covered mask")
}

// fits reports whether offs anchored at (ax, ay) lands only on open cells,
// and returns the summed intensity level of those cells.
func (m *mask) fits(g *activity.Grid, offs []shape.Offset, ax, ay int) (int, bool) {
	score := 0
	for _, o := range offs {
		cx, cy := ax+o.DX, ay+o.DY
		if !g.InBounds(cx, cy) || !m.open[cy][cx] {
			return 0, false
		}
		score += g.Level(cx, cy)
	}
	return score, true
}

func (m *mask) commit(p Placement) {
	for _, c := range p.Cells() {
		if m.open[c.Y][c.X] {
			m.open[c.Y][c.X] = false
			m.remaining--
		}
	}
}

// Verify checks that placements partition exactly the occupied cells of g.
func Verify(g *activity.Grid, placements []Placement) error {
	covered := make(map[activity.Cell]int, len(placements)*4)
	for i, p := range placements {
		for _, c := range p.Cells() {
			if !g.InBounds(c.X, c.Y) {
				return fmt.Errorf("placement %d (%s) covers out-of-bounds cell %v", i, p.Kind, c)
			}
			if !g.Occupied(c.X, c.Y) {
				return fmt.Errorf("placement %d (%s) covers empty cell %v", i, p.Kind, c)
			}
			if j, dup := covered[c]; dup {
				return fmt.Errorf("cell %v covered by placements %d and %d", c, j, i)
			}
			covered[c] = i
		}
	}
	for _, c := range g.OccupiedCells() {
		if _, ok := covered[c]; !ok {
			return fmt.Errorf("occupied cell %v is not covered", c)
		}
	}
	return nil
}
