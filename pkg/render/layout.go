package render

import "github.com/matzehuels/blockfall/pkg/activity"

// Layout maps grid coordinates to pixels.
type Layout struct {
	Cell    float64 `json:"cell" toml:"cell" yaml:"cell"`             // side length of one day cell
	Gap     float64 `json:"gap" toml:"gap" yaml:"gap"`                // space between neighbouring cells
	MarginX float64 `json:"margin_x" toml:"margin_x" yaml:"margin_x"` // left and right padding
	MarginY float64 `json:"margin_y" toml:"margin_y" yaml:"margin_y"` // top and bottom padding
	Header  float64 `json:"header" toml:"header" yaml:"header"`       // title and month label band above the grid
}

// Default layout constants.
const (
	DefaultCell    = 11.0
	DefaultGap     = 3.0
	DefaultMarginX = 16.0
	DefaultMarginY = 12.0
	DefaultHeader  = 30.0
)

// DefaultLayout returns the standard contribution-calendar geometry.
func DefaultLayout() Layout {
	return Layout{
		Cell:    DefaultCell,
		Gap:     DefaultGap,
		MarginX: DefaultMarginX,
		MarginY: DefaultMarginY,
		Header:  DefaultHeader,
	}
}

// Rect is an axis-aligned pixel rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether r lies entirely inside o.
func (r Rect) Contains(o Rect) bool {
	const eps = 1e-9
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.X+o.W <= r.X+r.W+eps && o.Y+o.H <= r.Y+r.H+eps
}

// Pitch is the distance between the origins of neighbouring cells.
func (l Layout) Pitch() float64 { return l.Cell + l.Gap }

// CellOrigin returns the top-left pixel of grid cell (x, y).
func (l Layout) CellOrigin(x, y int) (float64, float64) {
	return l.MarginX + float64(x)*l.Pitch(), l.MarginY + l.Header + float64(y)*l.Pitch()
}

// CellRect returns the pixel rectangle of grid cell (x, y).
func (l Layout) CellRect(x, y int) Rect {
	px, py := l.CellOrigin(x, y)
	return Rect{X: px, Y: py, W: l.Cell, H: l.Cell}
}

// Bounds returns the pixel rectangle covered by the cells of g.
func (l Layout) Bounds(g *activity.Grid) Rect {
	x, y := l.CellOrigin(0, 0)
	return Rect{
		X: x,
		Y: y,
		W: max(0, float64(g.Width())*l.Pitch()-l.Gap),
		H: max(0, float64(g.Height())*l.Pitch()-l.Gap),
	}
}

// Canvas returns the full document size for g.
func (l Layout) Canvas(g *activity.Grid) (float64, float64) {
	b := l.Bounds(g)
	return b.W + 2*l.MarginX, b.H + 2*l.MarginY + l.Header
}

func (l Layout) valid() bool {
	return l.Cell > 0 && l.Gap >= 0 && l.MarginX >= 0 && l.MarginY >= 0 && l.Header >= 0
}
