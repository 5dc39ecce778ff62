// Package activity models a contribution calendar as a fixed-height grid of
// per-day counts.
//
// Columns are weeks (oldest first) and rows are weekdays (row 0 is Sunday).
// A [Grid] is immutable once built; every cell has a count, defaulting to 0
// where the source had no data.
package activity

import (
	"time"
)

const (
	// DaysPerWeek is the grid height for calendar-backed grids.
	DaysPerWeek = 7

	// MaxWeeks is the widest window a calendar grid may span.
	MaxWeeks = 53
)

// Levels are the intensity buckets a count quantizes into.
const (
	LevelNone = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelMax
)

// Bucket maps a contribution count to its intensity level (0-4) using fixed
// breakpoints: 0, 1-2, 3-5, 6-9, 10+. Negative counts are treated as 0.
func Bucket(count int) int {
	switch {
	case count <= 0:
		return LevelNone
	case count <= 2:
		return LevelLow
	case count <= 5:
		return LevelMedium
	case count <= 9:
		return LevelHigh
	default:
		return LevelMax
	}
}

// Day is one calendar slot. HasDate is false for padding slots.
type Day struct {
	Date    time.Time `json:"date,omitzero"`
	HasDate bool      `json:"has_date,omitempty"`
	Count   int       `json:"count"`
}

// Week is seven consecutive days, Sunday first.
type Week [DaysPerWeek]Day

// Cell addresses one grid position.
type Cell struct {
	X, Y int
}

// Grid is a read-only H×W matrix of days.
type Grid struct {
	width, height int
	days          [][]Day // [y][x]
}

// FromWeeks builds a calendar grid from weeks ordered oldest to newest,
// keeping the most recent windowWeeks of them. A non-positive window means
// [MaxWeeks]; larger windows are clamped to it.
func FromWeeks(weeks []Week, windowWeeks int) *Grid {
	windowWeeks = clampWindow(windowWeeks)
	if len(weeks) > windowWeeks {
		weeks = weeks[len(weeks)-windowWeeks:]
	}

	g := newGrid(max(1, len(weeks)), DaysPerWeek)
	for x, w := range weeks {
		for y, d := range w {
			if d.Count < 0 {
				d.Count = 0
			}
			g.days[y][x] = d
		}
	}
	return g
}

// FromDays builds a calendar grid from consecutive days ordered oldest to
// newest. It keeps the most recent days that fit in windowWeeks columns once
// the newest day is aligned to its weekday row; trailing slots of the current
// week and leading slots before the first day stay empty.
func FromDays(days []Day, windowWeeks int) *Grid {
	windowWeeks = clampWindow(windowWeeks)

	trailing := 0
	if n := len(days); n > 0 {
		if last := days[n-1]; last.HasDate {
			trailing = DaysPerWeek - 1 - int(last.Date.Weekday())
		} else {
			trailing = (DaysPerWeek - n%DaysPerWeek) % DaysPerWeek
		}
	}
	if keep := windowWeeks*DaysPerWeek - trailing; len(days) > keep {
		days = days[len(days)-keep:]
	}

	slots := len(days) + trailing
	lead := (DaysPerWeek - slots%DaysPerWeek) % DaysPerWeek
	slots += lead

	g := newGrid(max(1, slots/DaysPerWeek), DaysPerWeek)
	for i, d := range days {
		pos := lead + i
		if d.Count < 0 {
			d.Count = 0
		}
		g.days[pos%DaysPerWeek][pos/DaysPerWeek] = d
	}
	return g
}

// FromRows builds an undated grid directly from counts indexed [y][x]. Short
// rows are padded with zeros. It is meant for fixtures and non-calendar
// sources; the height is len(rows), not necessarily [DaysPerWeek].
func FromRows(rows [][]int) *Grid {
	w := 1
	for _, r := range rows {
		w = max(w, len(r))
	}
	g := newGrid(w, max(1, len(rows)))
	for y, r := range rows {
		for x, c := range r {
			g.days[y][x] = Day{Count: max(0, c)}
		}
	}
	return g
}

func newGrid(w, h int) *Grid {
	days := make([][]Day, h)
	for y := range days {
		days[y] = make([]Day, w)
	}
	return &Grid{width: w, height: h, days: days}
}

func clampWindow(w int) int {
	if w <= 0 || w > MaxWeeks {
		return MaxWeeks
	}
	return w
}

// Width returns the number of columns (weeks).
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) lies inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Day returns the slot at (x, y). Out-of-range positions return the zero Day.
func (g *Grid) Day(x, y int) Day {
	if !g.InBounds(x, y) {
		return Day{}
	}
	return g.days[y][x]
}

// Count returns the count at (x, y), or 0 outside the grid.
func (g *Grid) Count(x, y int) int { return g.Day(x, y).Count }

// Level returns Bucket(Count(x, y)).
func (g *Grid) Level(x, y int) int { return Bucket(g.Count(x, y)) }

// Occupied reports whether (x, y) has a positive count.
func (g *Grid) Occupied(x, y int) bool { return g.Count(x, y) > 0 }

// Total returns the sum of all counts.
func (g *Grid) Total() int {
	total := 0
	for _, row := range g.days {
		for _, d := range row {
			total += d.Count
		}
	}
	return total
}

// OccupiedCells returns all cells with a positive count in row-major order.
func (g *Grid) OccupiedCells() []Cell {
	var cells []Cell
	for y, row := range g.days {
		for x, d := range row {
			if d.Count > 0 {
				cells = append(cells, Cell{X: x, Y: y})
			}
		}
	}
	return cells
}

// Counts returns a copy of the counts indexed [y][x].
func (g *Grid) Counts() [][]int {
	out := make([][]int, g.height)
	for y, row := range g.days {
		out[y] = make([]int, g.width)
		for x, d := range row {
			out[y][x] = d.Count
		}
	}
	return out
}

// LastDate returns the newest dated slot, if any.
func (g *Grid) LastDate() (time.Time, bool) {
	for x := g.width - 1; x >= 0; x-- {
		for y := g.height - 1; y >= 0; y-- {
			if d := g.days[y][x]; d.HasDate {
				return d.Date, true
			}
		}
	}
	return time.Time{}, false
}
