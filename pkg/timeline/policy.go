package timeline

import (
	"slices"
	"strings"

	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/pack"
)

// Policy decides when each placement of a run begins to fall.
//
// Implementations must return entries in placement order with non-decreasing
// begin times, none later than runStart+cfg.Budget().
type Policy interface {
	Name() string
	Schedule(placements []pack.Placement, run int, runStart float64, cfg Config) []Entry
}

// Drop releases pieces one at a time in packing order.
type Drop struct{}

func (Drop) Name() string { return "drop" }

func (Drop) Schedule(placements []pack.Placement, run int, runStart float64, cfg Config) []Entry {
	return Schedule(placements, run, runStart, cfg.StepDuration, cfg.TravelDuration, cfg.Budget())
}

// Rows releases every piece resting on the same bottom row together, so the
// picture builds up one row at a time from the bottom of the grid.
type Rows struct{}

func (Rows) Name() string { return "rows" }

func (Rows) Schedule(placements []pack.Placement, run int, runStart float64, cfg Config) []Entry {
	if len(placements) == 0 {
		return nil
	}

	// Packing proceeds bottom-up, so bottoms are already non-increasing; the
	// rank of a bottom row is its position among the distinct rows.
	var bottoms []int
	for _, p := range placements {
		if b := p.Bottom(); !slices.Contains(bottoms, b) {
			bottoms = append(bottoms, b)
		}
	}
	slices.SortFunc(bottoms, func(a, b int) int { return b - a })

	step := min(cfg.RowStepDuration, cfg.Budget()/float64(len(bottoms)))
	entries := Schedule(placements, run, runStart, 0, cfg.TravelDuration, 0)
	for i := range entries {
		rank := slices.Index(bottoms, placements[i].Bottom())
		entries[i].Begin = runStart + float64(rank)*step
	}
	return entries
}

// Policies lists the built-in policies by name.
func Policies() []string {
	return []string{Drop{}.Name(), Rows{}.Name()}
}

// ByName returns the built-in policy called name. The empty name selects Drop.
func ByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "drop":
		return Drop{}, nil
	case "rows":
		return Rows{}, nil
	}
	return nil, bferrors.New(bferrors.ErrCodeInvalidPolicy,
		"unknown animation policy %q (available: %s)", name, strings.Join(Policies(), ", "))
}
