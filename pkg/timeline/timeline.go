// Package timeline turns packed placements into timed animation entries.
//
// A [Timeline] is a static, declarative schedule: several independent runs
// laid back to back in one repeating cycle. Each run packs the grid with its
// own seed (see [rng.RunSeed]) and assigns every placement a begin time, a
// travel duration and a spawn point above the grid. Nothing here executes the
// animation; renderers replay it.
package timeline

import (
	"fmt"

	"github.com/matzehuels/blockfall/pkg/activity"
	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/pack"
	"github.com/matzehuels/blockfall/pkg/rng"
)

// SpawnRows is how far above the grid's top edge pieces start, in rows.
const SpawnRows = 4

// Entry schedules one placement. Times are seconds from the start of the
// cycle; positions are in grid units.
type Entry struct {
	Run       int            `json:"run"`
	Index     int            `json:"index"`
	Placement pack.Placement `json:"placement"`
	Begin     float64        `json:"begin"`
	Duration  float64        `json:"duration"`
	FromY     float64        `json:"from_y"`
	ToX       int            `json:"to_x"`
	ToY       int            `json:"to_y"`
}

// End returns the time the piece lands.
func (e Entry) End() float64 { return e.Begin + e.Duration }

// Config controls pacing.
type Config struct {
	// Runs is the number of independent packings per cycle.
	Runs int `json:"runs" toml:"runs" yaml:"runs"`
	// StepDuration is the preferred gap between consecutive drops.
	StepDuration float64 `json:"step" toml:"step" yaml:"step"`
	// RowStepDuration is the gap between rows for the rows policy.
	RowStepDuration float64 `json:"row_step" toml:"row_step" yaml:"row_step"`
	// TravelDuration is how long one piece takes to fall.
	TravelDuration float64 `json:"travel" toml:"travel" yaml:"travel"`
	// RunDuration is the slot length of one run, including the hold.
	RunDuration float64 `json:"run_duration" toml:"run_duration" yaml:"run_duration"`
	// HoldDuration is how long the finished picture stays before the next run.
	// It is always positive: zero selects DefaultHoldDuration.
	HoldDuration float64 `json:"hold" toml:"hold" yaml:"hold"`
}

// Defaults.
const (
	DefaultRuns            = 10
	DefaultStepDuration    = 0.18
	DefaultRowStepDuration = 0.9
	DefaultTravelDuration  = 0.6
	DefaultRunDuration     = 12.0
	DefaultHoldDuration    = 2.0
)

// DefaultConfig returns the standard pacing.
func DefaultConfig() Config {
	return Config{
		Runs:            DefaultRuns,
		StepDuration:    DefaultStepDuration,
		RowStepDuration: DefaultRowStepDuration,
		TravelDuration:  DefaultTravelDuration,
		RunDuration:     DefaultRunDuration,
		HoldDuration:    DefaultHoldDuration,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Runs == 0 {
		c.Runs = d.Runs
	}
	if c.StepDuration == 0 {
		c.StepDuration = d.StepDuration
	}
	if c.RowStepDuration == 0 {
		c.RowStepDuration = d.RowStepDuration
	}
	if c.TravelDuration == 0 {
		c.TravelDuration = d.TravelDuration
	}
	if c.RunDuration == 0 {
		c.RunDuration = d.RunDuration
	}
	if c.HoldDuration == 0 {
		c.HoldDuration = d.HoldDuration
	}
	return c
}

// Validate rejects configurations that cannot produce a sensible cycle.
func (c Config) Validate() error {
	switch {
	case c.Runs < 1 || c.Runs > 100:
		return bferrors.New(bferrors.ErrCodeInvalidInput, "runs must be between 1 and 100, got %d", c.Runs)
	case c.StepDuration <= 0 || c.RowStepDuration <= 0:
		return bferrors.New(bferrors.ErrCodeInvalidInput, "step durations must be positive")
	case c.TravelDuration <= 0:
		return bferrors.New(bferrors.ErrCodeInvalidInput, "travel duration must be positive")
	case c.HoldDuration <= 0:
		return bferrors.New(bferrors.ErrCodeInvalidInput, "hold duration must be positive")
	case c.RunDuration <= c.TravelDuration+c.HoldDuration:
		return bferrors.New(bferrors.ErrCodeInvalidInput,
			"run duration %.2fs must exceed travel + hold (%.2fs)", c.RunDuration, c.TravelDuration+c.HoldDuration)
	}
	return nil
}

// Budget is the window within a run in which drops may begin, so that the
// last piece lands before the hold starts.
func (c Config) Budget() float64 {
	return max(0, c.RunDuration-c.TravelDuration-c.HoldDuration)
}

// Schedule spaces placements evenly from runStart, stepDuration apart unless
// that would overflow the run: then the step shrinks to runBudget/len. Every
// entry falls for travelDuration from SpawnRows above the grid to its anchor.
// Begin times are non-decreasing and never exceed runStart+runBudget.
func Schedule(placements []pack.Placement, runIndex int, runStart, stepDuration, travelDuration, runBudget float64) []Entry {
	if len(placements) == 0 {
		return nil
	}
	step := min(stepDuration, max(0, runBudget)/float64(len(placements)))

	entries := make([]Entry, len(placements))
	for i, p := range placements {
		entries[i] = Entry{
			Run:       runIndex,
			Index:     i,
			Placement: p,
			Begin:     runStart + float64(i)*step,
			Duration:  travelDuration,
			FromY:     -SpawnRows,
			ToX:       p.X,
			ToY:       p.Y,
		}
	}
	return entries
}

// Run is one seeded packing and its schedule.
type Run struct {
	Index      int              `json:"index"`
	Seed       uint32           `json:"seed"`
	Start      float64          `json:"start"`
	Placements []pack.Placement `json:"-"`
	Entries    []Entry          `json:"entries"`
}

// Timeline is the full repeating cycle.
type Timeline struct {
	BaseSeed uint32 `json:"base_seed"`
	Policy   string `json:"policy"`
	Config   Config `json:"config"`
	Runs     []Run  `json:"runs"`
}

// Duration returns the length of one full cycle in seconds.
func (t *Timeline) Duration() float64 {
	return float64(len(t.Runs)) * t.Config.RunDuration
}

// Entries returns every entry of every run in cycle order.
func (t *Timeline) Entries() []Entry {
	var out []Entry
	for _, r := range t.Runs {
		out = append(out, r.Entries...)
	}
	return out
}

// Empty reports whether no run has any entry.
func (t *Timeline) Empty() bool {
	for _, r := range t.Runs {
		if len(r.Entries) > 0 {
			return false
		}
	}
	return true
}

// Plan packs g once per run and schedules each packing with policy. Run i
// uses seed RunSeed(base, i) and starts at i*RunDuration. Runs share no
// coverage or random state.
func Plan(g *activity.Grid, base uint32, cfg Config, policy Policy) (*Timeline, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if policy == nil {
		policy = Drop{}
	}

	tl := &Timeline{
		BaseSeed: base,
		Policy:   policy.Name(),
		Config:   cfg,
		Runs:     make([]Run, cfg.Runs),
	}
	for i := range cfg.Runs {
		seed := rng.RunSeed(base, i)
		placements, err := pack.Pack(g, rng.New(seed))
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		start := float64(i) * cfg.RunDuration
		tl.Runs[i] = Run{
			Index:      i,
			Seed:       seed,
			Start:      start,
			Placements: placements,
			Entries:    policy.Schedule(placements, i, start, cfg),
		}
	}
	return tl, nil
}
