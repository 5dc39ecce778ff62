package activity

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Summary describes a grid's activity at a glance.
type Summary struct {
	Total         int       `json:"total"`
	ActiveDays    int       `json:"active_days"`
	Days          int       `json:"days"`
	LongestStreak int       `json:"longest_streak"`
	CurrentStreak int       `json:"current_streak"`
	BusiestCount  int       `json:"busiest_count"`
	BusiestDate   time.Time `json:"busiest_date,omitzero"`
	Mean          float64   `json:"mean"`    // over active days
	StdDev        float64   `json:"std_dev"` // over active days
	Median        float64   `json:"median"`  // over active days
	P90           float64   `json:"p90"`     // over active days
	Levels        [5]int    `json:"levels"`  // days per intensity bucket
}

// Summarize computes streaks and distribution statistics. Undated padding
// slots are ignored; undated grids from FromRows count every cell as a day.
func Summarize(g *Grid) Summary {
	var s Summary
	var active []float64
	streak := 0
	_, dated := g.LastDate()

	for x := range g.width {
		for y := range g.height {
			d := g.days[y][x]
			if dated && !d.HasDate {
				continue
			}
			s.Days++
			s.Total += d.Count
			s.Levels[Bucket(d.Count)]++

			if d.Count > 0 {
				active = append(active, float64(d.Count))
				streak++
				s.LongestStreak = max(s.LongestStreak, streak)
			} else {
				streak = 0
			}
			if d.Count > s.BusiestCount {
				s.BusiestCount = d.Count
				s.BusiestDate = d.Date
			}
		}
	}
	s.CurrentStreak = streak
	s.ActiveDays = len(active)

	if len(active) > 0 {
		slices.Sort(active)
		s.Mean = stat.Mean(active, nil)
		if len(active) > 1 {
			s.StdDev = stat.StdDev(active, nil)
		}
		s.Median = stat.Quantile(0.5, stat.Empirical, active, nil)
		s.P90 = stat.Quantile(0.9, stat.Empirical, active, nil)
	}
	return s
}
