package pack

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/blockfall/pkg/activity"
	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/rng"
	"github.com/matzehuels/blockfall/pkg/shape"
)

// randomGrid builds a W×7 grid where roughly density of the cells are active.
func randomGrid(seed uint32, w int, density float64) *activity.Grid {
	next := rng.New(seed)
	rows := make([][]int, activity.DaysPerWeek)
	for y := range rows {
		rows[y] = make([]int, w)
		for x := range rows[y] {
			if next() < density {
				rows[y][x] = 1 + next.Intn(14)
			}
		}
	}
	return activity.FromRows(rows)
}

func TestPackEmptyGrid(t *testing.T) {
	g := activity.FromRows([][]int{{0, 0, 0}, {0, 0, 0}})
	got, err := Pack(g, rng.New(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Pack(empty) = %d placements, want 0", len(got))
	}
}

func TestPackIsolatedCellsFallBackToUnit(t *testing.T) {
	var w activity.Week
	for i, c := range []int{0, 3, 0, 5, 0, 0, 9} {
		w[i] = activity.Day{Count: c}
	}
	g := activity.FromWeeks([]activity.Week{w}, 1)

	got, err := Pack(g, rng.New(7))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d placements, want 3", len(got))
	}

	scores := map[activity.Cell]int{}
	for _, p := range got {
		if p.Kind != shape.Unit {
			t.Errorf("placement %+v, want unit", p)
		}
		scores[activity.Cell{X: p.X, Y: p.Y}] = p.Score
	}
	want := map[activity.Cell]int{{X: 0, Y: 1}: 2, {X: 0, Y: 3}: 2, {X: 0, Y: 6}: 3}
	if diff := cmp.Diff(want, scores); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}

	// Bottom rows are packed first.
	if got[0].Y != 6 || got[1].Y != 3 || got[2].Y != 1 {
		t.Errorf("placement rows = %d,%d,%d, want 6,3,1", got[0].Y, got[1].Y, got[2].Y)
	}
}

func TestPackHorizontalI(t *testing.T) {
	g := activity.FromRows([][]int{{1, 1, 1, 1}})

	for seed := range uint32(20) {
		got, err := Pack(g, rng.New(seed))
		if err != nil {
			t.Fatal(err)
		}
		want := []Placement{{
			Kind:     shape.I,
			Rotation: 0,
			Offsets:  []shape.Offset{{DX: 0, DY: 0}, {DX: 1, DY: 0}, {DX: 2, DY: 0}, {DX: 3, DY: 0}},
			X:        0,
			Y:        0,
			Score:    4,
		}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("seed %d: placements mismatch (-want +got):\n%s", seed, diff)
		}
	}
}

func TestPackPrefersHigherScore(t *testing.T) {
	// The lone bottom cell can hang under the light left run (J, score 7),
	// the middle (T, score 10) or the heavy right run (L, score 13).
	g := activity.FromRows([][]int{
		{1, 1, 1, 20, 20, 20},
		{0, 0, 0, 1, 0, 0},
	})
	got, err := Pack(g, rng.New(3))
	if err != nil {
		t.Fatal(err)
	}
	if err := Verify(g, got); err != nil {
		t.Fatal(err)
	}
	want := Placement{
		Kind:     shape.L,
		Rotation: 2,
		Offsets:  []shape.Offset{{DX: 0, DY: 0}, {DX: 1, DY: 0}, {DX: 2, DY: 0}, {DX: 0, DY: 1}},
		X:        3,
		Y:        0,
		Score:    13,
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("first placement mismatch (-want +got):\n%s", diff)
	}
	// The three light cells left over cannot hold a tetromino.
	for _, p := range got[1:] {
		if p.Kind != shape.Unit {
			t.Errorf("leftover placement %s, want unit", p.Kind)
		}
	}
}

func TestPackTieBreakFollowsCatalogOrder(t *testing.T) {
	// A full 2×2 block admits O (score 4) and nothing else with 4 cells; O
	// rotation 0 is found before its identical rotations.
	g := activity.FromRows([][]int{{1, 1}, {1, 1}})
	got, err := Pack(g, rng.New(11))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Kind != shape.O || got[0].Rotation != 0 {
		t.Fatalf("got %+v, want one O at rotation 0", got)
	}
	if got[0].X != 0 || got[0].Y != 0 {
		t.Errorf("anchor = (%d,%d), want (0,0)", got[0].X, got[0].Y)
	}
}

func TestPackPartitionsOccupiedCells(t *testing.T) {
	for seed := range uint32(50) {
		density := []float64{0.1, 0.4, 0.7, 1.0}[seed%4]
		g := randomGrid(seed, 53, density)

		got, err := Pack(g, rng.New(seed*31+1))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if err := Verify(g, got); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if n := len(g.OccupiedCells()); len(got) > n {
			t.Errorf("seed %d: %d placements for %d occupied cells", seed, len(got), n)
		}
	}
}

func TestPackDeterministic(t *testing.T) {
	g := randomGrid(99, 53, 0.6)
	a, err := Pack(g, rng.New(424242))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Pack(g, rng.New(424242))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different packings (-a +b):\n%s", diff)
	}

	c, err := Pack(g, rng.New(424243))
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Equal(a, c) {
		t.Error("different seeds produced identical packings")
	}
}

func TestPackScoresMatchLevels(t *testing.T) {
	g := randomGrid(5, 30, 0.8)
	got, err := Pack(g, rng.New(5))
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range got {
		sum := 0
		for _, c := range p.Cells() {
			sum += g.Level(c.X, c.Y)
		}
		if sum != p.Score {
			t.Errorf("%s at (%d,%d): score %d, cells sum to %d", p.Kind, p.X, p.Y, p.Score, sum)
		}
	}
}

func TestPackOffsetsAreCopies(t *testing.T) {
	g := activity.FromRows([][]int{{1, 1, 1, 1}})
	got, err := Pack(g, rng.New(1))
	if err != nil {
		t.Fatal(err)
	}
	got[0].Offsets[0] = shape.Offset{DX: 9, DY: 9}
	if shape.Rotations(shape.I)[0][0] != (shape.Offset{}) {
		t.Fatal("placement offsets alias the shape catalog")
	}
}

func TestSafetyBoundIsInternalError(t *testing.T) {
	err := bferrors.Wrap(bferrors.ErrCodeInternal, ErrSafetyBound, "test")
	if !bferrors.Is(err, bferrors.ErrCodeInternal) {
		t.Error("safety bound should carry INTERNAL_ERROR")
	}
}

func TestVerifyDetectsViolations(t *testing.T) {
	g := activity.FromRows([][]int{{1, 1, 0}})
	unit := func(x int) Placement {
		return Placement{Kind: shape.Unit, Offsets: []shape.Offset{{DX: 0, DY: 0}}, X: x}
	}

	tests := []struct {
		name string
		ps   []Placement
	}{
		{"missing cell", []Placement{unit(0)}},
		{"overlap", []Placement{unit(0), unit(0), unit(1)}},
		{"empty cell", []Placement{unit(0), unit(1), unit(2)}},
		{"out of bounds", []Placement{unit(0), unit(1), unit(5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Verify(g, tt.ps); err == nil {
				t.Error("Verify = nil, want error")
			}
		})
	}
	if err := Verify(g, []Placement{unit(1), unit(0)}); err != nil {
		t.Errorf("valid partition rejected: %v", err)
	}
}

func TestPlacementBottom(t *testing.T) {
	p := Placement{Kind: shape.I, Offsets: shape.Rotations(shape.I)[1], X: 2, Y: 1}
	if p.Bottom() != 4 {
		t.Errorf("Bottom = %d, want 4", p.Bottom())
	}
}
