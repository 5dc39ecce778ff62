package timeline

import (
	"testing"

	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/pack"
	"github.com/matzehuels/blockfall/pkg/rng"
)

func TestByName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "drop"},
		{"drop", "drop"},
		{" Rows ", "rows"},
	}
	for _, tt := range tests {
		p, err := ByName(tt.in)
		if err != nil {
			t.Fatalf("ByName(%q): %v", tt.in, err)
		}
		if p.Name() != tt.want {
			t.Errorf("ByName(%q) = %s, want %s", tt.in, p.Name(), tt.want)
		}
	}

	_, err := ByName("sweep")
	if !bferrors.Is(err, bferrors.ErrCodeInvalidPolicy) {
		t.Errorf("ByName(sweep) = %v, want INVALID_POLICY", err)
	}
}

func TestRowsReleasesRowsTogether(t *testing.T) {
	g := testGrid()
	placements, err := pack.Pack(g, rng.New(5))
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	entries := Rows{}.Schedule(placements, 0, 0, cfg)
	if len(entries) != len(placements) {
		t.Fatalf("%d entries for %d placements", len(entries), len(placements))
	}

	beginByRow := map[int]float64{}
	for i, e := range entries {
		if i > 0 && e.Begin < entries[i-1].Begin {
			t.Fatalf("begin times decrease at %d", i)
		}
		if e.Begin > cfg.Budget() {
			t.Fatalf("entry %d begins at %v, after budget %v", i, e.Begin, cfg.Budget())
		}
		b := e.Placement.Bottom()
		if prev, ok := beginByRow[b]; ok && prev != e.Begin {
			t.Errorf("row %d released at %v and %v", b, prev, e.Begin)
		}
		beginByRow[b] = e.Begin
	}
	// Lower rows fall first.
	for row, begin := range beginByRow {
		if lower, ok := beginByRow[row+1]; ok && lower >= begin {
			t.Errorf("row %d (%v) not before row %d (%v)", row+1, lower, row, begin)
		}
	}
}

func TestRowsEmpty(t *testing.T) {
	if got := (Rows{}).Schedule(nil, 0, 0, DefaultConfig()); got != nil {
		t.Errorf("Rows.Schedule(nil) = %v", got)
	}
}
