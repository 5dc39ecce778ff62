package shape

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestKindsOrder(t *testing.T) {
	want := []Kind{I, O, T, S, Z, J, L}
	if diff := cmp.Diff(want, Kinds()); diff != "" {
		t.Errorf("Kinds() mismatch (-want +got):\n%s", diff)
	}

	// Callers cannot reorder the catalog through the returned slice.
	ks := Kinds()
	ks[0] = L
	if Kinds()[0] != I {
		t.Error("Kinds() exposes internal state")
	}
}

func TestIRotationZero(t *testing.T) {
	want := []Offset{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	if diff := cmp.Diff(want, Rotations(I)[0]); diff != "" {
		t.Errorf("I rotation 0 mismatch (-want +got):\n%s", diff)
	}
}

func TestRotationCounts(t *testing.T) {
	for _, k := range Kinds() {
		if n := len(Rotations(k)); n != NumRotations {
			t.Errorf("%s has %d rotations", k, n)
		}
		for _, r := range Rotations(k) {
			if len(r) != k.Size() {
				t.Errorf("%s rotation has %d cells, want %d", k, len(r), k.Size())
			}
		}
	}
	if u := Rotations(Unit); len(u) != 1 || len(u[0]) != 1 || Unit.Size() != 1 {
		t.Errorf("Unit rotations = %v", u)
	}
	if Rotations(Kind(42)) != nil {
		t.Error("invalid kind should have no rotations")
	}
}

func TestTurn(t *testing.T) {
	// Four quarter turns return every shape to its starting cells.
	for _, k := range Kinds() {
		offs := Rotations(k)[0]
		got := offs
		for range 4 {
			got = turn(got)
		}
		if !sameCells(offs, got) {
			t.Errorf("%s: four turns = %v, want %v", k, got, offs)
		}
	}
}

func TestCheckRotationRejects(t *testing.T) {
	tests := map[string][]Offset{
		"too few":     {{0, 0}, {1, 0}},
		"duplicate":   {{0, 0}, {0, 0}, {1, 0}, {2, 0}},
		"negative":    {{-1, 0}, {0, 0}, {1, 0}, {2, 0}},
		"outside box": {{0, 0}, {1, 0}, {2, 0}, {4, 0}},
		"unanchored":  {{1, 1}, {2, 1}, {3, 1}, {1, 2}},
	}
	for name, offs := range tests {
		t.Run(name, func(t *testing.T) {
			if err := checkRotation(offs); err == nil {
				t.Errorf("checkRotation(%v) = nil, want error", offs)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range append(Kinds(), Unit) {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if k, err := ParseKind("t"); err != nil || k != T {
		t.Errorf("ParseKind is case-insensitive: got %v, %v", k, err)
	}
	if _, err := ParseKind("Q"); err == nil {
		t.Error("ParseKind(Q) should fail")
	}
}

func TestKindText(t *testing.T) {
	b, err := Z.MarshalText()
	if err != nil || string(b) != "Z" {
		t.Fatalf("MarshalText = %q, %v", b, err)
	}
	var k Kind
	if err := k.UnmarshalText([]byte("unit")); err != nil || k != Unit {
		t.Errorf("UnmarshalText(unit) = %v, %v", k, err)
	}
	if _, err := Kind(-1).MarshalText(); err == nil {
		t.Error("MarshalText of invalid kind should fail")
	}
	if Kind(99).String() != "Kind(99)" {
		t.Errorf("String of invalid kind = %q", Kind(99).String())
	}
}
