// Package shape is the static catalog of falling pieces.
//
// Seven tetromino kinds (I, O, T, S, Z, J, L) each have four rotation states,
// and a synthetic single-cell [Unit] piece serves as the packer's fallback.
// Every rotation is an ordered list of (dx, dy) offsets from the piece anchor,
// normalised so the smallest dx and dy are 0; y grows downwards, matching the
// grid's row order. Consecutive rotations are 90° clockwise turns.
//
// The table is fixed data, not derived at runtime. [Validate] checks it.
package shape

import (
	"fmt"
	"strings"
)

// Kind identifies a piece type. The iota order is the catalog enumeration
// order the packer searches in.
type Kind int

const (
	I Kind = iota
	O
	T
	S
	Z
	J
	L
	// Unit is the synthetic one-cell piece. It is never part of Kinds.
	Unit
)

// NumRotations is the number of rotation states of a tetromino.
const NumRotations = 4

// Offset is a cell position relative to a piece anchor.
type Offset struct {
	DX, DY int
}

var kindNames = [...]string{"I", "O", "T", "S", "Z", "J", "L", "unit"}

// table holds the rotations of every kind. Rows are read-only.
var table = [...][][]Offset{
	I: {
		{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		{{0, 0}, {0, 1}, {0, 2}, {0, 3}},
		{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		{{0, 0}, {0, 1}, {0, 2}, {0, 3}},
	},
	O: {
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	},
	T: {
		{{0, 0}, {1, 0}, {2, 0}, {1, 1}},
		{{1, 0}, {0, 1}, {1, 1}, {1, 2}},
		{{1, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{0, 0}, {0, 1}, {1, 1}, {0, 2}},
	},
	S: {
		{{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
		{{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	Z: {
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {0, 1}, {1, 1}, {0, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {0, 1}, {1, 1}, {0, 2}},
	},
	J: {
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {0, 2}},
		{{0, 0}, {1, 0}, {2, 0}, {2, 1}},
		{{1, 0}, {1, 1}, {0, 2}, {1, 2}},
	},
	L: {
		{{2, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{0, 0}, {0, 1}, {0, 2}, {1, 2}},
		{{0, 0}, {1, 0}, {2, 0}, {0, 1}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
	Unit: {
		{{0, 0}},
	},
}

var tetrominoes = []Kind{I, O, T, S, Z, J, L}

// Kinds returns the seven tetromino kinds in catalog order.
func Kinds() []Kind {
	return append([]Kind(nil), tetrominoes...)
}

// Rotations returns the rotation states of k: four for tetrominoes, one for
// Unit. The returned slices are shared and must not be modified.
func Rotations(k Kind) [][]Offset {
	if !k.Valid() {
		return nil
	}
	return table[k]
}

// Valid reports whether k is a catalog kind (including Unit).
func (k Kind) Valid() bool {
	return k >= I && k <= Unit
}

// String returns the kind's letter, or "unit".
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("shape: invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name as produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("shape: unknown kind %q", s)
}

// Size returns the number of cells of a piece of kind k.
func (k Kind) Size() int {
	if k == Unit {
		return 1
	}
	return 4
}

// Validate checks catalog invariants: every tetromino rotation has four
// distinct non-negative offsets inside a 4×4 box touching both axes, the unit
// piece is the single origin cell, and each rotation is the 90° clockwise turn
// of the previous one.
func Validate() error {
	for _, k := range tetrominoes {
		rots := table[k]
		if len(rots) != NumRotations {
			return fmt.Errorf("shape %s: %d rotations, want %d", k, len(rots), NumRotations)
		}
		for r, offs := range rots {
			if err := checkRotation(offs); err != nil {
				return fmt.Errorf("shape %s rotation %d: %w", k, r, err)
			}
			next := rots[(r+1)%NumRotations]
			if !sameCells(turn(offs), next) {
				return fmt.Errorf("shape %s: rotation %d is not a 90° turn of rotation %d", k, (r+1)%NumRotations, r)
			}
		}
	}
	if u := table[Unit]; len(u) != 1 || len(u[0]) != 1 || u[0][0] != (Offset{}) {
		return fmt.Errorf("shape unit: want a single rotation [(0,0)]")
	}
	return nil
}

func checkRotation(offs []Offset) error {
	if len(offs) != 4 {
		return fmt.Errorf("%d cells, want 4", len(offs))
	}
	seen := make(map[Offset]bool, len(offs))
	minX, minY := 4, 4
	for _, o := range offs {
		if o.DX < 0 || o.DY < 0 || o.DX > 3 || o.DY > 3 {
			return fmt.Errorf("offset %v outside the 4x4 box", o)
		}
		if seen[o] {
			return fmt.Errorf("duplicate offset %v", o)
		}
		seen[o] = true
		minX, minY = min(minX, o.DX), min(minY, o.DY)
	}
	if minX != 0 || minY != 0 {
		return fmt.Errorf("offsets not normalised to the origin")
	}
	return nil
}

// turn rotates offsets 90° clockwise (y down) and renormalises them.
func turn(offs []Offset) []Offset {
	out := make([]Offset, len(offs))
	minX, minY := 0, 0
	for i, o := range offs {
		out[i] = Offset{DX: -o.DY, DY: o.DX}
		if i == 0 || out[i].DX < minX {
			minX = out[i].DX
		}
		if i == 0 || out[i].DY < minY {
			minY = out[i].DY
		}
	}
	for i := range out {
		out[i].DX -= minX
		out[i].DY -= minY
	}
	return out
}

func sameCells(a, b []Offset) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[Offset]bool, len(a))
	for _, o := range a {
		set[o] = true
	}
	for _, o := range b {
		if !set[o] {
			return false
		}
	}
	return true
}
