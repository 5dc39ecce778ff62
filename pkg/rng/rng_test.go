package rng

import (
	"hash/fnv"
	"testing"
	"time"
)

func TestHashMatchesFNV1a(t *testing.T) {
	inputs := []string{"", "a", "foobar", "octocat|1234|2026-10-17", "ünïcödé"}
	for _, in := range inputs {
		h := fnv.New32a()
		h.Write([]byte(in))
		if got, want := Hash(in), h.Sum32(); got != want {
			t.Errorf("Hash(%q) = %#x, want %#x", in, got, want)
		}
	}
}

func TestHashKnownVectors(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0x811c9dc5},
		{"a", 0xe40c292c},
		{"foobar", 0xbf9cf968},
	}
	for _, tt := range tests {
		if got := Hash(tt.in); got != tt.want {
			t.Errorf("Hash(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestNewReproducible(t *testing.T) {
	for _, seed := range []uint32{0, 1, 42, 0xFFFFFFFF} {
		a, b := New(seed), New(seed)
		for i := range 1000 {
			if x, y := a(), b(); x != y {
				t.Fatalf("seed %d: draw %d differs: %v != %v", seed, i, x, y)
			}
		}
	}
}

func TestNewRange(t *testing.T) {
	next := New(7)
	for i := range 10000 {
		v := next()
		if v < 0 || v >= 1 {
			t.Fatalf("draw %d = %v, want [0,1)", i, v)
		}
	}
}

func TestNewDistinctSeeds(t *testing.T) {
	a, b := New(1), New(2)
	same := 0
	for range 100 {
		if a() == b() {
			same++
		}
	}
	if same > 1 {
		t.Errorf("seeds 1 and 2 agree on %d of 100 draws", same)
	}
}

func TestSourcesAreIndependent(t *testing.T) {
	a := New(99)
	first := []float64{a(), a(), a()}

	// Interleaving another source must not disturb a fresh one.
	b := New(99)
	other := New(100)
	for i, want := range first {
		other()
		if got := b(); got != want {
			t.Errorf("draw %d = %v, want %v", i, got, want)
		}
	}
}

func TestIntn(t *testing.T) {
	next := New(3)
	counts := make([]int, 5)
	for range 5000 {
		i := next.Intn(5)
		if i < 0 || i >= 5 {
			t.Fatalf("Intn(5) = %d", i)
		}
		counts[i]++
	}
	for i, c := range counts {
		if c < 800 || c > 1200 {
			t.Errorf("bucket %d drawn %d times, want roughly 1000", i, c)
		}
	}
}

func TestIntnPanicsOnZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Intn(0) did not panic")
		}
	}()
	New(1).Intn(0)
}

func TestBaseSeed(t *testing.T) {
	day := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	later := day.Add(10 * time.Hour)

	if BaseSeed("octocat", 10, day) != BaseSeed("octocat", 10, later) {
		t.Error("BaseSeed should only depend on the calendar day")
	}
	if BaseSeed("octocat", 10, day) == BaseSeed("octocat", 11, day) {
		t.Error("BaseSeed should change with the total")
	}
	if BaseSeed("octocat", 10, day) == BaseSeed("hubot", 10, day) {
		t.Error("BaseSeed should change with the identity")
	}
	if got, want := BaseSeed("octocat", 10, day), Hash("octocat|10|2026-10-17"); got != want {
		t.Errorf("BaseSeed = %#x, want %#x", got, want)
	}
}

func TestRunSeed(t *testing.T) {
	if RunSeed(5, 0) != 5 {
		t.Error("run 0 should use the base seed")
	}
	base := uint32(0xFFFFFFFF)
	if got, want := RunSeed(base, 1), base+RunPrime; got != want {
		t.Errorf("RunSeed wraps: got %#x, want %#x", got, want)
	}
	seen := map[uint32]bool{}
	for i := range 10 {
		s := RunSeed(1234, i)
		if seen[s] {
			t.Fatalf("run %d reuses seed %#x", i, s)
		}
		seen[s] = true
	}
}
