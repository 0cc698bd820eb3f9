package assign

import (
	"math"
	"math/rand/v2"
	"testing"
)

func fixedSampler(seed uint64) *Sampler {
	return NewSamplerFrom(rand.New(rand.NewPCG(seed, seed+1)))
}

func TestWeightFor(t *testing.T) {
	tests := []struct {
		usage int
		want  float64
	}{
		{0, 1},
		{1, 0.25},
		{2, 1.0 / 9},
		{9, 0.01},
	}
	for _, tt := range tests {
		if got := weightFor(tt.usage); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("weightFor(%d) = %v, want %v", tt.usage, got, tt.want)
		}
	}
}

func TestPickOneEmpty(t *testing.T) {
	s := fixedSampler(1)
	if _, ok := s.PickOne(nil); ok {
		t.Error("expected ok=false for empty pool")
	}
}

func TestPickOneSingle(t *testing.T) {
	s := fixedSampler(1)
	for range 100 {
		idx, ok := s.PickOne([]int{42})
		if !ok || idx != 0 {
			t.Fatalf("expected index 0, got %d (ok=%v)", idx, ok)
		}
	}
}

// A less-used item must win strictly more often than a more-used one.
func TestPickOneFavorsLessUsed(t *testing.T) {
	s := fixedSampler(7)
	const trials = 10000

	counts := [2]int{}
	for range trials {
		idx, ok := s.PickOne([]int{0, 3})
		if !ok {
			t.Fatal("unexpected empty pick")
		}
		counts[idx]++
	}

	if counts[0] <= counts[1] {
		t.Errorf("expected usage-0 item to dominate: got %d vs %d", counts[0], counts[1])
	}
	// Weights are 1 and 1/16, so the fresh item should take roughly 94%
	// of draws; leave generous slack for sampling noise.
	if frac := float64(counts[0]) / trials; frac < 0.90 {
		t.Errorf("usage-0 item won only %.1f%% of draws", frac*100)
	}
}

func TestPickOneEqualWeightsRoughlyUniform(t *testing.T) {
	s := fixedSampler(11)
	const trials = 10000

	counts := [4]int{}
	for range trials {
		idx, _ := s.PickOne([]int{5, 5, 5, 5})
		counts[idx]++
	}
	for i, c := range counts {
		if c < trials/8 {
			t.Errorf("index %d drawn only %d of %d times", i, c, trials)
		}
	}
}

func TestPickManyBounds(t *testing.T) {
	s := fixedSampler(3)
	tests := []struct {
		name    string
		usages  []int
		n       int
		wantLen int
	}{
		{"empty pool", nil, 3, 0},
		{"zero count", []int{1, 2}, 0, 0},
		{"pool smaller than count", []int{0, 1}, 5, 2},
		{"pool equals count", []int{0, 1, 2}, 3, 3},
		{"pool larger than count", []int{0, 1, 2, 3, 4}, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.PickMany(tt.usages, tt.n)
			if len(got) != tt.wantLen {
				t.Fatalf("got %d picks, want %d", len(got), tt.wantLen)
			}
			seen := map[int]bool{}
			for _, idx := range got {
				if idx < 0 || idx >= len(tt.usages) {
					t.Errorf("index %d out of range", idx)
				}
				if seen[idx] {
					t.Errorf("duplicate index %d in one call", idx)
				}
				seen[idx] = true
			}
		})
	}
}

func TestPickManyNoDuplicatesUnderPressure(t *testing.T) {
	s := fixedSampler(17)
	usages := make([]int, 20)
	for range 200 {
		got := s.PickMany(usages, 20)
		if len(got) != 20 {
			t.Fatalf("expected all 20 picked, got %d", len(got))
		}
		seen := map[int]bool{}
		for _, idx := range got {
			if seen[idx] {
				t.Fatalf("duplicate index %d", idx)
			}
			seen[idx] = true
		}
	}
}

func TestShufflePreservesMultiset(t *testing.T) {
	s := fixedSampler(23)
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	sum := 0
	for _, v := range items {
		sum += v
	}
	s.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	got := 0
	seen := map[int]bool{}
	for _, v := range items {
		got += v
		if seen[v] {
			t.Fatalf("duplicate value %d after shuffle", v)
		}
		seen[v] = true
	}
	if got != sum {
		t.Errorf("shuffle changed contents: sum %d, want %d", got, sum)
	}
}
