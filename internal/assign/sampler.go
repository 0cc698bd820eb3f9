package assign

import (
	"math/rand/v2"
	"slices"
	"sync"
)

// Sampler draws items with probability inversely proportional to how often
// they have been handed out before. An item with prior usage u gets weight
// 1/(u+1)^2, so fresh items dominate and repeats fall off quickly.
//
// The mutex makes one Sampler safe to share across request goroutines;
// rand.Rand itself is not.
type Sampler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSampler returns a sampler with a nondeterministic source.
func NewSampler() *Sampler {
	return &Sampler{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSamplerFrom uses the given source. Tests pass a fixed-seed PCG to make
// distributional assertions repeatable.
func NewSamplerFrom(rnd *rand.Rand) *Sampler {
	return &Sampler{rnd: rnd}
}

func weightFor(usage int) float64 {
	f := float64(usage + 1)
	return 1 / (f * f)
}

// PickOne draws one weighted index over usages: a uniform value in
// [0, totalWeight) is reduced by each weight in turn and the index that
// drives it to zero or below is chosen. ok is false when usages is empty.
func (s *Sampler) PickOne(usages []int) (idx int, ok bool) {
	if len(usages) == 0 {
		return 0, false
	}
	total := 0.0
	for _, u := range usages {
		total += weightFor(u)
	}
	s.mu.Lock()
	r := s.rnd.Float64() * total
	s.mu.Unlock()
	for i, u := range usages {
		r -= weightFor(u)
		if r <= 0 {
			return i, true
		}
	}
	// Float round-off can leave a sliver of r; the last item owns it.
	return len(usages) - 1, true
}

// PickMany draws up to n distinct indices without replacement. Each draw
// reweighs the shrinking remainder, and the loop stops early if the pool
// empties before n picks.
func (s *Sampler) PickMany(usages []int, n int) []int {
	remaining := make([]int, len(usages))
	for i := range remaining {
		remaining[i] = i
	}
	var picked []int
	for len(picked) < n && len(remaining) > 0 {
		w := make([]int, len(remaining))
		for i, j := range remaining {
			w[i] = usages[j]
		}
		k, ok := s.PickOne(w)
		if !ok {
			break
		}
		picked = append(picked, remaining[k])
		remaining = slices.Delete(remaining, k, k+1)
	}
	return picked
}

// Shuffle runs an unbiased Fisher-Yates permutation over n items.
func (s *Sampler) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(n, swap)
}
