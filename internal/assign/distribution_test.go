package assign

import (
	"slices"
	"testing"
)

func labels(ds []Distribution) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Label
	}
	return out
}

func TestValidDistributions(t *testing.T) {
	tests := []struct {
		name             string
		easy, med, hard  int
		want             []string
	}{
		{"only easy pool", 3, 0, 0, []string{"2 Easy"}},
		{"one easy one medium", 1, 1, 0, []string{"1 Easy, 1 Medium"}},
		{"no easy, deep medium and hard", 0, 2, 2, []string{"1 Hard"}},
		{"empty pools", 0, 0, 0, nil},
		{"all levels stocked", 3, 2, 1, []string{"2 Easy", "1 Easy, 1 Medium", "1 Hard"}},
		// Overlapping rules push "1 Easy, 1 Medium" twice, doubling its
		// share of the candidate weight. The standalone rule fires first,
		// then the combined rule appends both patterns.
		{"easy and medium, no hard", 2, 1, 0, []string{"1 Easy, 1 Medium", "2 Easy", "1 Easy, 1 Medium"}},
		{"single easy", 1, 0, 0, nil},
		{"single hard only", 0, 0, 1, nil},
		{"medium only", 0, 3, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labels(ValidDistributions(tt.easy, tt.med, tt.hard))
			if !slices.Equal(got, tt.want) {
				t.Errorf("ValidDistributions(%d,%d,%d) = %v, want %v",
					tt.easy, tt.med, tt.hard, got, tt.want)
			}
		})
	}
}

func TestDistributionCounts(t *testing.T) {
	if TwoEasy.Total() != 2 || TwoEasy.Easy != 2 {
		t.Errorf("unexpected shape for %q: %+v", TwoEasy.Label, TwoEasy)
	}
	if EasyPlusMedium.Total() != 2 || EasyPlusMedium.Easy != 1 || EasyPlusMedium.Medium != 1 {
		t.Errorf("unexpected shape for %q: %+v", EasyPlusMedium.Label, EasyPlusMedium)
	}
	if OneHard.Total() != 1 || OneHard.Hard != 1 {
		t.Errorf("unexpected shape for %q: %+v", OneHard.Label, OneHard)
	}
}
