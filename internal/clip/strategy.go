package clip

import "github.com/kearry/mca/internal/types"

// Strategies returns the ordered extraction catalog, tightest timing
// first. The prior weight reflects how likely a cut with that timing is
// to be centered on the quote; the verifier scales its confidence by it.
func Strategies() []types.Strategy {
	return []types.Strategy{
		{Name: "exact", StartOffset: 0, EndOffset: 0, ExtraPadding: 0, PriorWeight: 1.0},
		{Name: "wide-2s", StartOffset: -2, EndOffset: 2, ExtraPadding: 1, PriorWeight: 0.9},
		{Name: "wide-5s", StartOffset: -5, EndOffset: 5, ExtraPadding: 2, PriorWeight: 0.8},
		{Name: "wide-10s", StartOffset: -10, EndOffset: 10, ExtraPadding: 3, PriorWeight: 0.7},
		{Name: "wide-30s", StartOffset: -30, EndOffset: 30, ExtraPadding: 5, PriorWeight: 0.6},
	}
}

func priorWeight(strategy string) float64 {
	for _, s := range Strategies() {
		if s.Name == strategy {
			return s.PriorWeight
		}
	}
	return 0.5
}
