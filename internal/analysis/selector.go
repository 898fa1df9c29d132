package analysis

import (
	"sort"

	"calorievision-backend/internal/catalog"
)

const (
	// WindowSize is how many top-ranked candidates the final pick draws from.
	WindowSize        = 5
	complexityPenalty = 5
	noiseMin          = -4
	noiseSpan         = 8 // noise in [noiseMin, noiseMin+noiseSpan)
)

// Candidate is a catalog record with its per-request adjusted confidence.
type Candidate struct {
	Record   catalog.FoodRecord
	Adjusted int
}

// Selector ranks catalog records by noisy confidence and picks one of the
// top WindowSize uniformly.
type Selector struct {
	Rand Rand
}

// NewSelector builds a selector around rng.
func NewSelector(rng Rand) *Selector {
	if rng == nil {
		rng = NewRand(0)
	}
	return &Selector{Rand: rng}
}

// Rank returns every record with its adjusted confidence, highest first.
// Ties keep catalog order.
func (s *Selector) Rank(features Features, records []catalog.FoodRecord) []Candidate {
	penalty := 0
	if features.Complexity == ComplexityHigh {
		penalty = complexityPenalty
	}

	ranked := make([]Candidate, len(records))
	for i, r := range records {
		noise := s.Rand.IntN(noiseSpan) + noiseMin
		ranked[i] = Candidate{Record: r, Adjusted: r.Confidence - penalty + noise}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Adjusted > ranked[j].Adjusted
	})
	return ranked
}

// Select returns a deep copy of the chosen record with Confidence replaced by
// its adjusted value.
func (s *Selector) Select(features Features, records []catalog.FoodRecord) (catalog.FoodRecord, error) {
	if len(records) == 0 {
		return catalog.FoodRecord{}, ErrEmptyCatalog
	}

	ranked := s.Rank(features, records)
	window := min(WindowSize, len(ranked))
	chosen := ranked[s.Rand.IntN(window)]

	out := chosen.Record.Clone()
	out.Confidence = chosen.Adjusted
	return out, nil
}
