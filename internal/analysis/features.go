package analysis

import "strings"

// DefaultComplexityThreshold is the encoded payload length at which an image
// counts as high complexity.
const DefaultComplexityThreshold = 100_000

type Complexity string

const (
	ComplexityLow  Complexity = "low"
	ComplexityHigh Complexity = "high"
)

type ColorProfile string

const (
	ColorWarm    ColorProfile = "warm"
	ColorNeutral ColorProfile = "neutral"
)

// Features are the coarse, simulated properties derived from a payload.
// None of them carry real visual signal.
type Features struct {
	Complexity         Complexity   `json:"complexity"`
	ColorProfile       ColorProfile `json:"colorProfile"`
	EstimatedItemCount int          `json:"estimatedItemCount"`
}

// Extractor derives Features from an encoded image payload.
type Extractor struct {
	Threshold int
	Rand      Rand
}

// NewExtractor builds an extractor; threshold <= 0 selects the default.
func NewExtractor(threshold int, rng Rand) *Extractor {
	if threshold <= 0 {
		threshold = DefaultComplexityThreshold
	}
	if rng == nil {
		rng = NewRand(0)
	}
	return &Extractor{Threshold: threshold, Rand: rng}
}

// Extract never fails; callers reject empty payloads beforehand.
func (e *Extractor) Extract(payload string) Features {
	threshold := e.Threshold
	if threshold <= 0 {
		threshold = DefaultComplexityThreshold
	}

	complexity := ComplexityLow
	if len(payload) >= threshold {
		complexity = ComplexityHigh
	}

	// Every data-URL encoded image passes this check, so in practice the
	// profile is constant.
	profile := ColorNeutral
	if strings.Contains(payload, "data:image") {
		profile = ColorWarm
	}

	return Features{
		Complexity:         complexity,
		ColorProfile:       profile,
		EstimatedItemCount: e.Rand.IntN(3) + 1,
	}
}
