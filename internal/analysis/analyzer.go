package analysis

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"calorievision-backend/internal/catalog"
)

// DefaultDelay is the artificial processing latency before a result is ready.
const DefaultDelay = 3 * time.Second

// Result is the emitted record (confidence already adjusted) plus the
// features that produced it and its macro energy split.
type Result struct {
	catalog.FoodRecord
	Features Features   `json:"features"`
	Macros   MacroSplit `json:"macros"`
}

// Analyzer runs the simulated pipeline: wait, extract features, select.
type Analyzer struct {
	Catalog   *catalog.Catalog
	Extractor *Extractor
	Selector  *Selector
	Delay     time.Duration
	// Sleep defaults to time.Sleep; tests replace it.
	Sleep func(time.Duration)
}

// NewAnalyzer wires an analyzer whose extractor and selector share rng.
func NewAnalyzer(c *catalog.Catalog, rng Rand, threshold int, delay time.Duration) *Analyzer {
	if c == nil {
		c = catalog.Default()
	}
	if rng == nil {
		rng = NewRand(0)
	}
	return &Analyzer{
		Catalog:   c,
		Extractor: NewExtractor(threshold, rng),
		Selector:  NewSelector(rng),
		Delay:     delay,
		Sleep:     time.Sleep,
	}
}

// Analyze blocks for the configured delay, then returns the selected record.
// Once the delay has begun the call always runs to completion; ctx is only
// checked before starting. Any internal fault is reported as ErrAnalysisFailed.
func (a *Analyzer) Analyze(ctx context.Context, payload string) (res Result, err error) {
	if payload == "" {
		return Result{}, ErrNoImage
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if a.Delay > 0 {
		sleep := a.Sleep
		if sleep == nil {
			sleep = time.Sleep
		}
		sleep(a.Delay)
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = fmt.Errorf("%w: panic: %v", ErrAnalysisFailed, r)
		}
	}()

	features := a.Extractor.Extract(payload)
	record, err := a.Selector.Select(features, a.Catalog.All())
	if err != nil {
		return Result{}, fmt.Errorf("%w: select: %v", ErrAnalysisFailed, err)
	}

	return Result{
		FoodRecord: record,
		Features:   features,
		Macros:     SplitFor(record),
	}, nil
}

// EncodeDataURL renders image bytes the way a browser FileReader would.
func EncodeDataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
