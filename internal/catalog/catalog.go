package catalog

import (
	"context"
	"errors"
	"fmt"

	"calorievision-backend/internal/shared/telemetry"
)

var (
	ErrEmpty         = errors.New("catalog is empty")
	ErrInvalidRecord = errors.New("invalid catalog record")
)

// Catalog is a read-only, ordered set of food records. It is safe to share
// between goroutines without synchronization.
type Catalog struct {
	records []FoodRecord
	source  string
}

// Source supplies catalog records from outside the binary.
type Source interface {
	List(ctx context.Context) ([]FoodRecord, error)
}

// Default returns the compiled-in catalog.
func Default() *Catalog {
	return &Catalog{records: cloneAll(defaultRecords), source: "builtin"}
}

// New builds a catalog from records after validating each one.
func New(records []FoodRecord, source string) (*Catalog, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	for i, r := range records {
		if err := validate(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return &Catalog{records: cloneAll(records), source: source}, nil
}

// Load reads the catalog once from src. Any failure falls back to Default,
// so loading never fails.
func Load(ctx context.Context, src Source) *Catalog {
	if src == nil {
		return Default()
	}
	records, err := src.List(ctx)
	if err == nil {
		var c *Catalog
		c, err = New(records, "sql")
		if err == nil {
			telemetry.Info("catalog.loaded", map[string]any{"source": c.source, "entries": c.Len()})
			return c
		}
	}
	telemetry.Error("catalog.fallback", map[string]any{"err": err.Error(), "source": "builtin"})
	return Default()
}

// All returns a copy of every record in catalog order.
func (c *Catalog) All() []FoodRecord {
	return cloneAll(c.records)
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Source names where the records came from ("builtin" or "sql").
func (c *Catalog) Source() string {
	return c.source
}

// Lookup finds a record by exact name.
func (c *Catalog) Lookup(name string) (FoodRecord, bool) {
	for _, r := range c.records {
		if r.Name == name {
			return r.Clone(), true
		}
	}
	return FoodRecord{}, false
}

func validate(r FoodRecord) error {
	switch {
	case r.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidRecord)
	case r.Confidence < 0 || r.Confidence > 100:
		return fmt.Errorf("%w: confidence %d out of range", ErrInvalidRecord, r.Confidence)
	case r.Calories < 0 || r.Protein < 0 || r.Carbs < 0 || r.Fat < 0 || r.Fiber < 0:
		return fmt.Errorf("%w: negative nutrient for %q", ErrInvalidRecord, r.Name)
	}
	return nil
}

func cloneAll(in []FoodRecord) []FoodRecord {
	out := make([]FoodRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
