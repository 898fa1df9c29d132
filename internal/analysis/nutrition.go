package analysis

import (
	"math"

	"calorievision-backend/internal/catalog"
)

const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// MacroSplit is the share of a portion's calories coming from each macro,
// in whole percent.
type MacroSplit struct {
	ProteinPct int `json:"proteinPct"`
	CarbsPct   int `json:"carbsPct"`
	FatPct     int `json:"fatPct"`
}

// SplitFor computes the energy split for a record. Rounding is per macro, so
// the three values need not sum to 100.
func SplitFor(r catalog.FoodRecord) MacroSplit {
	if r.Calories <= 0 {
		return MacroSplit{}
	}
	pct := func(grams, kcalPerGram int) int {
		return int(math.Round(float64(grams*kcalPerGram) / float64(r.Calories) * 100))
	}
	return MacroSplit{
		ProteinPct: pct(r.Protein, kcalPerGramProtein),
		CarbsPct:   pct(r.Carbs, kcalPerGramCarbs),
		FatPct:     pct(r.Fat, kcalPerGramFat),
	}
}
