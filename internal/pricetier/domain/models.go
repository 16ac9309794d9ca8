package domain

import (
	"github.com/shopspring/decimal"
)

// Tier is one case-count range of a tiered service.
//
// Max is inclusive and nil for an open-ended last tier. A tier either
// scales the unit price by Multiplier or replaces it with Price.
type Tier struct {
	Min        int64            `json:"min"`
	Max        *int64           `json:"max,omitempty"`
	Multiplier *decimal.Decimal `json:"multiplier,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
}

// Contains reports whether cases falls within [Min, Max].
func (t Tier) Contains(cases int64) bool {
	if cases < t.Min {
		return false
	}
	return t.Max == nil || cases <= *t.Max
}

// Cost prices one order that fell into the tier.
func (t Tier) Cost(unitPrice decimal.Decimal) decimal.Decimal {
	if t.Price != nil {
		return *t.Price
	}
	if t.Multiplier != nil {
		return unitPrice.Mul(*t.Multiplier)
	}
	return decimal.Zero
}

// Config is a tier table sorted by Min.
type Config []Tier

// Resolution is the outcome of matching an order against a Config.
type Resolution struct {
	Applies         bool     `json:"applies"`
	TotalCases      int64    `json:"total_cases"`
	Tier            *Tier    `json:"tier,omitempty"`
	ExcludedPresent []string `json:"excluded_present,omitempty"`
}
