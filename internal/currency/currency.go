// Package currency provides amount conversion between currencies.
//
// Conversion is a pure lookup: a Converter either knows a rate or it does not.
// Callers decide what a missing rate means; the insights engine falls back to
// the raw amount and logs a warning rather than failing a computation.
package currency

import (
	"moneta/internal/core"
)

// Converter converts an amount between currencies. The boolean reports
// whether a rate was known; when false the returned amount is undefined.
type Converter interface {
	Convert(amount core.Money, from, to string) (core.Money, bool)
}

// RateTable is a static in-memory rate table keyed by "FROM/TO".
type RateTable struct {
	rates map[string]float64
}

// NewRateTable builds a converter from a rate map, e.g. {"USD/EUR": 0.92}.
func NewRateTable(rates map[string]float64) *RateTable {
	t := &RateTable{rates: make(map[string]float64, len(rates))}
	for k, v := range rates {
		t.rates[k] = v
	}
	return t
}

// Convert applies the rate for from->to. Same-currency conversion is the
// identity. When only the inverse pair is known, its reciprocal is used.
func (t *RateTable) Convert(amount core.Money, from, to string) (core.Money, bool) {
	if from == to {
		return amount, true
	}
	if rate, ok := t.rates[from+"/"+to]; ok {
		return amount.MulFloat(rate), true
	}
	if inv, ok := t.rates[to+"/"+from]; ok && inv != 0 {
		return amount.MulFloat(1 / inv), true
	}
	return core.Money{}, false
}

// SetRate adds or replaces a rate for the pair from->to.
func (t *RateTable) SetRate(from, to string, rate float64) {
	t.rates[from+"/"+to] = rate
}
