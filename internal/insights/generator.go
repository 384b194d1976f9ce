package insights

import (
	"math"

	"github.com/google/uuid"

	"moneta/internal/core"
	"moneta/internal/currency"
	"moneta/internal/log"
)

// GeneratorContext carries the shared, read-only inputs for one generator
// pass. All generators in a pass see the same bucket slice and summary, so
// no generator rescans what another already aggregated.
type GeneratorContext struct {
	// Windowed holds the transactions inside the requested window.
	Windowed []core.Transaction
	// All is the full transaction history available to the caller.
	All          []core.Transaction
	Summary      core.PeriodSummary
	Buckets      []core.PeriodBucket
	Granularity  core.Granularity
	BaseCurrency string
	Recurring    []core.RecurringSeries
	// CategoryTotals is precomputed when the aggregate store covered the
	// window; nil means generators derive category totals from Windowed.
	CategoryTotals []core.CategoryAggregate
	// AccountBalance looks up the current balance of an account.
	AccountBalance func(accountID int64) (core.Money, bool)
}

// Generator produces zero or more insights for one topical domain.
// Generators do not mutate shared state and do not call each other; an empty
// result means "nothing to report" and is a normal outcome.
type Generator interface {
	Name() string
	Generate(gc GeneratorContext) []core.Insight
}

// trendDeadbandPct is the noise filter for trend direction: changes within
// ±2% read as flat.
const trendDeadbandPct = 2.0

func trendDirection(changePct float64) core.TrendDirection {
	switch {
	case changePct > trendDeadbandPct:
		return core.TrendUp
	case changePct < -trendDeadbandPct:
		return core.TrendDown
	}
	return core.TrendFlat
}

// percentChange returns the relative change from prev to cur in percent.
// A zero base has no meaningful percentage; ok is false then.
func percentChange(prev, cur core.Money) (float64, bool) {
	if prev.Cents == 0 {
		return 0, false
	}
	return float64(cur.Cents-prev.Cents) / math.Abs(float64(prev.Cents)) * 100, true
}

func newInsightID() string {
	return uuid.NewString()
}

// monthlyEquivalentFactor normalizes an irregular cadence to a common
// monthly unit.
func monthlyEquivalentFactor(c core.Cadence) float64 {
	switch c {
	case core.Daily:
		return 30
	case core.Weekly:
		return 4.33
	case core.Yearly:
		return 1.0 / 12
	}
	return 1 // monthly
}

// MonthlyEquivalent converts a recurring amount to its base-currency monthly
// figure. A missing rate falls back to the raw amount with a logged warning;
// one unknown rate never aborts a computation.
func MonthlyEquivalent(series core.RecurringSeries, base string, conv currency.Converter, logger *log.Logger) core.Money {
	amount := series.Amount
	if conv != nil && series.Currency != base {
		converted, ok := conv.Convert(series.Amount, series.Currency, base)
		if ok {
			amount = converted
		} else if logger != nil {
			logger.Warn("No conversion rate, using raw amount",
				log.FieldCurrency, series.Currency,
				log.FieldOperation, log.OpConvert)
		}
	}
	return amount.MulFloat(monthlyEquivalentFactor(series.Cadence))
}
