package insights

import (
	"fmt"

	"moneta/internal/core"
	"moneta/internal/currency"
	"moneta/internal/log"
)

// Recurring-load severity bands as a share of average monthly income.
const (
	recurringLoadCriticalPct = 50.0
	recurringLoadWarningPct  = 30.0
)

// RecurringGenerator reports the combined monthly-equivalent cost of the
// active recurring series, and how big a bite it takes out of income.
type RecurringGenerator struct {
	conv   currency.Converter
	logger *log.Logger
}

func NewRecurringGenerator(conv currency.Converter, logger *log.Logger) *RecurringGenerator {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &RecurringGenerator{
		conv:   conv,
		logger: logger.WithComponent(log.ComponentInsights),
	}
}

func (g *RecurringGenerator) Name() string { return "recurring" }

func (g *RecurringGenerator) Generate(gc GeneratorContext) []core.Insight {
	var load core.Money
	active := 0
	for _, series := range gc.Recurring {
		if !series.Active {
			continue
		}
		active++
		load = load.Add(MonthlyEquivalent(series, gc.BaseCurrency, g.conv, g.logger))
	}
	if active == 0 {
		return nil
	}

	in := core.Insight{
		ID:       newInsightID(),
		Type:     core.InsightTypeRecurringLoad,
		Title:    "Recurring commitments",
		Subtitle: fmt.Sprintf("%d active series cost %s per month", active, load.Format(gc.BaseCurrency)),
		Metric: core.Metric{
			Value:          load.Units(),
			FormattedValue: load.Format(gc.BaseCurrency),
			Currency:       gc.BaseCurrency,
		},
		Severity: core.SeverityInfo,
		DetailData: map[string]string{
			"active_series": fmt.Sprintf("%d", active),
		},
	}

	// Band against average monthly income when the buckets provide one.
	if avgIncome := averageMonthlyIncome(gc.Buckets); avgIncome.Cents > 0 {
		share := float64(load.Cents) / float64(avgIncome.Cents) * 100
		in.Subtitle = fmt.Sprintf("%d active series take %.0f%% of your monthly income", active, share)
		switch {
		case share > recurringLoadCriticalPct:
			in.Severity = core.SeverityCritical
		case share > recurringLoadWarningPct:
			in.Severity = core.SeverityWarning
		}
	}

	return []core.Insight{in}
}

// averageMonthlyIncome averages bucket income normalized to months. Buckets
// with zero income still count toward the denominator.
func averageMonthlyIncome(buckets []core.PeriodBucket) core.Money {
	if len(buckets) == 0 {
		return core.Money{}
	}
	var total int64
	var months float64
	for _, b := range buckets {
		total += b.Income.Cents
		months += b.PeriodEnd.Sub(b.PeriodStart).Hours() / 24 / 30
	}
	if months <= 0 {
		return core.Money{}
	}
	return core.Money{Cents: int64(float64(total)/months + 0.5)}
}
