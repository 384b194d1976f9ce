package insights

import (
	"fmt"

	"moneta/internal/core"
)

// Savings-rate severity bands: above 20% is healthy, 10-20% is thin,
// below 10% is critical.
const (
	savingsRatePositivePct = 20.0
	savingsRateWarningPct  = 10.0
)

// SavingsGenerator reports the savings rate for the window: net flow as a
// share of income. No income in the window means nothing to report.
type SavingsGenerator struct{}

func NewSavingsGenerator() *SavingsGenerator {
	return &SavingsGenerator{}
}

func (g *SavingsGenerator) Name() string { return "savings" }

func (g *SavingsGenerator) Generate(gc GeneratorContext) []core.Insight {
	income := gc.Summary.TotalIncome
	if income.Cents <= 0 {
		return nil
	}

	rate := float64(gc.Summary.NetFlow().Cents) / float64(income.Cents) * 100

	severity := core.SeverityCritical
	title := "Low savings rate"
	switch {
	case rate > savingsRatePositivePct:
		severity = core.SeverityPositive
		title = "Healthy savings rate"
	case rate >= savingsRateWarningPct:
		severity = core.SeverityWarning
		title = "Savings rate could be higher"
	}

	in := core.Insight{
		ID:       newInsightID(),
		Type:     core.InsightTypeSavingsRate,
		Title:    title,
		Subtitle: fmt.Sprintf("You kept %.1f%% of your income", rate),
		Metric: core.Metric{
			Value:          rate,
			FormattedValue: fmt.Sprintf("%.1f%%", rate),
			Unit:           "%",
		},
		Severity: severity,
	}

	// Rate movement against the previous bucket, when income allows it.
	if n := len(gc.Buckets); n >= 2 {
		cur, prev := gc.Buckets[n-1], gc.Buckets[n-2]
		if cur.Income.Cents > 0 && prev.Income.Cents > 0 {
			curRate := float64(cur.NetFlow().Cents) / float64(cur.Income.Cents) * 100
			prevRate := float64(prev.NetFlow().Cents) / float64(prev.Income.Cents) * 100
			diff := curRate - prevRate
			in.Trend = &core.Trend{
				Direction:        trendDirection(diff),
				ChangePercent:    &diff,
				ComparisonPeriod: prev.Label,
			}
		}
	}

	return []core.Insight{in}
}
