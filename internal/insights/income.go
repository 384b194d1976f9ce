package insights

import (
	"fmt"

	"moneta/internal/core"
)

// IncomeGenerator reports how income moved against the previous period.
// Direction maps inversely to spending: rising income is the positive case.
type IncomeGenerator struct{}

func NewIncomeGenerator() *IncomeGenerator {
	return &IncomeGenerator{}
}

func (g *IncomeGenerator) Name() string { return "income" }

func (g *IncomeGenerator) Generate(gc GeneratorContext) []core.Insight {
	n := len(gc.Buckets)
	if n < 2 {
		return nil
	}
	cur, prev := gc.Buckets[n-1], gc.Buckets[n-2]

	pct, ok := percentChange(prev.Income, cur.Income)
	if !ok {
		return nil
	}

	direction := trendDirection(pct)
	severity := core.SeverityInfo
	title := "Income is steady"
	switch direction {
	case core.TrendUp:
		severity = core.SeverityPositive
		title = "Income is up"
	case core.TrendDown:
		severity = core.SeverityWarning
		title = "Income is down"
	}

	change := cur.Income.Sub(prev.Income)
	return []core.Insight{{
		ID:       newInsightID(),
		Type:     core.InsightTypeIncomeTrend,
		Title:    title,
		Subtitle: fmt.Sprintf("%s vs %s", cur.Label, prev.Label),
		Metric: core.Metric{
			Value:          cur.Income.Units(),
			FormattedValue: cur.Income.Format(gc.BaseCurrency),
			Currency:       gc.BaseCurrency,
		},
		Trend: &core.Trend{
			Direction:        direction,
			ChangePercent:    &pct,
			ChangeAbsolute:   &change,
			ComparisonPeriod: prev.Label,
		},
		Severity: severity,
	}}
}
