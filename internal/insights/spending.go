package insights

import (
	"fmt"

	"moneta/internal/core"
)

// Spike detection needs both a relative threshold and an absolute floor so a
// near-zero baseline cannot flag every ordinary month.
const (
	spikeRatioThreshold = 1.5
	spikeFloorCents     = 100 * 100 // 100 base units
)

// SpendingGenerator reports the expense trend against the previous period,
// spending spikes against the historical average, and the top expense
// category for the window.
type SpendingGenerator struct{}

func NewSpendingGenerator() *SpendingGenerator {
	return &SpendingGenerator{}
}

func (g *SpendingGenerator) Name() string { return "spending" }

func (g *SpendingGenerator) Generate(gc GeneratorContext) []core.Insight {
	var out []core.Insight
	if in := g.trendInsight(gc); in != nil {
		out = append(out, *in)
	}
	if in := g.spikeInsight(gc); in != nil {
		out = append(out, *in)
	}
	if in := g.topCategoryInsight(gc); in != nil {
		out = append(out, *in)
	}
	return out
}

// trendInsight compares the latest bucket's expenses with the previous
// bucket's. Fewer than two buckets means nothing to report.
func (g *SpendingGenerator) trendInsight(gc GeneratorContext) *core.Insight {
	n := len(gc.Buckets)
	if n < 2 {
		return nil
	}
	cur, prev := gc.Buckets[n-1], gc.Buckets[n-2]

	pct, ok := percentChange(prev.Expenses, cur.Expenses)
	if !ok {
		return nil
	}

	direction := trendDirection(pct)
	severity := core.SeverityInfo
	title := "Spending is steady"
	switch direction {
	case core.TrendUp:
		severity = core.SeverityWarning
		title = "Spending is up"
	case core.TrendDown:
		severity = core.SeverityPositive
		title = "Spending is down"
	}

	change := cur.Expenses.Sub(prev.Expenses)
	return &core.Insight{
		ID:       newInsightID(),
		Type:     core.InsightTypeSpendingTrend,
		Title:    title,
		Subtitle: fmt.Sprintf("%s vs %s", cur.Label, prev.Label),
		Metric: core.Metric{
			Value:          cur.Expenses.Units(),
			FormattedValue: cur.Expenses.Format(gc.BaseCurrency),
			Currency:       gc.BaseCurrency,
		},
		Trend: &core.Trend{
			Direction:        direction,
			ChangePercent:    &pct,
			ChangeAbsolute:   &change,
			ComparisonPeriod: prev.Label,
		},
		Severity: severity,
	}
}

// spikeInsight flags the latest bucket when its expenses exceed 1.5x the
// historical average and the average itself clears the absolute floor.
func (g *SpendingGenerator) spikeInsight(gc GeneratorContext) *core.Insight {
	n := len(gc.Buckets)
	if n < 2 {
		return nil
	}
	cur := gc.Buckets[n-1]

	var histCents int64
	for _, b := range gc.Buckets[:n-1] {
		histCents += b.Expenses.Cents
	}
	avg := core.Money{Cents: histCents / int64(n-1)}

	if avg.Cents <= spikeFloorCents {
		return nil
	}
	if float64(cur.Expenses.Cents) <= float64(avg.Cents)*spikeRatioThreshold {
		return nil
	}

	pct, _ := percentChange(avg, cur.Expenses)
	return &core.Insight{
		ID:       newInsightID(),
		Type:     core.InsightTypeSpendingSpike,
		Title:    "Unusually high spending",
		Subtitle: fmt.Sprintf("%s is well above your average of %s", cur.Label, avg.Format(gc.BaseCurrency)),
		Metric: core.Metric{
			Value:          cur.Expenses.Units(),
			FormattedValue: cur.Expenses.Format(gc.BaseCurrency),
			Currency:       gc.BaseCurrency,
		},
		Trend: &core.Trend{
			Direction:        core.TrendUp,
			ChangePercent:    &pct,
			ComparisonPeriod: "historical average",
		},
		Severity: core.SeverityCritical,
	}
}

// topCategoryInsight names the biggest expense category in the window,
// preferring precomputed category totals when the orchestrator supplied them.
func (g *SpendingGenerator) topCategoryInsight(gc GeneratorContext) *core.Insight {
	totals := gc.CategoryTotals
	if totals == nil {
		byCat := map[string]int64{}
		for _, tx := range gc.Windowed {
			if tx.Type == core.Expense {
				byCat[tx.Category] += tx.EffectiveAmount().Cents
			}
		}
		for name, cents := range byCat {
			totals = append(totals, core.CategoryAggregate{
				CategoryName:  name,
				TotalExpenses: core.Money{Cents: cents},
			})
		}
	}

	var top *core.CategoryAggregate
	for i := range totals {
		if top == nil || totals[i].TotalExpenses.Cents > top.TotalExpenses.Cents {
			top = &totals[i]
		}
	}
	if top == nil || top.TotalExpenses.Cents <= 0 {
		return nil
	}

	var share float64
	if gc.Summary.TotalExpenses.Cents > 0 {
		share = float64(top.TotalExpenses.Cents) / float64(gc.Summary.TotalExpenses.Cents) * 100
	}

	return &core.Insight{
		ID:       newInsightID(),
		Type:     core.InsightTypeTopCategory,
		Title:    "Top spending category",
		Subtitle: fmt.Sprintf("%s accounts for %.0f%% of your spending", top.CategoryName, share),
		Metric: core.Metric{
			Value:          top.TotalExpenses.Units(),
			FormattedValue: top.TotalExpenses.Format(gc.BaseCurrency),
			Currency:       gc.BaseCurrency,
		},
		Severity: core.SeverityInfo,
		Category: top.CategoryName,
	}
}
