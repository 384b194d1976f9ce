package insights

import (
	"moneta/internal/core"
)

// CashFlowGenerator reports the best and worst periods by net flow. The
// worst period is only reported when it is strictly negative and not the
// same bucket as the best, so a single bucket is never reported twice.
type CashFlowGenerator struct{}

func NewCashFlowGenerator() *CashFlowGenerator {
	return &CashFlowGenerator{}
}

func (g *CashFlowGenerator) Name() string { return "cashflow" }

func (g *CashFlowGenerator) Generate(gc GeneratorContext) []core.Insight {
	if len(gc.Buckets) == 0 {
		return nil
	}

	best, worst := gc.Buckets[0], gc.Buckets[0]
	for _, b := range gc.Buckets[1:] {
		if b.NetFlow().Cents > best.NetFlow().Cents {
			best = b
		}
		if b.NetFlow().Cents < worst.NetFlow().Cents {
			worst = b
		}
	}

	out := []core.Insight{{
		ID:       newInsightID(),
		Type:     core.InsightTypeCashFlowBest,
		Title:    "Best period",
		Subtitle: best.Label,
		Metric: core.Metric{
			Value:          best.NetFlow().Units(),
			FormattedValue: best.NetFlow().Format(gc.BaseCurrency),
			Currency:       gc.BaseCurrency,
		},
		Severity: core.SeverityPositive,
	}}

	if worst.NetFlow().Cents < 0 && worst.Key != best.Key {
		out = append(out, core.Insight{
			ID:       newInsightID(),
			Type:     core.InsightTypeCashFlowWorst,
			Title:    "Worst period",
			Subtitle: worst.Label,
			Metric: core.Metric{
				Value:          worst.NetFlow().Units(),
				FormattedValue: worst.NetFlow().Format(gc.BaseCurrency),
				Currency:       gc.BaseCurrency,
			},
			Severity: core.SeverityWarning,
		})
	}

	return out
}
