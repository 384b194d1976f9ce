package core

// InsightType identifies the topical domain an insight belongs to.
type InsightType string

const (
	InsightTypeSpendingTrend InsightType = "spending_trend"
	InsightTypeSpendingSpike InsightType = "spending_spike"
	InsightTypeTopCategory   InsightType = "top_category"
	InsightTypeSavingsRate   InsightType = "savings_rate"
	InsightTypeRecurringLoad InsightType = "recurring_load"
	InsightTypeCashFlowBest  InsightType = "cash_flow_best"
	InsightTypeCashFlowWorst InsightType = "cash_flow_worst"
	InsightTypeIncomeTrend   InsightType = "income_trend"
)

// Severity levels for insights.
type Severity string

const (
	SeverityPositive Severity = "positive"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// TrendDirection is up/down/flat against a comparison period.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// Metric is the headline number of an insight.
type Metric struct {
	Value          float64 `json:"value"`
	FormattedValue string  `json:"formatted_value"`
	Currency       string  `json:"currency,omitempty"`
	Unit           string  `json:"unit,omitempty"`
}

// Trend describes how the metric moved relative to a comparison period.
type Trend struct {
	Direction        TrendDirection `json:"direction"`
	ChangePercent    *float64       `json:"change_percent,omitempty"`
	ChangeAbsolute   *Money         `json:"change_absolute,omitempty"`
	ComparisonPeriod string         `json:"comparison_period"`
}

// Insight is a single derived financial observation. It is immutable after
// construction: produced by exactly one generator call and consumed read-only.
type Insight struct {
	ID         string            `json:"id"`
	Type       InsightType       `json:"type"`
	Title      string            `json:"title"`
	Subtitle   string            `json:"subtitle,omitempty"`
	Metric     Metric            `json:"metric"`
	Trend      *Trend            `json:"trend,omitempty"`
	Severity   Severity          `json:"severity"`
	Category   string            `json:"category,omitempty"`
	DetailData map[string]string `json:"detail_data,omitempty"`
}
