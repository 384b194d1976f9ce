package core

import (
	"errors"
	"time"
)

const (
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
	AllTime Granularity = "allTime"
)

var ErrInvalidGranularity = errors.New("invalid granularity")

// Granularity is the calendar bucketing unit used to group transactions
// into period buckets.
type Granularity string

func (g Granularity) Validate() error {
	switch g {
	case Week, Month, Quarter, Year, AllTime:
		return nil
	}
	return ErrInvalidGranularity
}

// PeriodBucket is one time-bounded aggregation unit for a granularity.
// Buckets are created fresh on every aggregation call and ordered
// chronologically by PeriodStart; PeriodEnd is exclusive.
type PeriodBucket struct {
	Key         string      `json:"key"`
	Granularity Granularity `json:"granularity"`
	PeriodStart time.Time   `json:"period_start"`
	PeriodEnd   time.Time   `json:"period_end"`
	Label       string      `json:"label"`
	Income      Money       `json:"income"`
	Expenses    Money       `json:"expenses"`
	// CumulativeBalance is filled only when the caller asked for a running
	// balance; nil otherwise.
	CumulativeBalance *Money `json:"cumulative_balance,omitempty"`
}

// NetFlow is income minus expenses for the bucket.
func (b PeriodBucket) NetFlow() Money {
	return b.Income.Sub(b.Expenses)
}

// PeriodSummary is a reduction over one transaction slice. It is always
// derived fresh from the exact slice passed in, never from a cross-call
// cache, so totals can never leak between time windows.
type PeriodSummary struct {
	TotalIncome   Money `json:"total_income"`
	TotalExpenses Money `json:"total_expenses"`
}

func (s PeriodSummary) NetFlow() Money {
	return s.TotalIncome.Sub(s.TotalExpenses)
}

// MonthlyAggregate is one precomputed month total as returned by the
// aggregate-read capability.
type MonthlyAggregate struct {
	Year          int
	Month         int // 1-12
	TotalIncome   Money
	TotalExpenses Money
}

// CategoryAggregate is one precomputed per-category expense total.
type CategoryAggregate struct {
	CategoryName  string
	TotalExpenses Money
}
