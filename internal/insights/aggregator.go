package insights

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"moneta/internal/core"
	"moneta/internal/log"
)

// AggregateReader is the precomputed-aggregate capability. An empty result
// means "not ready" and triggers the slow path; it is never an error.
type AggregateReader interface {
	FetchMonthlyAggregates(ctx context.Context, from, to time.Time, currency string) ([]core.MonthlyAggregate, error)
	FetchCategoryAggregates(ctx context.Context, from, to time.Time, currency string) ([]core.CategoryAggregate, error)
}

// Aggregator turns a transaction window into a gap-free, chronologically
// ordered sequence of period buckets for one granularity.
//
// For year and allTime it prefers precomputed monthly aggregates: the
// aggregate store holds unbounded history while the raw transaction list may
// be windowed to a limited retention period, so a raw scan would silently
// under-report long ranges.
type Aggregator struct {
	reader AggregateReader // nil disables the fast path
	logger *log.Logger
	now    func() time.Time
}

func NewAggregator(reader AggregateReader, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Aggregator{
		reader: reader,
		logger: logger.WithComponent(log.ComponentAggregator),
		now:    time.Now,
	}
}

// Window computes the default [start, end) lookback for a granularity.
// Week covers the 52 most recent weeks; the open-ended granularities run
// from the first-ever transaction date to now. A zero firstTx with an
// open-ended granularity yields an empty window.
func (a *Aggregator) Window(g core.Granularity, firstTx time.Time) (time.Time, time.Time) {
	now := a.now()
	switch g {
	case core.Week:
		end := advance(core.Week, startOfWeek(now))
		return end.AddDate(0, 0, -52*7), end
	case core.Month, core.Quarter, core.Year:
		if firstTx.IsZero() {
			return time.Time{}, time.Time{}
		}
		return periodStart(g, firstTx), advance(g, periodStart(g, now))
	case core.AllTime:
		if firstTx.IsZero() {
			return time.Time{}, time.Time{}
		}
		return dateOnly(firstTx), dateOnly(now).AddDate(0, 0, 1)
	}
	return time.Time{}, time.Time{}
}

// Buckets derives the granularity's default window and aggregates into it.
// firstTx may be zero, in which case it is taken from the transaction list;
// passing it avoids a redundant scan when the caller already has it.
func (a *Aggregator) Buckets(ctx context.Context, txs []core.Transaction, g core.Granularity, firstTx time.Time, currency string) []core.PeriodBucket {
	if firstTx.IsZero() {
		firstTx = earliestDate(txs)
	}
	start, end := a.Window(g, firstTx)
	return a.BucketsInWindow(ctx, txs, g, start, end, currency)
}

// BucketsInWindow aggregates into every calendar period overlapping
// [start, end). Each expected bucket appears exactly once, with zero totals
// when nothing fell into it. A degenerate window returns an empty slice.
func (a *Aggregator) BucketsInWindow(ctx context.Context, txs []core.Transaction, g core.Granularity, start, end time.Time, currency string) []core.PeriodBucket {
	if !start.Before(end) {
		return nil
	}

	buckets := enumerateBuckets(g, start, end)
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
	}

	if !a.fillFromAggregates(ctx, buckets, index, g, start, end, currency) {
		a.fillFromScan(buckets, index, txs, g, start, end)
	}

	// Running balance across the walk order
	var running core.Money
	for i := range buckets {
		running = running.Add(buckets[i].NetFlow())
		cum := running
		buckets[i].CumulativeBalance = &cum
	}

	return buckets
}

// fillFromAggregates is the fast path. It reports false when the reader is
// absent, not applicable for the granularity, errored, or returned nothing.
func (a *Aggregator) fillFromAggregates(ctx context.Context, buckets []core.PeriodBucket, index map[string]int, g core.Granularity, start, end time.Time, currency string) bool {
	if a.reader == nil || (g != core.Year && g != core.AllTime) {
		return false
	}

	rows, err := a.reader.FetchMonthlyAggregates(ctx, start, end, currency)
	if err != nil {
		a.logger.WarnContext(ctx, "Monthly aggregate fetch failed, falling back to raw scan",
			log.FieldError, err.Error(),
			log.FieldGranularity, string(g))
		return false
	}
	if len(rows) == 0 {
		return false
	}

	for _, row := range rows {
		// A month belongs to the window when it overlaps [start, end). The
		// window may start mid-month (allTime anchors on the first
		// transaction's day), so requiring monthStart >= start would drop
		// the opening month's totals.
		monthStart := time.Date(row.Year, time.Month(row.Month), 1, 0, 0, 0, 0, time.UTC)
		if !advance(core.Month, monthStart).After(start) || !monthStart.Before(end) {
			continue
		}
		i, ok := index[bucketKey(g, monthStart)]
		if !ok {
			continue
		}
		buckets[i].Income = buckets[i].Income.Add(row.TotalIncome)
		buckets[i].Expenses = buckets[i].Expenses.Add(row.TotalExpenses)
	}

	return true
}

// fillFromScan is the slow path: a single linear pass classifying each
// transaction into its bucket. Transactions outside [start, end) and
// transfers are ignored.
func (a *Aggregator) fillFromScan(buckets []core.PeriodBucket, index map[string]int, txs []core.Transaction, g core.Granularity, start, end time.Time) {
	for _, tx := range txs {
		day := dateOnly(tx.Date)
		if day.Before(start) || !day.Before(end) {
			continue
		}
		i, ok := index[bucketKey(g, day)]
		if !ok {
			continue
		}
		switch tx.Type {
		case core.Income:
			buckets[i].Income = buckets[i].Income.Add(tx.EffectiveAmount())
		case core.Expense:
			buckets[i].Expenses = buckets[i].Expenses.Add(tx.EffectiveAmount())
		}
	}
}

// enumerateBuckets walks the window one granularity-step at a time so that
// empty periods still get a bucket.
func enumerateBuckets(g core.Granularity, start, end time.Time) []core.PeriodBucket {
	if g == core.AllTime {
		return []core.PeriodBucket{{
			Key:         bucketKey(g, start),
			Granularity: g,
			PeriodStart: start,
			PeriodEnd:   end,
			Label:       "All time",
		}}
	}

	var buckets []core.PeriodBucket
	for cur := periodStart(g, start); cur.Before(end); cur = advance(g, cur) {
		buckets = append(buckets, core.PeriodBucket{
			Key:         bucketKey(g, cur),
			Granularity: g,
			PeriodStart: cur,
			PeriodEnd:   advance(g, cur),
			Label:       bucketLabel(g, cur),
		})
	}
	return buckets
}

// bucketKey is the canonical, stable identifier for the period owning t.
func bucketKey(g core.Granularity, t time.Time) string {
	switch g {
	case core.Week:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case core.Month:
		return t.Format("2006-01")
	case core.Quarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case core.Year:
		return strconv.Itoa(t.Year())
	case core.AllTime:
		return "all"
	}
	return ""
}

func bucketLabel(g core.Granularity, t time.Time) string {
	switch g {
	case core.Week:
		return "Week of " + t.Format("Jan 2, 2006")
	case core.Month:
		return t.Format("January 2006")
	case core.Quarter:
		return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
	case core.Year:
		return strconv.Itoa(t.Year())
	case core.AllTime:
		return "All time"
	}
	return ""
}

// periodStart truncates t to the calendar start of its period.
func periodStart(g core.Granularity, t time.Time) time.Time {
	switch g {
	case core.Week:
		return startOfWeek(t)
	case core.Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case core.Quarter:
		m := time.Month((int(t.Month())-1)/3*3 + 1)
		return time.Date(t.Year(), m, 1, 0, 0, 0, 0, time.UTC)
	case core.Year:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return dateOnly(t)
}

// advance moves a period start forward by one granularity step.
func advance(g core.Granularity, t time.Time) time.Time {
	switch g {
	case core.Week:
		return t.AddDate(0, 0, 7)
	case core.Month:
		return t.AddDate(0, 1, 0)
	case core.Quarter:
		return t.AddDate(0, 3, 0)
	case core.Year:
		return t.AddDate(1, 0, 0)
	}
	return t
}

// startOfWeek returns the Monday on or before t, at midnight UTC.
func startOfWeek(t time.Time) time.Time {
	d := dateOnly(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// dateOnly strips clock and zone, keeping the calendar day in UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func earliestDate(txs []core.Transaction) time.Time {
	var first time.Time
	for _, tx := range txs {
		if first.IsZero() || tx.Date.Before(first) {
			first = tx.Date
		}
	}
	return first
}
