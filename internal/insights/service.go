package insights

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"moneta/internal/cache"
	"moneta/internal/core"
	"moneta/internal/currency"
	"moneta/internal/log"
)

// TransactionStore is the opaque data source the engine reads from. It is
// treated as a read-only snapshot for the duration of one call; callers that
// mutate it are expected to invalidate the cache afterwards.
type TransactionStore interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListRecurringSeries(ctx context.Context) ([]core.RecurringSeries, error)
	// FirstTransactionDate returns the earliest transaction date, or zero
	// when the store is empty. Having the store answer this avoids an O(N)
	// scan on every window computation.
	FirstTransactionDate(ctx context.Context) (time.Time, error)
}

// WindowPreset selects a fixed lookback window for insight generation.
type WindowPreset string

const (
	PresetLast30Days WindowPreset = "last30days"
	PresetLast90Days WindowPreset = "last90days"
	PresetYearToDate WindowPreset = "yearToDate"
	PresetAllTime    WindowPreset = "allTime"
)

var ErrInvalidPreset = errors.New("invalid window preset")

func (p WindowPreset) Validate() error {
	switch p {
	case PresetLast30Days, PresetLast90Days, PresetYearToDate, PresetAllTime:
		return nil
	}
	return ErrInvalidPreset
}

// window computes [start, end) for the preset. firstTx anchors allTime.
func (p WindowPreset) window(now, firstTx time.Time) (time.Time, time.Time) {
	end := dateOnly(now).AddDate(0, 0, 1)
	switch p {
	case PresetLast30Days:
		return end.AddDate(0, 0, -30), end
	case PresetLast90Days:
		return end.AddDate(0, 0, -90), end
	case PresetYearToDate:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), end
	case PresetAllTime:
		if firstTx.IsZero() {
			return time.Time{}, time.Time{}
		}
		return dateOnly(firstTx), end
	}
	return time.Time{}, time.Time{}
}

// bucketing picks the granularity used to bucket the preset's window.
func (p WindowPreset) bucketing() core.Granularity {
	if p == PresetLast30Days {
		return core.Week
	}
	return core.Month
}

// Result is one fully computed insight set. Only this final, fully-qualified
// form is ever cached, under a key that completely determines its content.
type Result struct {
	Insights []core.Insight      `json:"insights"`
	Buckets  []core.PeriodBucket `json:"buckets"`
}

// Options configures a Service.
type Options struct {
	CacheSize int           // default cache.DefaultMaxSize
	CacheTTL  time.Duration // default 5 minutes
	Logger    *log.Logger
}

// Service orchestrates insight computation: cache check, window and summary
// computation, one aggregation pass shared by all generators, and cache
// store. Each call is a straight line; the cache is the only concurrent
// access point.
type Service struct {
	store      TransactionStore
	reader     AggregateReader // nil disables fast paths
	conv       currency.Converter
	agg        *Aggregator
	cache      *cache.LRUCache[Result]
	generators []Generator
	logger     *log.Logger
	group      singleflight.Group
	now        func() time.Time
}

func NewService(store TransactionStore, reader AggregateReader, conv currency.Converter, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentInsights)

	size := opts.CacheSize
	if size <= 0 {
		size = cache.DefaultMaxSize
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Service{
		store:  store,
		reader: reader,
		conv:   conv,
		agg:    NewAggregator(reader, logger),
		cache:  cache.NewLRUCache[Result](size, ttl),
		// Fixed order: later generators may lean on what earlier ones
		// established about the shared buckets, so the set never runs
		// concurrently or reordered.
		generators: []Generator{
			NewSpendingGenerator(),
			NewIncomeGenerator(),
			NewSavingsGenerator(),
			NewRecurringGenerator(conv, logger),
			NewCashFlowGenerator(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// ResultCache exposes the cache for sweep registration with a cache.Manager.
func (s *Service) ResultCache() *cache.LRUCache[Result] {
	return s.cache
}

// GenerateAllInsights computes (or serves from cache) the insight set and
// period buckets for one granularity and base currency.
func (s *Service) GenerateAllInsights(ctx context.Context, g core.Granularity, baseCurrency string) (Result, error) {
	if err := g.Validate(); err != nil {
		return Result{}, err
	}

	key := granularityKey(g, baseCurrency)
	if res, ok := s.cache.Get(key); ok {
		s.logger.DebugContext(ctx, "Insight cache hit", log.FieldCacheKey, key)
		return res, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		first, txs, err := s.loadTransactions(ctx)
		if err != nil {
			return Result{}, err
		}
		start, end := s.agg.Window(g, first)
		res, err := s.compute(ctx, txs, g, start, end, baseCurrency)
		if err != nil {
			return Result{}, err
		}
		s.cache.Set(key, res)
		return res, nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

// GenerateWindowInsights computes (or serves from cache) the insight set for
// a preset time window.
func (s *Service) GenerateWindowInsights(ctx context.Context, preset WindowPreset, baseCurrency string) ([]core.Insight, error) {
	if err := preset.Validate(); err != nil {
		return nil, err
	}

	first, txs, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	start, end := preset.window(s.now(), first)
	key := windowKey(preset, baseCurrency, start)
	if res, ok := s.cache.Get(key); ok {
		s.logger.DebugContext(ctx, "Insight cache hit", log.FieldCacheKey, key)
		return res.Insights, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		res, err := s.compute(ctx, txs, preset.bucketing(), start, end, baseCurrency)
		if err != nil {
			return Result{}, err
		}
		s.cache.Set(key, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Result).Insights, nil
}

// InvalidateCache drops every cached insight set. Callers that know the
// underlying data changed use this.
func (s *Service) InvalidateCache() {
	s.cache.InvalidateAll()
	s.logger.Info("Insight cache invalidated", log.FieldOperation, log.OpInvalidate)
}

// InvalidateCurrency drops only the sets computed for one base currency.
func (s *Service) InvalidateCurrency(baseCurrency string) int {
	tag := "|" + baseCurrency
	n := s.cache.InvalidateFunc(func(key string) bool {
		return strings.Contains(key, tag)
	})
	s.logger.Info("Insight cache invalidated for currency",
		log.FieldOperation, log.OpInvalidate,
		log.FieldCurrency, baseCurrency,
		"entries_removed", n)
	return n
}

func (s *Service) loadTransactions(ctx context.Context) (time.Time, []core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("list transactions: %w", err)
	}

	first, err := s.store.FirstTransactionDate(ctx)
	if err != nil {
		// Recoverable: the aggregator falls back to scanning.
		s.logger.WarnContext(ctx, "First transaction date lookup failed",
			log.FieldError, err.Error())
		first = time.Time{}
	}
	if first.IsZero() {
		first = earliestDate(txs)
	}
	return first, txs, nil
}

// compute is the cache-miss path: summary and buckets are derived once and
// the same instances are handed to every generator in the fixed order.
func (s *Service) compute(ctx context.Context, txs []core.Transaction, g core.Granularity, start, end time.Time, baseCurrency string) (Result, error) {
	started := s.now()

	windowed := filterWindow(txs, start, end)
	summary := Summarize(windowed)
	buckets := s.agg.BucketsInWindow(ctx, txs, g, start, end, baseCurrency)

	recurring, err := s.store.ListRecurringSeries(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Recurring series unavailable",
			log.FieldError, err.Error())
		recurring = nil
	}

	balances := s.balanceLookup(ctx)
	catTotals := s.categoryTotals(ctx, g, start, end, baseCurrency)

	gc := GeneratorContext{
		Windowed:       windowed,
		All:            txs,
		Summary:        summary,
		Buckets:        buckets,
		Granularity:    g,
		BaseCurrency:   baseCurrency,
		Recurring:      recurring,
		CategoryTotals: catTotals,
		AccountBalance: balances,
	}

	var insights []core.Insight
	for _, gen := range s.generators {
		insights = append(insights, gen.Generate(gc)...)
	}

	s.logger.InfoContext(ctx, "Insights computed",
		log.FieldGranularity, string(g),
		log.FieldCurrency, baseCurrency,
		log.FieldTxCount, len(windowed),
		log.FieldBucketCount, len(buckets),
		log.FieldDuration, s.now().Sub(started).Milliseconds())

	return Result{Insights: insights, Buckets: buckets}, nil
}

// categoryTotals fetches precomputed category aggregates for long windows.
// Anything short of a usable answer just means generators scan instead.
func (s *Service) categoryTotals(ctx context.Context, g core.Granularity, start, end time.Time, currency string) []core.CategoryAggregate {
	if s.reader == nil || (g != core.Year && g != core.AllTime) {
		return nil
	}
	totals, err := s.reader.FetchCategoryAggregates(ctx, start, end, currency)
	if err != nil {
		s.logger.WarnContext(ctx, "Category aggregate fetch failed",
			log.FieldError, err.Error())
		return nil
	}
	if len(totals) == 0 {
		return nil
	}
	return totals
}

func (s *Service) balanceLookup(ctx context.Context) func(int64) (core.Money, bool) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Accounts unavailable", log.FieldError, err.Error())
		return func(int64) (core.Money, bool) { return core.Money{}, false }
	}
	byID := make(map[int64]core.Money, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a.Balance
	}
	return func(id int64) (core.Money, bool) {
		m, ok := byID[id]
		return m, ok
	}
}

func filterWindow(txs []core.Transaction, start, end time.Time) []core.Transaction {
	if !start.Before(end) {
		return nil
	}
	var out []core.Transaction
	for _, tx := range txs {
		day := dateOnly(tx.Date)
		if !day.Before(start) && day.Before(end) {
			out = append(out, tx)
		}
	}
	return out
}

// Cache keys are plain joins of everything that determines the result.
func granularityKey(g core.Granularity, currency string) string {
	return string(g) + "|" + currency
}

func windowKey(p WindowPreset, currency string, windowStart time.Time) string {
	return string(p) + "|" + currency + "|" + strconv.FormatInt(windowStart.Unix(), 10)
}
