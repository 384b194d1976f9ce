package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"moneta/internal/core"
	"moneta/internal/currency"
)

// fakeStore is an in-memory TransactionStore counting list calls so tests can
// tell a cache hit from a recompute.
type fakeStore struct {
	txs       []core.Transaction
	recurring []core.RecurringSeries
	accounts  []core.Account
	listCalls int
}

func (s *fakeStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.listCalls++
	return s.txs, nil
}

func (s *fakeStore) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.accounts, nil
}

func (s *fakeStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	return nil, nil
}

func (s *fakeStore) ListRecurringSeries(ctx context.Context) ([]core.RecurringSeries, error) {
	return s.recurring, nil
}

func (s *fakeStore) FirstTransactionDate(ctx context.Context) (time.Time, error) {
	return earliestDate(s.txs), nil
}

func newTestService(store *fakeStore) *Service {
	svc := NewService(store, nil, currency.NewRateTable(nil), Options{
		CacheTTL: time.Minute,
		Logger:   discardLogger(),
	})
	svc.now = func() time.Time { return day(2026, 3, 18) }
	svc.agg.now = svc.now
	return svc
}

func withCategory(tx core.Transaction, category string) core.Transaction {
	tx.Category = category
	return tx
}

func sampleStore() *fakeStore {
	return &fakeStore{
		txs: []core.Transaction{
			withCategory(income(day(2026, 1, 10), 300000), "salary"),
			withCategory(expense(day(2026, 1, 15), 120000), "rent"),
			withCategory(income(day(2026, 2, 10), 300000), "salary"),
			withCategory(expense(day(2026, 2, 15), 150000), "rent"),
			withCategory(expense(day(2026, 3, 2), 40000), "food"),
		},
		recurring: []core.RecurringSeries{
			{ID: 1, Description: "streaming", Amount: core.Money{Cents: 1500}, Cadence: core.Monthly, Currency: "EUR", Active: true},
		},
	}
}

func TestService_GenerateAllInsights(t *testing.T) {
	store := sampleStore()
	svc := newTestService(store)
	ctx := context.Background()

	res, err := svc.GenerateAllInsights(ctx, core.Month, "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Insights) == 0 {
		t.Fatal("expected insights for a populated store")
	}
	if len(res.Buckets) != 3 {
		t.Errorf("expected 3 month buckets Jan-Mar, got %d", len(res.Buckets))
	}
	for _, in := range res.Insights {
		if in.ID == "" {
			t.Error("every insight needs an ID")
		}
	}
}

func TestService_SecondCallServedFromCache(t *testing.T) {
	store := sampleStore()
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.GenerateAllInsights(ctx, core.Month, "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	callsAfterFirst := store.listCalls

	second, err := svc.GenerateAllInsights(ctx, core.Month, "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.listCalls != callsAfterFirst {
		t.Errorf("second identical call must not touch the store: %d -> %d calls",
			callsAfterFirst, store.listCalls)
	}
	if len(second.Insights) != len(first.Insights) {
		t.Errorf("cached result differs: %d vs %d insights", len(first.Insights), len(second.Insights))
	}
	for i := range first.Insights {
		if second.Insights[i].ID != first.Insights[i].ID {
			t.Error("cached result must be the identical computation, not a rerun")
			break
		}
	}
}

func TestService_DistinctParametersDistinctEntries(t *testing.T) {
	store := sampleStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.GenerateAllInsights(ctx, core.Month, "EUR"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GenerateAllInsights(ctx, core.Year, "EUR"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GenerateAllInsights(ctx, core.Month, "USD"); err != nil {
		t.Fatal(err)
	}
	if got := svc.cache.Size(); got != 3 {
		t.Errorf("expected 3 cache entries, got %d", got)
	}
}

func TestService_InvalidGranularity(t *testing.T) {
	svc := newTestService(sampleStore())
	if _, err := svc.GenerateAllInsights(context.Background(), core.Granularity("decade"), "EUR"); !errors.Is(err, core.ErrInvalidGranularity) {
		t.Errorf("expected ErrInvalidGranularity, got %v", err)
	}
}

func TestService_InvalidateCache(t *testing.T) {
	store := sampleStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.GenerateAllInsights(ctx, core.Month, "EUR"); err != nil {
		t.Fatal(err)
	}
	calls := store.listCalls

	svc.InvalidateCache()

	if _, err := svc.GenerateAllInsights(ctx, core.Month, "EUR"); err != nil {
		t.Fatal(err)
	}
	if store.listCalls == calls {
		t.Error("invalidation must force a recompute")
	}
}

func TestService_InvalidateCurrency(t *testing.T) {
	store := sampleStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.GenerateAllInsights(ctx, core.Month, "EUR"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GenerateAllInsights(ctx, core.Month, "USD"); err != nil {
		t.Fatal(err)
	}

	if n := svc.InvalidateCurrency("USD"); n != 1 {
		t.Errorf("expected 1 entry removed, got %d", n)
	}

	calls := store.listCalls
	if _, err := svc.GenerateAllInsights(ctx, core.Month, "EUR"); err != nil {
		t.Fatal(err)
	}
	if store.listCalls != calls {
		t.Error("EUR entry must survive a USD invalidation")
	}
}

func TestService_GenerateWindowInsights(t *testing.T) {
	store := sampleStore()
	svc := newTestService(store)
	ctx := context.Background()

	t.Run("invalid preset", func(t *testing.T) {
		if _, err := svc.GenerateWindowInsights(ctx, WindowPreset("lastFortnight"), "EUR"); !errors.Is(err, ErrInvalidPreset) {
			t.Errorf("expected ErrInvalidPreset, got %v", err)
		}
	})

	t.Run("presets compute", func(t *testing.T) {
		for _, preset := range []WindowPreset{PresetLast30Days, PresetLast90Days, PresetYearToDate, PresetAllTime} {
			if _, err := svc.GenerateWindowInsights(ctx, preset, "EUR"); err != nil {
				t.Errorf("%s: unexpected error: %v", preset, err)
			}
		}
	})

	t.Run("cached under its own key", func(t *testing.T) {
		svc.InvalidateCache()
		if _, err := svc.GenerateWindowInsights(ctx, PresetLast90Days, "EUR"); err != nil {
			t.Fatal(err)
		}
		calls := store.listCalls
		if _, err := svc.GenerateWindowInsights(ctx, PresetLast90Days, "EUR"); err != nil {
			t.Fatal(err)
		}
		// The window path still lists transactions to anchor the window, but
		// must not recompute the result.
		if store.listCalls != calls+1 {
			t.Errorf("expected exactly one more list call for the anchor, got %d -> %d", calls, store.listCalls)
		}
	})
}

func TestWindowPreset_Window(t *testing.T) {
	now := day(2026, 3, 18)
	firstTx := day(2024, 7, 1)

	cases := []struct {
		preset    WindowPreset
		wantStart time.Time
		wantEnd   time.Time
	}{
		// Windows are exactly N days: [end-N, end) with the exclusive end on
		// tomorrow's midnight, so today is the Nth day.
		{PresetLast30Days, day(2026, 2, 17), day(2026, 3, 19)},
		{PresetLast90Days, day(2025, 12, 19), day(2026, 3, 19)},
		{PresetYearToDate, day(2026, 1, 1), day(2026, 3, 19)},
		{PresetAllTime, day(2024, 7, 1), day(2026, 3, 19)},
	}
	for _, tc := range cases {
		t.Run(string(tc.preset), func(t *testing.T) {
			start, end := tc.preset.window(now, firstTx)
			if !start.Equal(tc.wantStart) || !end.Equal(tc.wantEnd) {
				t.Errorf("got [%s, %s), want [%s, %s)",
					start.Format("2006-01-02"), end.Format("2006-01-02"),
					tc.wantStart.Format("2006-01-02"), tc.wantEnd.Format("2006-01-02"))
			}
		})
	}

	t.Run("allTime empty history", func(t *testing.T) {
		start, end := PresetAllTime.window(now, time.Time{})
		if !start.IsZero() || !end.IsZero() {
			t.Error("no history means a degenerate window")
		}
	})
}

func TestWindowPreset_Bucketing(t *testing.T) {
	if g := PresetLast30Days.bucketing(); g != core.Week {
		t.Errorf("last30days buckets by week, got %s", g)
	}
	if g := PresetYearToDate.bucketing(); g != core.Month {
		t.Errorf("yearToDate buckets by month, got %s", g)
	}
}
