package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"moneta/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTx(date time.Time, cents int64, txType core.TransactionType, category string) core.Transaction {
	return core.Transaction{
		Date:        date,
		Description: "sample",
		Amount:      core.Money{Cents: cents},
		Currency:    "EUR",
		Type:        txType,
		Category:    category,
	}
}

func TestSQLiteRepository_Transactions(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	id1, err := repo.AddTransaction(ctx, sampleTx(jan, 300000, core.Income, "salary"))
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	if _, err := repo.AddTransaction(ctx, sampleTx(feb, 45000, core.Expense, "food")); err != nil {
		t.Fatalf("add transaction: %v", err)
	}

	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if !txs[0].Date.Equal(jan) || txs[0].Type != core.Income {
		t.Errorf("wrong first row: %+v", txs[0])
	}

	first, err := repo.FirstTransactionDate(ctx)
	if err != nil {
		t.Fatalf("first transaction date: %v", err)
	}
	if !first.Equal(jan) {
		t.Errorf("expected %s, got %s", jan, first)
	}

	if err := repo.SoftDeleteTransaction(ctx, id1); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	txs, err = repo.ListTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 {
		t.Errorf("soft-deleted row must not be listed, got %d rows", len(txs))
	}
	if err := repo.SoftDeleteTransaction(ctx, id1); err == nil {
		t.Error("double delete should fail")
	}
}

func TestSQLiteRepository_FirstTransactionDateEmpty(t *testing.T) {
	repo := testRepo(t)
	first, err := repo.FirstTransactionDate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.IsZero() {
		t.Errorf("empty store must report a zero date, got %s", first)
	}
}

func TestSQLiteRepository_RecurringSeries(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.AddRecurringSeries(ctx, core.RecurringSeries{
		Description: "streaming",
		Amount:      core.Money{Cents: 1500},
		Currency:    "EUR",
		Cadence:     core.Monthly,
		Category:    "entertainment",
		StartDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Active:      true,
	})
	if err != nil {
		t.Fatalf("add series: %v", err)
	}

	series, err := repo.ListRecurringSeries(ctx)
	if err != nil {
		t.Fatalf("list series: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(series))
	}
	s := series[0]
	if s.Cadence != core.Monthly || !s.Active || !s.EndDate.IsZero() {
		t.Errorf("round trip mismatch: %+v", s)
	}
}

func TestSQLiteRepository_RefreshAggregates(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		sampleTx(jan, 300000, core.Income, "salary"),
		sampleTx(jan.AddDate(0, 0, 5), 120000, core.Expense, "housing"),
		sampleTx(jan.AddDate(0, 1, 0), 45000, core.Expense, "food"),
	}
	for _, tx := range txs {
		if _, err := repo.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("add transaction: %v", err)
		}
	}

	if err := repo.RefreshAggregates(ctx, "EUR"); err != nil {
		t.Fatalf("refresh aggregates: %v", err)
	}

	aggs, err := repo.FetchMonthlyAggregates(ctx,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "EUR")
	if err != nil {
		t.Fatalf("fetch monthly aggregates: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected 2 month rows, got %d", len(aggs))
	}
	if aggs[0].TotalIncome.Cents != 300000 || aggs[0].TotalExpenses.Cents != 120000 {
		t.Errorf("January totals wrong: %+v", aggs[0])
	}
	if aggs[1].TotalExpenses.Cents != 45000 {
		t.Errorf("February totals wrong: %+v", aggs[1])
	}

	cats, err := repo.FetchCategoryAggregates(ctx,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "EUR")
	if err != nil {
		t.Fatalf("fetch category aggregates: %v", err)
	}
	if len(cats) != 2 || cats[0].CategoryName != "housing" {
		t.Errorf("expected housing first, got %+v", cats)
	}

	// A window may start and end mid-month; the months containing both
	// boundary days still count.
	aggs, err = repo.FetchMonthlyAggregates(ctx,
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC), "EUR")
	if err != nil {
		t.Fatalf("fetch mid-month window: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected both boundary months, got %d rows", len(aggs))
	}
	cats, err = repo.FetchCategoryAggregates(ctx,
		time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC), "EUR")
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 || cats[0].CategoryName != "food" {
		t.Errorf("expected February's food row, got %+v", cats)
	}

	// Refresh is idempotent: rows are replaced, not appended.
	if err := repo.RefreshAggregates(ctx, "EUR"); err != nil {
		t.Fatal(err)
	}
	aggs, err = repo.FetchMonthlyAggregates(ctx,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "EUR")
	if err != nil {
		t.Fatal(err)
	}
	if len(aggs) != 2 {
		t.Errorf("refresh must replace rows, got %d", len(aggs))
	}
}
