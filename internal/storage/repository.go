package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"moneta/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLiteRepository is the concrete transaction store and the precomputed
// aggregate source. Dates are stored as ISO day strings; amounts as cents.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AddTransaction inserts a transaction and returns its ID.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, fmt.Errorf("validate transaction: %w", err)
	}

	var converted any
	if tx.ConvertedAmount != nil {
		converted = tx.ConvertedAmount.Cents
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (date, description, amount_cents, currency, converted_cents, type, category, account_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.Date.Format(dateLayout), tx.Description, tx.Amount.Cents, tx.Currency,
		converted, string(tx.Type), tx.Category, tx.AccountID)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// SoftDeleteTransaction marks a transaction deleted without removing the row.
func (r *SQLiteRepository) SoftDeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("transaction %d not found", id)
	}
	return nil
}

// ListTransactions returns all live transactions ordered by date.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, description, amount_cents, currency, converted_cents, type, category, account_id
		FROM transactions WHERE deleted_at IS NULL ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			tx        core.Transaction
			date      string
			converted sql.NullInt64
			txType    string
		)
		if err := rows.Scan(&tx.ID, &date, &tx.Description, &tx.Amount.Cents,
			&tx.Currency, &converted, &txType, &tx.Category, &tx.AccountID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", date, err)
		}
		tx.Type = core.TransactionType(txType)
		if converted.Valid {
			tx.ConvertedAmount = &core.Money{Cents: converted.Int64}
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// FirstTransactionDate returns the earliest live transaction date, or zero
// when the store is empty.
func (r *SQLiteRepository) FirstTransactionDate(ctx context.Context) (time.Time, error) {
	var date sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT MIN(date) FROM transactions WHERE deleted_at IS NULL`).Scan(&date)
	if err != nil {
		return time.Time{}, fmt.Errorf("query first transaction date: %w", err)
	}
	if !date.Valid {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, date.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse first transaction date: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, currency, balance_cents FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Currency, &a.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, type FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		var t string
		if err := rows.Scan(&c.Name, &t); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(t)
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) ListRecurringSeries(ctx context.Context) ([]core.RecurringSeries, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, currency, cadence, category, start_date, end_date, active
		FROM recurring_series ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query recurring series: %w", err)
	}
	defer rows.Close()

	var series []core.RecurringSeries
	for rows.Next() {
		var (
			rs       core.RecurringSeries
			cadence  string
			startStr string
			endStr   sql.NullString
			active   int
		)
		if err := rows.Scan(&rs.ID, &rs.Description, &rs.Amount.Cents, &rs.Currency,
			&cadence, &rs.Category, &startStr, &endStr, &active); err != nil {
			return nil, fmt.Errorf("scan recurring series: %w", err)
		}
		rs.Cadence = core.Cadence(cadence)
		rs.Active = active != 0
		rs.StartDate, err = time.Parse(dateLayout, startStr)
		if err != nil {
			return nil, fmt.Errorf("parse series start date: %w", err)
		}
		if endStr.Valid {
			rs.EndDate, err = time.Parse(dateLayout, endStr.String)
			if err != nil {
				return nil, fmt.Errorf("parse series end date: %w", err)
			}
		}
		series = append(series, rs)
	}
	return series, rows.Err()
}

// AddRecurringSeries inserts a recurring series and returns its ID.
func (r *SQLiteRepository) AddRecurringSeries(ctx context.Context, rs core.RecurringSeries) (int64, error) {
	if err := rs.Validate(); err != nil {
		return 0, fmt.Errorf("validate recurring series: %w", err)
	}

	var end any
	if !rs.EndDate.IsZero() {
		end = rs.EndDate.Format(dateLayout)
	}
	active := 0
	if rs.Active {
		active = 1
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_series (description, amount_cents, currency, cadence, category, start_date, end_date, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rs.Description, rs.Amount.Cents, rs.Currency, string(rs.Cadence),
		rs.Category, rs.StartDate.Format(dateLayout), end, active)
	if err != nil {
		return 0, fmt.Errorf("insert recurring series: %w", err)
	}
	return res.LastInsertId()
}

// FetchMonthlyAggregates returns precomputed month totals overlapping
// [from, to). An empty result means the tables are not populated yet;
// callers fall back to scanning raw transactions.
func (r *SQLiteRepository) FetchMonthlyAggregates(ctx context.Context, from, to time.Time, currency string) ([]core.MonthlyAggregate, error) {
	fromYM := from.Year()*100 + int(from.Month())
	// to is exclusive; the month containing its last in-window day is still
	// part of the range.
	last := to.AddDate(0, 0, -1)
	endYM := last.Year()*100 + int(last.Month())

	rows, err := r.db.QueryContext(ctx, `
		SELECT year, month, total_income_cents, total_expenses_cents
		FROM monthly_aggregates
		WHERE currency = ? AND year * 100 + month >= ? AND year * 100 + month <= ?
		ORDER BY year, month`,
		currency, fromYM, endYM)
	if err != nil {
		return nil, fmt.Errorf("query monthly aggregates: %w", err)
	}
	defer rows.Close()

	var aggs []core.MonthlyAggregate
	for rows.Next() {
		var a core.MonthlyAggregate
		if err := rows.Scan(&a.Year, &a.Month, &a.TotalIncome.Cents, &a.TotalExpenses.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly aggregate: %w", err)
		}
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

// FetchCategoryAggregates returns per-category expense totals over
// [from, to), summed from the precomputed monthly rows.
func (r *SQLiteRepository) FetchCategoryAggregates(ctx context.Context, from, to time.Time, currency string) ([]core.CategoryAggregate, error) {
	fromYM := from.Year()*100 + int(from.Month())
	last := to.AddDate(0, 0, -1)
	endYM := last.Year()*100 + int(last.Month())

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(total_expenses_cents)
		FROM monthly_category_aggregates
		WHERE currency = ? AND year * 100 + month >= ? AND year * 100 + month <= ?
		GROUP BY category
		ORDER BY SUM(total_expenses_cents) DESC`,
		currency, fromYM, endYM)
	if err != nil {
		return nil, fmt.Errorf("query category aggregates: %w", err)
	}
	defer rows.Close()

	var aggs []core.CategoryAggregate
	for rows.Next() {
		var a core.CategoryAggregate
		if err := rows.Scan(&a.CategoryName, &a.TotalExpenses.Cents); err != nil {
			return nil, fmt.Errorf("scan category aggregate: %w", err)
		}
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

// RefreshAggregates recomputes the monthly aggregate tables for one currency
// from the raw transactions. Run periodically by the worker; readers see
// either the old rows or the new rows, never a mix.
func (r *SQLiteRepository) RefreshAggregates(ctx context.Context, currency string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin refresh: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM monthly_aggregates WHERE currency = ?`, currency); err != nil {
		return fmt.Errorf("clear monthly aggregates: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM monthly_category_aggregates WHERE currency = ?`, currency); err != nil {
		return fmt.Errorf("clear category aggregates: %w", err)
	}

	// COALESCE prefers the stored base-currency conversion, matching how
	// the slow path reads amounts.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO monthly_aggregates (year, month, currency, total_income_cents, total_expenses_cents)
		SELECT CAST(strftime('%Y', date) AS INTEGER),
		       CAST(strftime('%m', date) AS INTEGER),
		       ?,
		       SUM(CASE WHEN type = 'income' THEN COALESCE(converted_cents, amount_cents) ELSE 0 END),
		       SUM(CASE WHEN type = 'expense' THEN COALESCE(converted_cents, amount_cents) ELSE 0 END)
		FROM transactions
		WHERE deleted_at IS NULL AND type IN ('income', 'expense')
		GROUP BY 1, 2`, currency); err != nil {
		return fmt.Errorf("rebuild monthly aggregates: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO monthly_category_aggregates (year, month, currency, category, total_expenses_cents)
		SELECT CAST(strftime('%Y', date) AS INTEGER),
		       CAST(strftime('%m', date) AS INTEGER),
		       ?,
		       category,
		       SUM(COALESCE(converted_cents, amount_cents))
		FROM transactions
		WHERE deleted_at IS NULL AND type = 'expense'
		GROUP BY 1, 2, 4`, currency); err != nil {
		return fmt.Errorf("rebuild category aggregates: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit refresh: %w", err)
	}
	return nil
}
