package core

import (
	"strings"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		Date:        time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Description: "groceries",
		Amount:      Money{Cents: 4250},
		Currency:    "EUR",
		Type:        Expense,
		Category:    "food",
		AccountID:   1,
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, nil},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", 201) }, nil},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -5} }, ErrInvalidAmount},
		{"empty currency", func(tx *Transaction) { tx.Currency = "" }, ErrEmptyCurrency},
		{"bad type", func(tx *Transaction) { tx.Type = "refund" }, ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.name == "valid" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRecurringSeries_Validate(t *testing.T) {
	valid := RecurringSeries{
		Description: "rent",
		Amount:      Money{Cents: 90000},
		Currency:    "EUR",
		Cadence:     Monthly,
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:      true,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid series: %v", err)
	}

	t.Run("end before start", func(t *testing.T) {
		rs := valid
		rs.EndDate = rs.StartDate.AddDate(0, 0, -1)
		if rs.Validate() == nil {
			t.Error("expected error")
		}
	})

	t.Run("bad cadence", func(t *testing.T) {
		rs := valid
		rs.Cadence = "fortnightly"
		if err := rs.Validate(); err != ErrInvalidCadence {
			t.Errorf("expected ErrInvalidCadence, got %v", err)
		}
	})
}

func TestTransaction_EffectiveAmount(t *testing.T) {
	tx := validTransaction()
	if got := tx.EffectiveAmount(); got.Cents != 4250 {
		t.Errorf("raw amount expected 4250, got %d", got.Cents)
	}

	converted := Money{Cents: 3910}
	tx.ConvertedAmount = &converted
	if got := tx.EffectiveAmount(); got.Cents != 3910 {
		t.Errorf("converted amount expected 3910, got %d", got.Cents)
	}
}

func TestGranularity_Validate(t *testing.T) {
	for _, g := range []Granularity{Week, Month, Quarter, Year, AllTime} {
		if err := g.Validate(); err != nil {
			t.Errorf("%s should be valid: %v", g, err)
		}
	}
	if Granularity("decade").Validate() != ErrInvalidGranularity {
		t.Error("decade should be invalid")
	}
}

func TestPeriodBucket_NetFlow(t *testing.T) {
	b := PeriodBucket{Income: Money{Cents: 5000}, Expenses: Money{Cents: 3000}}
	if got := b.NetFlow().Cents; got != 2000 {
		t.Errorf("expected 2000, got %d", got)
	}
}
