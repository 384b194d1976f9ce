package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	Daily   Cadence = "daily"
	Weekly  Cadence = "weekly"
	Monthly Cadence = "monthly"
	Yearly  Cadence = "yearly"
)

type (
	TransactionType string

	Cadence string

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          int64
		Date        time.Time
		Description string
		Amount      Money
		Currency    string
		// ConvertedAmount is the amount in the base currency, when a rate
		// was known at record time. Nil means no conversion was available.
		ConvertedAmount *Money
		Type            TransactionType
		Category        string
		AccountID       int64
	}

	Account struct {
		ID       int64
		Name     string
		Currency string
		Balance  Money
	}

	Category struct {
		Name string
		Type TransactionType
	}

	RecurringSeries struct {
		ID          int64
		Description string
		Amount      Money
		Currency    string
		Cadence     Cadence
		Category    string
		StartDate   time.Time
		EndDate     time.Time // zero means open-ended
		Active      bool
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidCadence   = errors.New("invalid cadence")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCurrency    = errors.New("empty currency")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense, Transfer:
		return nil
	}
	return ErrInvalidType
}

func (c Cadence) Validate() error {
	switch c {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	}
	return ErrInvalidCadence
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Currency) == "" {
		return ErrEmptyCurrency
	}
	return t.Type.Validate()
}

func (rs RecurringSeries) Validate() error {
	if rs.StartDate.IsZero() {
		return errors.New("start date cannot be zero")
	}
	if !rs.EndDate.IsZero() && rs.EndDate.Before(rs.StartDate) {
		return errors.New("end date must be after start date")
	}
	if err := rs.Cadence.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(rs.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := rs.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(rs.Currency) == "" {
		return ErrEmptyCurrency
	}
	return nil
}

// EffectiveAmount returns the base-currency amount when a stored conversion
// exists, falling back to the raw amount otherwise.
func (t Transaction) EffectiveAmount() Money {
	if t.ConvertedAmount != nil {
		return *t.ConvertedAmount
	}
	return t.Amount
}
