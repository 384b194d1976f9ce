package insights

import "moneta/internal/core"

// Summarize reduces one transaction slice to its income/expense totals.
//
// It deliberately takes no cache: summaries are always derived fresh from the
// exact slice passed in. Keying a shared summary cache by anything less than
// the full window caused stale totals to leak across time filters in the past,
// so only fully-keyed insight result sets are ever cached.
func Summarize(txs []core.Transaction) core.PeriodSummary {
	var s core.PeriodSummary
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			s.TotalIncome = s.TotalIncome.Add(tx.EffectiveAmount())
		case core.Expense:
			s.TotalExpenses = s.TotalExpenses.Add(tx.EffectiveAmount())
		}
	}
	return s
}
