package storage

import (
	"context"
	"fmt"

	"cashflow/internal/core"
)

type (
	// Summary is the income/expense/balance aggregate for a period.
	Summary struct {
		TotalIncome  core.Amount
		TotalExpense core.Amount
		Balance      core.Amount
		PeriodStart  core.Date
		PeriodEnd    core.Date
	}

	// CategoryTotal is one group of the by-category breakdown.
	CategoryTotal struct {
		CategoryID          int64
		CategoryName        string
		TransactionTypeName string
		Direction           core.Direction
		TotalAmount         core.Amount
		RecordCount         int64
	}

	// MonthlyTotal is one month's slice of the monthly report.
	MonthlyTotal struct {
		Year        int
		Month       int
		Income      core.Amount
		Expense     core.Amount
		Balance     core.Amount
		RecordCount int64
	}
)

// Period renders the month label as MM/YYYY.
func (m MonthlyTotal) Period() string {
	return fmt.Sprintf("%02d/%04d", m.Month, m.Year)
}

// Summarize computes income, expense and balance over [from, to], both
// ends inclusive. Absent sums are zero.
func (s *Store) Summarize(ctx context.Context, from, to core.Date) (Summary, error) {
	var incomeCents, expenseCents int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN tt.direction = 'inflow' THEN r.amount_cents ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN tt.direction = 'outflow' THEN r.amount_cents ELSE 0 END), 0)
		FROM records r
		JOIN transaction_types tt ON tt.id = r.transaction_type_id
		WHERE r.created_date >= ? AND r.created_date <= ?`,
		from.String(), to.String()).
		Scan(&incomeCents, &expenseCents)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize period: %w", err)
	}

	income := core.AmountFromCents(incomeCents)
	expense := core.AmountFromCents(expenseCents)
	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Sub(expense),
		PeriodStart:  from,
		PeriodEnd:    to,
	}, nil
}

// TotalsByCategory groups records by (category, transaction type) with
// total amount and record count, ordered by transaction type name
// ascending then total descending. A nil bound means no date filter on
// that side. Groups never appear for categories without records.
func (s *Store) TotalsByCategory(ctx context.Context, from, to *core.Date) ([]CategoryTotal, error) {
	query := `
		SELECT c.id, c.name, tt.name, tt.direction, SUM(r.amount_cents), COUNT(r.id)
		FROM records r
		JOIN categories c ON c.id = r.category_id
		JOIN transaction_types tt ON tt.id = r.transaction_type_id`
	var (
		conds []string
		args  []any
	)
	if from != nil {
		conds = append(conds, `r.created_date >= ?`)
		args = append(args, from.String())
	}
	if to != nil {
		conds = append(conds, `r.created_date <= ?`)
		args = append(args, to.String())
	}
	query += whereClause(conds) + `
		GROUP BY c.id, c.name, tt.name, tt.direction
		ORDER BY tt.name ASC, SUM(r.amount_cents) DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var (
			ct    CategoryTotal
			cents int64
		)
		if err := rows.Scan(&ct.CategoryID, &ct.CategoryName, &ct.TransactionTypeName,
			&ct.Direction, &cents, &ct.RecordCount); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		ct.TotalAmount = core.AmountFromCents(cents)
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// MonthlyReport groups all records by calendar month, newest month first.
func (s *Store) MonthlyReport(ctx context.Context) ([]MonthlyTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(strftime('%Y', r.created_date) AS INTEGER),
		       CAST(strftime('%m', r.created_date) AS INTEGER),
		       COALESCE(SUM(CASE WHEN tt.direction = 'inflow' THEN r.amount_cents ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN tt.direction = 'outflow' THEN r.amount_cents ELSE 0 END), 0),
		       COUNT(r.id)
		FROM records r
		JOIN transaction_types tt ON tt.id = r.transaction_type_id
		GROUP BY 1, 2
		ORDER BY 1 DESC, 2 DESC`)
	if err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}
	defer rows.Close()

	var months []MonthlyTotal
	for rows.Next() {
		var (
			mt                        MonthlyTotal
			incomeCents, expenseCents int64
		)
		if err := rows.Scan(&mt.Year, &mt.Month, &incomeCents, &expenseCents, &mt.RecordCount); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		mt.Income = core.AmountFromCents(incomeCents)
		mt.Expense = core.AmountFromCents(expenseCents)
		mt.Balance = mt.Income.Sub(mt.Expense)
		months = append(months, mt)
	}
	return months, rows.Err()
}
