package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"duitku/internal/core"
)

// ExpenseWithCategory pairs an expense with its resolved category label for
// report listings.
type ExpenseWithCategory struct {
	core.Expense
	CategoryName string
}

// filterSQL appends the WHERE fragments implied by f to conds/args.
// All filters are conjunctive; zero values add nothing.
func filterSQL(f core.ReportFilters, conds []string, args []any) ([]string, []any) {
	if !f.From.IsZero() {
		conds = append(conds, "e.date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		conds = append(conds, "e.date <= ?")
		args = append(args, f.To.String())
	}
	if len(f.CategoryIDs) > 0 {
		placeholders, catArgs := inClause(f.CategoryIDs)
		conds = append(conds, fmt.Sprintf("e.category_id IN (%s)", placeholders))
		args = append(args, catArgs...)
	}
	return conds, args
}

// SumExpensesByCategory groups expenses in scope by category label, largest
// total first. Expenses with no category land under "Uncategorized".
func (r *SQLiteRepository) SumExpensesByCategory(ctx context.Context, userIDs []int64, f core.ReportFilters) ([]core.CategoryTotal, error) {
	placeholders, args := inClause(userIDs)
	conds := []string{fmt.Sprintf("e.user_id IN (%s)", placeholders)}
	conds, args = filterSQL(f, conds, args)

	query := fmt.Sprintf(
		`SELECT COALESCE(c.name, 'Uncategorized') AS label, SUM(e.amount_cents) AS total
		 FROM expenses e
		 LEFT JOIN categories c ON c.id = e.category_id
		 WHERE %s
		 GROUP BY label
		 ORDER BY total DESC, label`, strings.Join(conds, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}
	defer rows.Close()

	var totals []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// ExpenseSummary returns the grand total and row count for expenses in scope.
func (r *SQLiteRepository) ExpenseSummary(ctx context.Context, userIDs []int64, f core.ReportFilters) (core.Money, int64, error) {
	placeholders, args := inClause(userIDs)
	conds := []string{fmt.Sprintf("e.user_id IN (%s)", placeholders)}
	conds, args = filterSQL(f, conds, args)

	query := fmt.Sprintf(
		`SELECT COALESCE(SUM(e.amount_cents), 0), COUNT(*) FROM expenses e WHERE %s`,
		strings.Join(conds, " AND "))

	var total core.Money
	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total.Cents, &count); err != nil {
		return core.Money{}, 0, fmt.Errorf("expense summary: %w", err)
	}
	return total, count, nil
}

// SumExpenses totals expenses in scope over [from, to] inclusive.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, userIDs []int64, from, to core.Date) (core.Money, error) {
	total, _, err := r.ExpenseSummary(ctx, userIDs, core.ReportFilters{From: from, To: to})
	return total, err
}

// SumIncomes totals incomes in scope over [from, to] inclusive.
func (r *SQLiteRepository) SumIncomes(ctx context.Context, userIDs []int64, from, to core.Date) (core.Money, error) {
	placeholders, args := inClause(userIDs)
	conds := []string{fmt.Sprintf("user_id IN (%s)", placeholders)}
	if !from.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, from.String())
	}
	if !to.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, to.String())
	}

	query := fmt.Sprintf(
		`SELECT COALESCE(SUM(amount_cents), 0) FROM incomes WHERE %s`,
		strings.Join(conds, " AND "))

	var total core.Money
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total.Cents); err != nil {
		return core.Money{}, fmt.Errorf("sum incomes: %w", err)
	}
	return total, nil
}

// DailyExpenseTotals returns one row per distinct expense date in scope over
// [from, to]. Missing days are absent; chart bucketing fills them in.
func (r *SQLiteRepository) DailyExpenseTotals(ctx context.Context, userIDs []int64, from, to core.Date) ([]core.DateTotal, error) {
	placeholders, args := inClause(userIDs)
	args = append(args, from.String(), to.String())

	query := fmt.Sprintf(
		`SELECT date, SUM(amount_cents) FROM expenses
		 WHERE user_id IN (%s) AND date >= ? AND date <= ?
		 GROUP BY date
		 ORDER BY date`, placeholders)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("daily expense totals: %w", err)
	}
	defer rows.Close()

	var totals []core.DateTotal
	for rows.Next() {
		var date string
		var dt core.DateTotal
		if err := rows.Scan(&date, &dt.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse daily total date %q: %w", date, err)
		}
		dt.Date = d
		totals = append(totals, dt)
	}
	return totals, rows.Err()
}

// FilteredExpenses lists expenses in scope matching the filters, newest first,
// capped at limit rows.
func (r *SQLiteRepository) FilteredExpenses(ctx context.Context, userIDs []int64, f core.ReportFilters, limit int) ([]ExpenseWithCategory, error) {
	placeholders, args := inClause(userIDs)
	conds := []string{fmt.Sprintf("e.user_id IN (%s)", placeholders)}
	conds, args = filterSQL(f, conds, args)
	args = append(args, limit)

	query := fmt.Sprintf(
		`SELECT e.id, e.user_id, e.category_id, e.amount_cents, e.description, e.payment_method,
		        e.date, e.created_at, e.created_by, COALESCE(c.name, 'Uncategorized')
		 FROM expenses e
		 LEFT JOIN categories c ON c.id = e.category_id
		 WHERE %s
		 ORDER BY e.date DESC, e.id DESC
		 LIMIT ?`, strings.Join(conds, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filtered expenses: %w", err)
	}
	defer rows.Close()

	var out []ExpenseWithCategory
	for rows.Next() {
		var ec ExpenseWithCategory
		var categoryID sql.NullInt64
		var date string
		if err := rows.Scan(&ec.ID, &ec.UserID, &categoryID, &ec.Amount.Cents, &ec.Description,
			&ec.PaymentMethod, &date, &ec.CreatedAt, &ec.CreatedBy, &ec.CategoryName); err != nil {
			return nil, fmt.Errorf("scan filtered expense: %w", err)
		}
		ec.CategoryID = int64Ptr(categoryID)
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse filtered expense date %q: %w", date, err)
		}
		ec.Date = d
		out = append(out, ec)
	}
	return out, rows.Err()
}
