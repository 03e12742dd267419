package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"duitku/internal/core"
)

// BudgetProgress is a budget row joined with the amount actually spent in its
// category during its month.
type BudgetProgress struct {
	core.Budget
	CategoryName string
	Spent        core.Money
}

// SaveBudget inserts the budget or, when one already exists for the same
// (user, category, year, month), overwrites its amount.
func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category_id, amount_cents, month, year, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, category_id, year, month)
		 DO UPDATE SET amount_cents = excluded.amount_cents`,
		b.UserID, b.CategoryID, b.Amount.Cents, b.Month, b.Year, b.CreatedBy)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}

	// LastInsertId is unreliable on conflict, so read the row back.
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM budgets WHERE user_id = ? AND category_id = ? AND year = ? AND month = ?`,
		b.UserID, b.CategoryID, b.Year, b.Month).Scan(&b.ID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("read back budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID, id int64) (core.Budget, error) {
	var b core.Budget
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, month, year, created_by
		 FROM budgets WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents, &b.Month, &b.Year, &b.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	return b, nil
}

// ListBudgets returns the user's budgets for a month together with the spent
// total per category over that month. Spending is summed across the whole
// scope so shared expenses count against the budget.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64, scope []int64, year, month int) ([]BudgetProgress, error) {
	from := core.NewDate(year, month, 1)
	to := core.Date{Time: from.AddDate(0, 1, -1)}

	placeholders, scopeArgs := inClause(scope)
	args := append(scopeArgs, from.String(), to.String(), userID, year, month)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT b.id, b.user_id, b.category_id, b.amount_cents, b.month, b.year, b.created_by,
		        c.name,
		        COALESCE((SELECT SUM(e.amount_cents) FROM expenses e
		                  WHERE e.category_id = b.category_id AND e.user_id IN (%s)
		                    AND e.date >= ? AND e.date <= ?), 0)
		 FROM budgets b
		 JOIN categories c ON c.id = b.category_id
		 WHERE b.user_id = ? AND b.year = ? AND b.month = ?
		 ORDER BY c.name`, placeholders),
		args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []BudgetProgress
	for rows.Next() {
		var bp BudgetProgress
		if err := rows.Scan(&bp.ID, &bp.UserID, &bp.CategoryID, &bp.Amount.Cents, &bp.Month,
			&bp.Year, &bp.CreatedBy, &bp.CategoryName, &bp.Spent.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, bp)
	}
	return budgets, rows.Err()
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}
