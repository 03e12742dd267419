package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"duitku/internal/core"
)

// UnsyncedExpenses returns expenses not yet mirrored to the spreadsheet,
// oldest first.
func (r *SQLiteRepository) UnsyncedExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, description, payment_method, date, created_at, created_by
		 FROM expenses WHERE synced = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unsynced expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// UnsyncedIncomes returns incomes not yet mirrored to the spreadsheet,
// oldest first.
func (r *SQLiteRepository) UnsyncedIncomes(ctx context.Context, limit int) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, source, description, date, created_at, created_by
		 FROM incomes WHERE synced = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unsynced incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan unsynced income: %w", err)
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

// ExpenseForMirror fetches one expense by ID regardless of owner, with its
// category label resolved. Only the mirror worker uses this.
func (r *SQLiteRepository) ExpenseForMirror(ctx context.Context, id int64) (ExpenseWithCategory, error) {
	var ec ExpenseWithCategory
	var categoryID sql.NullInt64
	var date string
	err := r.db.QueryRowContext(ctx,
		`SELECT e.id, e.user_id, e.category_id, e.amount_cents, e.description, e.payment_method,
		        e.date, e.created_at, e.created_by, COALESCE(c.name, 'Uncategorized')
		 FROM expenses e
		 LEFT JOIN categories c ON c.id = e.category_id
		 WHERE e.id = ?`, id).
		Scan(&ec.ID, &ec.UserID, &categoryID, &ec.Amount.Cents, &ec.Description,
			&ec.PaymentMethod, &date, &ec.CreatedAt, &ec.CreatedBy, &ec.CategoryName)
	if errors.Is(err, sql.ErrNoRows) {
		return ExpenseWithCategory{}, core.ErrNotFound
	}
	if err != nil {
		return ExpenseWithCategory{}, fmt.Errorf("expense for mirror %d: %w", id, err)
	}
	ec.CategoryID = int64Ptr(categoryID)
	d, err := core.ParseDate(date)
	if err != nil {
		return ExpenseWithCategory{}, fmt.Errorf("parse expense date %q: %w", date, err)
	}
	ec.Date = d
	return ec, nil
}

// IncomeForMirror fetches one income by ID regardless of owner.
func (r *SQLiteRepository) IncomeForMirror(ctx context.Context, id int64) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, source, description, date, created_at, created_by
		 FROM incomes WHERE id = ?`, id)
	in, err := scanIncome(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, core.ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("income for mirror %d: %w", id, err)
	}
	return in, nil
}

func (r *SQLiteRepository) MarkExpenseSynced(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) MarkIncomeSynced(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark income synced: %w", err)
	}
	return requireRow(res)
}
