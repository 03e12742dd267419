package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"duitku/internal/core"
)

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, category_id, amount_cents, description, payment_method, date, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, nullInt64(e.CategoryID), e.Amount.Cents, e.Description, e.PaymentMethod, e.Date.String(), e.CreatedBy)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, description, payment_method, date, created_at, created_by
		 FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// ListExpenses returns expenses for every user in the scope, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userIDs []int64) ([]core.Expense, error) {
	placeholders, args := inClause(userIDs)
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, user_id, category_id, amount_cents, description, payment_method, date, created_at, created_by
		 FROM expenses WHERE user_id IN (%s) ORDER BY date DESC, id DESC`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET category_id = ?, amount_cents = ?, description = ?, payment_method = ?, date = ?, synced = 0
		 WHERE id = ? AND user_id = ?`,
		nullInt64(e.CategoryID), e.Amount.Cents, e.Description, e.PaymentMethod, e.Date.String(), e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (user_id, amount_cents, source, description, date, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.UserID, in.Amount.Cents, in.Source, in.Description, in.Date.String(), in.CreatedBy)
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}
	in.ID, err = res.LastInsertId()
	if err != nil {
		return core.Income{}, fmt.Errorf("income id: %w", err)
	}
	return in, nil
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, userID, id int64) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, source, description, date, created_at, created_by
		 FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	in, err := scanIncome(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, core.ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("get income %d: %w", id, err)
	}
	return in, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, userIDs []int64) ([]core.Income, error) {
	placeholders, args := inClause(userIDs)
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, user_id, amount_cents, source, description, date, created_at, created_by
		 FROM incomes WHERE user_id IN (%s) ORDER BY date DESC, id DESC`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, in core.Income) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET amount_cents = ?, source = ?, description = ?, date = ?, synced = 0
		 WHERE id = ? AND user_id = ?`,
		in.Amount.Cents, in.Source, in.Description, in.Date.String(), in.ID, in.UserID)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return requireRow(res)
}

func scanExpense(scan func(...any) error) (core.Expense, error) {
	var e core.Expense
	var categoryID sql.NullInt64
	var date string
	if err := scan(&e.ID, &e.UserID, &categoryID, &e.Amount.Cents, &e.Description,
		&e.PaymentMethod, &date, &e.CreatedAt, &e.CreatedBy); err != nil {
		return core.Expense{}, err
	}
	e.CategoryID = int64Ptr(categoryID)
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date %q: %w", date, err)
	}
	e.Date = d
	return e, nil
}

func scanIncome(scan func(...any) error) (core.Income, error) {
	var in core.Income
	var date string
	if err := scan(&in.ID, &in.UserID, &in.Amount.Cents, &in.Source, &in.Description,
		&date, &in.CreatedAt, &in.CreatedBy); err != nil {
		return core.Income{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Income{}, fmt.Errorf("parse income date %q: %w", date, err)
	}
	in.Date = d
	return in, nil
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
