package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"duitku/internal/core"
)

func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_transactions
		 (user_id, type, amount_cents, description, category_id, source, frequency, start_date, next_date, end_date, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.UserID, string(rt.Kind), rt.Amount.Cents, rt.Description, nullInt64(rt.CategoryID),
		rt.Source, string(rt.Frequency), rt.StartDate.String(), rt.NextDate.String(),
		nullDate(rt.EndDate), rt.CreatedBy)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("insert recurring transaction: %w", err)
	}
	rt.ID, err = res.LastInsertId()
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("recurring transaction id: %w", err)
	}
	return rt, nil
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, userID, id int64) (core.RecurringTransaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, type, amount_cents, description, category_id, source, frequency,
		        start_date, next_date, end_date, created_at, created_by
		 FROM recurring_transactions WHERE id = ? AND user_id = ?`, id, userID)
	rt, err := scanRecurring(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringTransaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("get recurring transaction %d: %w", id, err)
	}
	return rt, nil
}

// ListRecurring returns the definitions of every user in the scope, soonest
// next date first.
func (r *SQLiteRepository) ListRecurring(ctx context.Context, userIDs []int64) ([]core.RecurringTransaction, error) {
	placeholders, args := inClause(userIDs)
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, user_id, type, amount_cents, description, category_id, source, frequency,
		        start_date, next_date, end_date, created_at, created_by
		 FROM recurring_transactions WHERE user_id IN (%s) ORDER BY next_date, id`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	defer rows.Close()
	return collectRecurring(rows)
}

// DueRecurring returns the scope's definitions whose next_date is on or
// before asOf. An empty scope means every user; the worker binary drains all
// schedules that way.
func (r *SQLiteRepository) DueRecurring(ctx context.Context, asOf core.Date, userIDs []int64) ([]core.RecurringTransaction, error) {
	query := `SELECT id, user_id, type, amount_cents, description, category_id, source, frequency,
	                 start_date, next_date, end_date, created_at, created_by
	          FROM recurring_transactions WHERE next_date <= ? ORDER BY id`
	args := []any{asOf.String()}
	if len(userIDs) > 0 {
		placeholders, scopeArgs := inClause(userIDs)
		query = fmt.Sprintf(
			`SELECT id, user_id, type, amount_cents, description, category_id, source, frequency,
			        start_date, next_date, end_date, created_at, created_by
			 FROM recurring_transactions WHERE next_date <= ? AND user_id IN (%s) ORDER BY id`, placeholders)
		args = append(args, scopeArgs...)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list due recurring transactions: %w", err)
	}
	defer rows.Close()
	return collectRecurring(rows)
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recurring_transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	return requireRow(res)
}

// MaterializeExpense inserts the concrete expense and advances the
// definition's next_date in one transaction. Either both happen or neither.
func (r *SQLiteRepository) MaterializeExpense(ctx context.Context, e core.Expense, recurringID int64, newNext core.Date) (core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin materialize tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (user_id, category_id, amount_cents, description, payment_method, date, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, nullInt64(e.CategoryID), e.Amount.Cents, e.Description, e.PaymentMethod, e.Date.String(), e.CreatedBy)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert materialized expense: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("materialized expense id: %w", err)
	}

	if err := advanceRecurring(ctx, tx, recurringID, newNext); err != nil {
		return core.Expense{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit materialize tx: %w", err)
	}
	return e, nil
}

// MaterializeIncome is the income counterpart of MaterializeExpense.
func (r *SQLiteRepository) MaterializeIncome(ctx context.Context, in core.Income, recurringID int64, newNext core.Date) (core.Income, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Income{}, fmt.Errorf("begin materialize tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO incomes (user_id, amount_cents, source, description, date, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.UserID, in.Amount.Cents, in.Source, in.Description, in.Date.String(), in.CreatedBy)
	if err != nil {
		return core.Income{}, fmt.Errorf("insert materialized income: %w", err)
	}
	in.ID, err = res.LastInsertId()
	if err != nil {
		return core.Income{}, fmt.Errorf("materialized income id: %w", err)
	}

	if err := advanceRecurring(ctx, tx, recurringID, newNext); err != nil {
		return core.Income{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Income{}, fmt.Errorf("commit materialize tx: %w", err)
	}
	return in, nil
}

func advanceRecurring(ctx context.Context, tx *sql.Tx, id int64, newNext core.Date) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE recurring_transactions SET next_date = ? WHERE id = ?`, newNext.String(), id)
	if err != nil {
		return fmt.Errorf("advance recurring transaction: %w", err)
	}
	return requireRow(res)
}

func scanRecurring(scan func(...any) error) (core.RecurringTransaction, error) {
	var rt core.RecurringTransaction
	var kind, frequency, startDate, nextDate string
	var categoryID sql.NullInt64
	var endDate sql.NullString
	if err := scan(&rt.ID, &rt.UserID, &kind, &rt.Amount.Cents, &rt.Description, &categoryID,
		&rt.Source, &frequency, &startDate, &nextDate, &endDate, &rt.CreatedAt, &rt.CreatedBy); err != nil {
		return core.RecurringTransaction{}, err
	}
	rt.Kind = core.TransactionKind(kind)
	rt.Frequency = core.Frequency(frequency)
	rt.CategoryID = int64Ptr(categoryID)

	var err error
	if rt.StartDate, err = core.ParseDate(startDate); err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("parse start date %q: %w", startDate, err)
	}
	if rt.NextDate, err = core.ParseDate(nextDate); err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("parse next date %q: %w", nextDate, err)
	}
	if rt.EndDate, err = scanDate(endDate); err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("parse end date: %w", err)
	}
	return rt, nil
}

func collectRecurring(rows *sql.Rows) ([]core.RecurringTransaction, error) {
	var defs []core.RecurringTransaction
	for rows.Next() {
		rt, err := scanRecurring(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan recurring transaction: %w", err)
		}
		defs = append(defs, rt)
	}
	return defs, rows.Err()
}
