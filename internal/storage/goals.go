package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"duitku/internal/core"
)

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.FinancialGoal) (core.FinancialGoal, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO financial_goals (user_id, name, target_cents, current_cents, target_date, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.Target.Cents, g.Current.Cents, nullDate(g.TargetDate), g.CreatedBy)
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("insert goal: %w", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("goal id: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id int64) (core.FinancialGoal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, target_cents, current_cents, target_date, created_at, created_by
		 FROM financial_goals WHERE id = ? AND user_id = ?`, id, userID)
	g, err := scanGoal(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FinancialGoal{}, core.ErrNotFound
	}
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("get goal %d: %w", id, err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID int64) ([]core.FinancialGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, target_cents, current_cents, target_date, created_at, created_by
		 FROM financial_goals WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.FinancialGoal
	for rows.Next() {
		g, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.FinancialGoal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE financial_goals SET name = ?, target_cents = ?, current_cents = ?, target_date = ?
		 WHERE id = ? AND user_id = ?`,
		g.Name, g.Target.Cents, g.Current.Cents, nullDate(g.TargetDate), g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

// AddSavings atomically increments the goal's saved amount and returns the
// updated row.
func (r *SQLiteRepository) AddSavings(ctx context.Context, userID, id int64, amount core.Money) (core.FinancialGoal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("begin add savings tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE financial_goals SET current_cents = current_cents + ?
		 WHERE id = ? AND user_id = ?`, amount.Cents, id, userID)
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("add savings: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.FinancialGoal{}, err
	}

	row := tx.QueryRowContext(ctx,
		`SELECT id, user_id, name, target_cents, current_cents, target_date, created_at, created_by
		 FROM financial_goals WHERE id = ?`, id)
	g, err := scanGoal(row.Scan)
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("read back goal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.FinancialGoal{}, fmt.Errorf("commit add savings tx: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM financial_goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res)
}

func scanGoal(scan func(...any) error) (core.FinancialGoal, error) {
	var g core.FinancialGoal
	var targetDate sql.NullString
	if err := scan(&g.ID, &g.UserID, &g.Name, &g.Target.Cents, &g.Current.Cents,
		&targetDate, &g.CreatedAt, &g.CreatedBy); err != nil {
		return core.FinancialGoal{}, err
	}
	d, err := scanDate(targetDate)
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("parse goal target date: %w", err)
	}
	g.TargetDate = d
	return g, nil
}
