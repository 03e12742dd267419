package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"duitku/internal/core"
)

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, created_by) VALUES (?, ?, ?)`,
		c.UserID, c.Name, c.CreatedBy)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_by, created_at FROM categories WHERE id = ? AND user_id = ?`,
		id, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedBy, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_by, created_at FROM categories WHERE user_id = ? ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, userID, id int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ? AND user_id = ?`, name, id, userID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateCustomReport(ctx context.Context, cr core.CustomReport) (core.CustomReport, error) {
	filters, err := json.Marshal(cr.Filters)
	if err != nil {
		return core.CustomReport{}, fmt.Errorf("marshal report filters: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO custom_reports (user_id, name, filters) VALUES (?, ?, ?)`,
		cr.UserID, cr.Name, string(filters))
	if err != nil {
		return core.CustomReport{}, fmt.Errorf("insert custom report: %w", err)
	}
	cr.ID, err = res.LastInsertId()
	if err != nil {
		return core.CustomReport{}, fmt.Errorf("custom report id: %w", err)
	}
	return cr, nil
}

func (r *SQLiteRepository) GetCustomReport(ctx context.Context, userID, id int64) (core.CustomReport, error) {
	var cr core.CustomReport
	var filters string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, filters, created_at FROM custom_reports WHERE id = ? AND user_id = ?`,
		id, userID).
		Scan(&cr.ID, &cr.UserID, &cr.Name, &filters, &cr.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CustomReport{}, core.ErrNotFound
	}
	if err != nil {
		return core.CustomReport{}, fmt.Errorf("get custom report %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(filters), &cr.Filters); err != nil {
		return core.CustomReport{}, fmt.Errorf("unmarshal report filters: %w", err)
	}
	return cr, nil
}

func (r *SQLiteRepository) ListCustomReports(ctx context.Context, userID int64) ([]core.CustomReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, filters, created_at FROM custom_reports WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list custom reports: %w", err)
	}
	defer rows.Close()

	var reports []core.CustomReport
	for rows.Next() {
		var cr core.CustomReport
		var filters string
		if err := rows.Scan(&cr.ID, &cr.UserID, &cr.Name, &filters, &cr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan custom report: %w", err)
		}
		if err := json.Unmarshal([]byte(filters), &cr.Filters); err != nil {
			return nil, fmt.Errorf("unmarshal report filters: %w", err)
		}
		reports = append(reports, cr)
	}
	return reports, rows.Err()
}

func (r *SQLiteRepository) DeleteCustomReport(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM custom_reports WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete custom report: %w", err)
	}
	return requireRow(res)
}
