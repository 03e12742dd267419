package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"duitku/internal/core"
)

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	var familyID sql.NullInt64
	err := row.Scan(&u.ID, &u.Name, &u.Email, &familyID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, err
	}
	u.FamilyID = int64Ptr(familyID)
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, family_id, created_at FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, family_id, created_at FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetCredentials returns the user together with the stored password hash.
// Only the auth flow should call this.
func (r *SQLiteRepository) GetCredentials(ctx context.Context, email string) (core.User, string, error) {
	var u core.User
	var familyID sql.NullInt64
	var hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, family_id, password_hash, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Name, &u.Email, &familyID, &hash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, "", core.ErrNotFound
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("get credentials: %w", err)
	}
	u.FamilyID = int64Ptr(familyID)
	return u, hash, nil
}

// RegisterUser creates the user and, when familyName is non-empty, joins an
// existing family of that name or creates a new one owned by the user. The
// whole flow runs in one transaction so a half-registered user never exists.
func (r *SQLiteRepository) RegisterUser(ctx context.Context, name, email, passwordHash, familyName string) (core.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.User{}, fmt.Errorf("begin register tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)`,
		name, email, passwordHash)
	if isUniqueViolation(err) {
		return core.User{}, core.ErrEmailTaken
	}
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	userID, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}

	user := core.User{ID: userID, Name: name, Email: email}

	if familyName != "" {
		var familyID int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM families WHERE name = ?`, familyName).Scan(&familyID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			res, err := tx.ExecContext(ctx,
				`INSERT INTO families (name, owner_id) VALUES (?, ?)`, familyName, userID)
			if err != nil {
				return core.User{}, fmt.Errorf("insert family: %w", err)
			}
			familyID, err = res.LastInsertId()
			if err != nil {
				return core.User{}, fmt.Errorf("family id: %w", err)
			}
		case err != nil:
			return core.User{}, fmt.Errorf("find family: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET family_id = ? WHERE id = ?`, familyID, userID); err != nil {
			return core.User{}, fmt.Errorf("link user to family: %w", err)
		}
		user.FamilyID = &familyID
	}

	if err := tx.Commit(); err != nil {
		return core.User{}, fmt.Errorf("commit register tx: %w", err)
	}
	return user, nil
}

func (r *SQLiteRepository) GetFamily(ctx context.Context, id int64) (core.Family, error) {
	var f core.Family
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, created_at FROM families WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.OwnerID, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Family{}, core.ErrNotFound
	}
	if err != nil {
		return core.Family{}, fmt.Errorf("get family %d: %w", id, err)
	}
	return f, nil
}

func (r *SQLiteRepository) FindFamilyByName(ctx context.Context, name string) (core.Family, error) {
	var f core.Family
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, created_at FROM families WHERE name = ?`, name).
		Scan(&f.ID, &f.Name, &f.OwnerID, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Family{}, core.ErrNotFound
	}
	if err != nil {
		return core.Family{}, fmt.Errorf("find family by name: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) CreateFamily(ctx context.Context, name string, ownerID int64) (core.Family, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Family{}, fmt.Errorf("begin create family tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO families (name, owner_id) VALUES (?, ?)`, name, ownerID)
	if err != nil {
		return core.Family{}, fmt.Errorf("insert family: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Family{}, fmt.Errorf("family id: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET family_id = ? WHERE id = ?`, id, ownerID); err != nil {
		return core.Family{}, fmt.Errorf("link owner to family: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Family{}, fmt.Errorf("commit create family tx: %w", err)
	}
	return core.Family{ID: id, Name: name, OwnerID: ownerID}, nil
}

// FamilyMembers returns every user currently linked to the family.
func (r *SQLiteRepository) FamilyMembers(ctx context.Context, familyID int64) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, family_id, created_at FROM users WHERE family_id = ? ORDER BY id`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer rows.Close()

	var members []core.User
	for rows.Next() {
		var u core.User
		var fid sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &fid, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		u.FamilyID = int64Ptr(fid)
		members = append(members, u)
	}
	return members, rows.Err()
}

// SetUserFamily links a user to a family; pass nil to detach.
func (r *SQLiteRepository) SetUserFamily(ctx context.Context, userID int64, familyID *int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET family_id = ? WHERE id = ?`, nullInt64(familyID), userID)
	if err != nil {
		return fmt.Errorf("set user family: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set user family: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
