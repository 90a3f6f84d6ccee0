package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/teamline/internal/apperror"
	"github.com/sakif/teamline/internal/model"
	"github.com/sakif/teamline/internal/repository"
)

// Compile-time check that *DB satisfies the full storage surface.
// `var _ X = (*Y)(nil)` fails the build the moment a method goes missing,
// instead of at some distant call site.
var _ repository.Store = (*DB)(nil)

func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, name_first, name_last, handle, is_global_owner)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.NameFirst, u.NameLast, u.Handle, u.IsGlobalOwner,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	// LastInsertId is the AUTOINCREMENT value SQLite just allocated.
	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}
	return nil
}

const userColumns = `id, email, password_hash, name_first, name_last, handle, is_global_owner`

func scanUser(row interface{ Scan(...any) error }, u *model.User) error {
	return row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.NameFirst, &u.NameLast,
		&u.Handle, &u.IsGlobalOwner)
}

func (db *DB) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id), &u)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return &u, nil
}

// GetUserByEmail returns (nil, nil) when the email is unregistered — the
// callers (login, email-uniqueness checks) treat absence as an answer, not
// an error.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email), &u)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return &u, nil
}

func (db *DB) HandleTaken(ctx context.Context, handle string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE handle = ?`, handle).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking handle: %w", err)
	}
	return count > 0, nil
}

func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

func (db *DB) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return count, nil
}

func (db *DB) UpdateUserName(ctx context.Context, id int64, first, last string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET name_first = ?, name_last = ? WHERE id = ?`, first, last, id)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d name: %w", id, err)
	}
	return checkExisted(res, "user", id)
}

func (db *DB) UpdateUserEmail(ctx context.Context, id int64, email string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET email = ? WHERE id = ?`, email, id)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d email: %w", id, err)
	}
	return checkExisted(res, "user", id)
}

// checkExisted turns a zero-rows-affected UPDATE/DELETE into a NotFound —
// cheaper than a separate existence SELECT.
func checkExisted(res sql.Result, resource string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
