package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/teamline/internal/model"
)

func (db *DB) CreateSession(ctx context.Context, s *model.Session) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id) VALUES (?, ?)`, s.ID, s.UserID)
	if err != nil {
		return fmt.Errorf("sqlite: creating session: %w", err)
	}
	return nil
}

// GetSession returns (nil, nil) for an unknown session id. The service layer
// turns that into an access error — the repository just reports absence.
func (db *DB) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id FROM sessions WHERE id = ?`, id).Scan(&s.ID, &s.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting session: %w", err)
	}
	return &s, nil
}

func (db *DB) DeleteSession(ctx context.Context, id string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}
