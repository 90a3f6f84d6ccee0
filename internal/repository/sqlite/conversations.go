package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/teamline/internal/apperror"
	"github.com/sakif/teamline/internal/model"
)

// CreateConversation inserts the conversation plus its initial members and
// owners in one transaction — a conversation must never be observable
// half-populated (a dm with only some of its members would break the
// fixed-member-set rule).
func (db *DB) CreateConversation(ctx context.Context, c *model.Conversation, memberIDs, ownerIDs []int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op, so the defer is safe
	// on every path out of this function.
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (kind, name, is_public, creator_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.Kind, c.Name, c.IsPublic, c.CreatorID, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating conversation: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading conversation id: %w", err)
	}

	for _, uid := range memberIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO members (conversation_id, user_id) VALUES (?, ?)`,
			c.ID, uid); err != nil {
			return fmt.Errorf("sqlite: adding initial member %d: %w", uid, err)
		}
	}
	for _, uid := range ownerIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO owners (conversation_id, user_id) VALUES (?, ?)`,
			c.ID, uid); err != nil {
			return fmt.Errorf("sqlite: adding initial owner %d: %w", uid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing conversation: %w", err)
	}
	return nil
}

func (db *DB) GetConversation(ctx context.Context, id int64) (*model.Conversation, error) {
	var c model.Conversation
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, kind, name, is_public, creator_id, created_at
		 FROM conversations WHERE id = ?`, id,
	).Scan(&c.ID, &c.Kind, &c.Name, &c.IsPublic, &c.CreatorID, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("conversation", id)
		}
		return nil, fmt.Errorf("sqlite: getting conversation %d: %w", id, err)
	}
	return &c, nil
}

func (db *DB) ListConversations(ctx context.Context, kind model.ConversationKind, memberID int64) ([]model.Conversation, error) {
	query := `SELECT id, kind, name, is_public, creator_id, created_at
	          FROM conversations WHERE kind = ?`
	args := []any{kind}
	if memberID != 0 {
		query += ` AND id IN (SELECT conversation_id FROM members WHERE user_id = ?)`
		args = append(args, memberID)
	}
	query += ` ORDER BY id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing conversations: %w", err)
	}
	defer rows.Close()

	var convs []model.Conversation
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.Kind, &c.Name, &c.IsPublic, &c.CreatorID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning conversation row: %w", err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating conversations: %w", err)
	}
	return convs, nil
}

func (db *DB) IsMember(ctx context.Context, convID, userID int64) (bool, error) {
	return db.existsIn(ctx, "members", convID, userID)
}

func (db *DB) IsOwner(ctx context.Context, convID, userID int64) (bool, error) {
	return db.existsIn(ctx, "owners", convID, userID)
}

// existsIn probes one of the two membership join tables. The table name is
// compile-time constant at every call site — never user input.
func (db *DB) existsIn(ctx context.Context, table string, convID, userID int64) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE conversation_id = ? AND user_id = ?`, table),
		convID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking %s: %w", table, err)
	}
	return count > 0, nil
}

func (db *DB) AddMember(ctx context.Context, convID, userID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO members (conversation_id, user_id) VALUES (?, ?)`, convID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: adding member %d to conversation %d: %w", userID, convID, err)
	}
	return nil
}

// RemoveMember also drops any owner row — owners ⊆ members must hold after
// every mutation, and a departed owner is just gone.
func (db *DB) RemoveMember(ctx context.Context, convID, userID int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM owners WHERE conversation_id = ? AND user_id = ?`, convID, userID); err != nil {
		return fmt.Errorf("sqlite: removing owner row: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM members WHERE conversation_id = ? AND user_id = ?`, convID, userID); err != nil {
		return fmt.Errorf("sqlite: removing member row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing member removal: %w", err)
	}
	return nil
}

func (db *DB) AddOwner(ctx context.Context, convID, userID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO owners (conversation_id, user_id) VALUES (?, ?)`, convID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: adding owner %d to conversation %d: %w", userID, convID, err)
	}
	return nil
}

func (db *DB) RemoveOwner(ctx context.Context, convID, userID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM owners WHERE conversation_id = ? AND user_id = ?`, convID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: removing owner %d from conversation %d: %w", userID, convID, err)
	}
	return nil
}

func (db *DB) ListMembers(ctx context.Context, convID int64) ([]model.User, error) {
	return db.listRoster(ctx, "members", convID)
}

func (db *DB) ListOwners(ctx context.Context, convID int64) ([]model.User, error) {
	return db.listRoster(ctx, "owners", convID)
}

func (db *DB) listRoster(ctx context.Context, table string, convID int64) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT u.id, u.email, u.password_hash, u.name_first, u.name_last, u.handle, u.is_global_owner
		 FROM users u JOIN %s m ON m.user_id = u.id
		 WHERE m.conversation_id = ? ORDER BY u.id`, table),
		convID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s: %w", table, err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("sqlite: scanning roster row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s: %w", table, err)
	}
	return users, nil
}

func (db *DB) CountOwners(ctx context.Context, convID int64) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM owners WHERE conversation_id = ?`, convID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting owners: %w", err)
	}
	return count, nil
}

// DeleteConversation removes the conversation and everything hanging off it.
// The cascade is spelled out here, at the application layer, rather than as
// ON DELETE CASCADE triggers — deleting a dm deletes its messages, and that
// behaviour should be visible in code, not buried in the schema.
func (db *DB) DeleteConversation(ctx context.Context, convID int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM reacts WHERE message_id IN
		   (SELECT id FROM messages WHERE conversation_id = ?)`, convID); err != nil {
		return fmt.Errorf("sqlite: deleting conversation reacts: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id = ?`, convID); err != nil {
		return fmt.Errorf("sqlite: deleting conversation messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM owners WHERE conversation_id = ?`, convID); err != nil {
		return fmt.Errorf("sqlite: deleting conversation owners: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM members WHERE conversation_id = ?`, convID); err != nil {
		return fmt.Errorf("sqlite: deleting conversation members: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM conversations WHERE id = ?`, convID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting conversation %d: %w", convID, err)
	}
	if err := checkExisted(res, "conversation", convID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing conversation delete: %w", err)
	}
	return nil
}
