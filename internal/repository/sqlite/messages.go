package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sakif/teamline/internal/apperror"
	"github.com/sakif/teamline/internal/model"
)

func (db *DB) CreateMessage(ctx context.Context, m *model.Message) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, sender_id, body, time_sent, is_pinned)
		 VALUES (?, ?, ?, ?, ?)`,
		m.ConversationID, m.SenderID, m.Body, m.TimeSent, m.IsPinned,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating message: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading message id: %w", err)
	}
	return nil
}

func (db *DB) GetMessage(ctx context.Context, id int64) (*model.Message, error) {
	var m model.Message
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, conversation_id, sender_id, body, time_sent, is_pinned
		 FROM messages WHERE id = ?`, id,
	).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.TimeSent, &m.IsPinned)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("message", id)
		}
		return nil, fmt.Errorf("sqlite: getting message %d: %w", id, err)
	}
	return &m, nil
}

func (db *DB) ListMessages(ctx context.Context, convID int64, limit, offset int) ([]model.Message, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, conversation_id, sender_id, body, time_sent, is_pinned
		 FROM messages WHERE conversation_id = ?
		 ORDER BY id DESC LIMIT ? OFFSET ?`,
		convID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages: %w", err)
	}
	msgs, err := collectMessages(rows)
	if err != nil {
		return nil, err
	}
	if err := db.attachReacts(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (db *DB) CountMessages(ctx context.Context, convID int64) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, convID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting messages: %w", err)
	}
	return count, nil
}

// SearchMessages is the whole search index: a scan over the caller's
// conversations. instr(lower(...)) is SQLite's case-insensitive substring
// test — LIKE would need escaping of % and _ in the query text.
// Descending id is the required stable tie-break.
func (db *DB) SearchMessages(ctx context.Context, userID int64, query string) ([]model.Message, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, conversation_id, sender_id, body, time_sent, is_pinned
		 FROM messages
		 WHERE conversation_id IN (SELECT conversation_id FROM members WHERE user_id = ?)
		   AND instr(lower(body), lower(?)) > 0
		 ORDER BY id DESC`,
		userID, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching messages: %w", err)
	}
	msgs, err := collectMessages(rows)
	if err != nil {
		return nil, err
	}
	if err := db.attachReacts(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func collectMessages(rows *sql.Rows) ([]model.Message, error) {
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body,
			&m.TimeSent, &m.IsPinned); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating messages: %w", err)
	}
	return msgs, nil
}

// attachReacts loads the reacts for a batch of messages in one query and
// groups them by (message, react kind). IsThisUserReacted stays false here;
// the service layer fills it in for the requesting caller.
func (db *DB) attachReacts(ctx context.Context, msgs []model.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	placeholders := make([]string, len(msgs))
	args := make([]any, len(msgs))
	index := make(map[int64]*model.Message, len(msgs))
	for i := range msgs {
		placeholders[i] = "?"
		args[i] = msgs[i].ID
		index[msgs[i].ID] = &msgs[i]
		msgs[i].Reacts = []model.React{}
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT message_id, react_id, user_id FROM reacts
		 WHERE message_id IN (`+strings.Join(placeholders, ",")+`)
		 ORDER BY message_id, react_id, user_id`,
		args...)
	if err != nil {
		return fmt.Errorf("sqlite: loading reacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msgID, userID int64
		var reactID int
		if err := rows.Scan(&msgID, &reactID, &userID); err != nil {
			return fmt.Errorf("sqlite: scanning react row: %w", err)
		}
		m := index[msgID]
		// Rows arrive grouped by react_id, so the current kind is always
		// the last element of the slice if it matches.
		if n := len(m.Reacts); n > 0 && m.Reacts[n-1].ReactID == reactID {
			m.Reacts[n-1].UIDs = append(m.Reacts[n-1].UIDs, userID)
		} else {
			m.Reacts = append(m.Reacts, model.React{ReactID: reactID, UIDs: []int64{userID}})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating reacts: %w", err)
	}
	return nil
}

func (db *DB) UpdateMessageBody(ctx context.Context, id int64, body string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE messages SET body = ? WHERE id = ?`, body, id)
	if err != nil {
		return fmt.Errorf("sqlite: updating message %d: %w", id, err)
	}
	return checkExisted(res, "message", id)
}

// DeleteMessage is a hard delete — no tombstone — and takes the message's
// reacts with it.
func (db *DB) DeleteMessage(ctx context.Context, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM reacts WHERE message_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting message reacts: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting message %d: %w", id, err)
	}
	if err := checkExisted(res, "message", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing message delete: %w", err)
	}
	return nil
}

func (db *DB) SetPinned(ctx context.Context, id int64, pinned bool) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE messages SET is_pinned = ? WHERE id = ?`, pinned, id)
	if err != nil {
		return fmt.Errorf("sqlite: setting pin on message %d: %w", id, err)
	}
	return checkExisted(res, "message", id)
}

func (db *DB) HasReact(ctx context.Context, messageID int64, reactID int, userID int64) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reacts WHERE message_id = ? AND react_id = ? AND user_id = ?`,
		messageID, reactID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking react: %w", err)
	}
	return count > 0, nil
}

func (db *DB) AddReact(ctx context.Context, messageID int64, reactID int, userID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO reacts (message_id, react_id, user_id) VALUES (?, ?, ?)`,
		messageID, reactID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: adding react: %w", err)
	}
	return nil
}

func (db *DB) RemoveReact(ctx context.Context, messageID int64, reactID int, userID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM reacts WHERE message_id = ? AND react_id = ? AND user_id = ?`,
		messageID, reactID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: removing react: %w", err)
	}
	return nil
}
