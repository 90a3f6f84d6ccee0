// Package repository defines the storage interfaces the service layer
// depends on. The concrete implementation lives in repository/sqlite; tests
// swap in an in-memory database through the same interfaces.
//
// Services receive these interfaces (not *sqlite.DB) — programming to an
// interface keeps the business rules storage-agnostic and testable.
package repository

import (
	"context"

	"github.com/sakif/teamline/internal/model"
)

// UserRepository manages user accounts and the directory fields.
type UserRepository interface {
	// CreateUser inserts the user and fills in its allocated ID.
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	// GetUserByEmail returns (nil, nil) when no account has that email —
	// absence is an expected answer here (login checks, uniqueness checks),
	// not an error condition.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// HandleTaken reports whether any user already holds the handle.
	HandleTaken(ctx context.Context, handle string) (bool, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUserName(ctx context.Context, id int64, first, last string) error
	UpdateUserEmail(ctx context.Context, id int64, email string) error
}

// SessionRepository manages login sessions. One row per device; deleting a
// row revokes exactly that device's token.
type SessionRepository interface {
	CreateSession(ctx context.Context, s *model.Session) error
	// GetSession returns (nil, nil) when the session does not exist (i.e.
	// the token was never issued or has been logged out).
	GetSession(ctx context.Context, id string) (*model.Session, error)
	// DeleteSession reports whether a row was actually removed.
	DeleteSession(ctx context.Context, id string) (bool, error)
}

// ConversationRepository manages channels/dms and their membership sets.
type ConversationRepository interface {
	// CreateConversation inserts the conversation with its initial members
	// and owners in one transaction, and fills in the allocated ID.
	CreateConversation(ctx context.Context, c *model.Conversation, memberIDs, ownerIDs []int64) error
	GetConversation(ctx context.Context, id int64) (*model.Conversation, error)
	// ListConversations returns conversations of the given kind. memberID
	// restricts to conversations that user belongs to; pass 0 for all.
	ListConversations(ctx context.Context, kind model.ConversationKind, memberID int64) ([]model.Conversation, error)
	IsMember(ctx context.Context, convID, userID int64) (bool, error)
	IsOwner(ctx context.Context, convID, userID int64) (bool, error)
	AddMember(ctx context.Context, convID, userID int64) error
	// RemoveMember drops the member row and any owner row for the user.
	RemoveMember(ctx context.Context, convID, userID int64) error
	AddOwner(ctx context.Context, convID, userID int64) error
	RemoveOwner(ctx context.Context, convID, userID int64) error
	ListMembers(ctx context.Context, convID int64) ([]model.User, error)
	ListOwners(ctx context.Context, convID int64) ([]model.User, error)
	CountOwners(ctx context.Context, convID int64) (int, error)
	// DeleteConversation removes the conversation and, as an explicit
	// application-level cascade, its messages, reacts and membership rows.
	DeleteConversation(ctx context.Context, convID int64) error
}

// MessageRepository manages the per-conversation message logs.
type MessageRepository interface {
	// CreateMessage appends the message and fills in its allocated ID.
	// Message ids come from a single sequence shared by every conversation,
	// so they are monotonic system-wide.
	CreateMessage(ctx context.Context, m *model.Message) error
	// GetMessage returns the message without its reacts loaded.
	GetMessage(ctx context.Context, id int64) (*model.Message, error)
	// ListMessages returns up to limit messages of the conversation, newest
	// first (descending id), skipping offset newest ones. Reacts are loaded.
	ListMessages(ctx context.Context, convID int64, limit, offset int) ([]model.Message, error)
	CountMessages(ctx context.Context, convID int64) (int, error)
	// SearchMessages returns every message whose body contains the query as
	// a case-insensitive substring, across all conversations the user is a
	// member of, in descending id order. Reacts are loaded.
	SearchMessages(ctx context.Context, userID int64, query string) ([]model.Message, error)
	UpdateMessageBody(ctx context.Context, id int64, body string) error
	DeleteMessage(ctx context.Context, id int64) error
	SetPinned(ctx context.Context, id int64, pinned bool) error
	HasReact(ctx context.Context, messageID int64, reactID int, userID int64) (bool, error)
	AddReact(ctx context.Context, messageID int64, reactID int, userID int64) error
	RemoveReact(ctx context.Context, messageID int64, reactID int, userID int64) error
}

// Store is the full storage surface, implemented by sqlite.DB. Clear wipes
// every table — it exists for test isolation only.
type Store interface {
	UserRepository
	SessionRepository
	ConversationRepository
	MessageRepository
	Clear(ctx context.Context) error
}
