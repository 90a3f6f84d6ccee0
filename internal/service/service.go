// Package service contains the business logic layer: the membership,
// ownership and visibility rules that govern channels, dms and messages.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → resolves tokens, enforces the rules
//	Repository (data layer)  → reads/writes the database
//
// Every operation here follows the same shape: resolve the caller's token
// (access error if it doesn't resolve), validate the target ids and
// arguments (input errors), check membership/ownership (access errors),
// then mutate. Validation happens before any mutation — a failed operation
// must leave no observable trace.
//
// Services accept plain arguments and return domain errors; they know
// nothing about HTTP. The Registry in registry.go wires them all up over a
// shared store, token service and lock table.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sakif/teamline/internal/apperror"
	"github.com/sakif/teamline/internal/auth"
	"github.com/sakif/teamline/internal/model"
	"github.com/sakif/teamline/internal/repository"
)

// core is the plumbing every service shares: storage, token parsing, the
// per-conversation lock table and a logger. Services embed it.
type core struct {
	store  repository.Store
	tokens *auth.TokenService
	locks  *convLocks
	logger *slog.Logger
}

// resolve maps a token to the calling user.
//
// Two things must both hold: the token's signature verifies (so the session
// id inside it is genuine) and the session row still exists (so it hasn't
// been logged out). Every failure collapses to the same opaque access error
// — callers learn nothing about why a token is bad.
func (c *core) resolve(ctx context.Context, token string) (*model.User, error) {
	sessionID, err := c.tokens.Parse(token)
	if err != nil {
		return nil, apperror.Access("invalid token")
	}
	sess, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperror.Access("invalid token")
	}
	user, err := c.store.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving session user: %w", err)
	}
	return user, nil
}

// channel fetches a conversation and insists it is a channel. Unknown ids
// and dm ids both come back as the same input error — a dm id is not a
// valid channel id.
func (c *core) channel(ctx context.Context, id int64) (*model.Conversation, error) {
	conv, err := c.store.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv.Kind != model.KindChannel {
		return nil, apperror.NotFound("channel", id)
	}
	return conv, nil
}

// dm is the counterpart of channel for dm ids.
func (c *core) dm(ctx context.Context, id int64) (*model.Conversation, error) {
	conv, err := c.store.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv.Kind != model.KindDm {
		return nil, apperror.NotFound("dm", id)
	}
	return conv, nil
}

// requireMember returns an access error unless the user belongs to the
// conversation.
func (c *core) requireMember(ctx context.Context, conv *model.Conversation, userID int64) error {
	ok, err := c.store.IsMember(ctx, conv.ID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Access(fmt.Sprintf("user is not a member of the %s", conv.Kind))
	}
	return nil
}

// hasOwnerPermission decides whether a user holds owner-level permission in
// a conversation:
//   - channel: an owner of the channel, or a global owner who is ALSO a
//     member of it (global ownership grants nothing from the outside)
//   - dm: only the creator
func (c *core) hasOwnerPermission(ctx context.Context, conv *model.Conversation, user *model.User) (bool, error) {
	if conv.Kind == model.KindDm {
		return conv.CreatorID == user.ID, nil
	}
	owner, err := c.store.IsOwner(ctx, conv.ID, user.ID)
	if err != nil {
		return false, err
	}
	if owner {
		return true, nil
	}
	if user.IsGlobalOwner {
		return c.store.IsMember(ctx, conv.ID, user.ID)
	}
	return false, nil
}

// profiles converts a user roster to its public representation.
func profiles(users []model.User) []model.Profile {
	out := make([]model.Profile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Profile())
	}
	return out
}

// convLocks serializes mutations per conversation.
//
// Membership and ownership rules are check-then-act: "is the target already
// a member?" followed by "insert the member row". Two overlapping requests
// for the same conversation must not interleave between the check and the
// act, so every mutating conversation operation runs under that
// conversation's mutex. Operations on different conversations proceed
// concurrently. Lock entries are never removed — a mutex is a few words and
// conversations are never destroyed except by dm removal and test wipes.
type convLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func newConvLocks() *convLocks {
	return &convLocks{m: make(map[int64]*sync.Mutex)}
}

// lock acquires the mutex for the conversation and returns the unlock
// function: defer locks.lock(id)() at the top of a mutating operation.
func (l *convLocks) lock(id int64) func() {
	l.mu.Lock()
	m, ok := l.m[id]
	if !ok {
		m = &sync.Mutex{}
		l.m[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
