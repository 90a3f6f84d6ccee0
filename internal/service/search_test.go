package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/teamline/internal/apperror"
)

func TestSearch_QueryBounds(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")

	_, err := reg.Search.Query(ctx, a.Token, "")
	assert.ErrorIs(t, err, apperror.ErrInput)
	_, err = reg.Search.Query(ctx, a.Token, strings.Repeat("x", 1001))
	assert.ErrorIs(t, err, apperror.ErrInput)
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	ch := createTestChannel(t, reg, a.Token, "general", true)

	sendTestMessage(t, reg, a.Token, ch, "Deploy finished")
	sendTestMessage(t, reg, a.Token, ch, "redeploying now")
	sendTestMessage(t, reg, a.Token, ch, "lunch plans?")

	got, err := reg.Search.Query(ctx, a.Token, "DEPLOY")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first, same ordering as pagination.
	assert.Equal(t, "redeploying now", got[0].Body)
	assert.Equal(t, "Deploy finished", got[1].Body)
}

func TestSearch_ScopedToCallersConversations(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	b := registerTestUser(t, reg, "b@example.com", "Brian", "Kernighan")
	d := registerTestUser(t, reg, "d@example.com", "Dana", "Ulery")

	shared := createTestChannel(t, reg, a.Token, "shared", true)
	require.NoError(t, reg.Channels.Join(ctx, b.Token, shared))
	private := createTestChannel(t, reg, b.Token, "b-only", true)
	dm, err := reg.Dms.Create(ctx, a.Token, []int64{d.UserID})
	require.NoError(t, err)

	sendTestMessage(t, reg, a.Token, shared, "keyword in shared channel")
	sendTestMessage(t, reg, b.Token, private, "keyword where a can't see")
	sendTestMessage(t, reg, d.Token, dm, "keyword in the dm")

	// a sees the shared channel and the dm; b's own channel stays hidden.
	got, err := reg.Search.Query(ctx, a.Token, "keyword")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "keyword in the dm", got[0].Body)
	assert.Equal(t, "keyword in shared channel", got[1].Body)

	// d is only in the dm.
	got, err = reg.Search.Query(ctx, d.Token, "keyword")
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Leaving a conversation removes its messages from search.
	require.NoError(t, reg.Dms.Leave(ctx, a.Token, dm))
	got, err = reg.Search.Query(ctx, a.Token, "keyword")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "keyword in shared channel", got[0].Body)
}

func TestSearch_NoMatchesIsEmptyNotNil(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")

	got, err := reg.Search.Query(ctx, a.Token, "nothing anywhere")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_MarksCallersReacts(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	b := registerTestUser(t, reg, "b@example.com", "Brian", "Kernighan")
	ch := createTestChannel(t, reg, a.Token, "general", true)
	require.NoError(t, reg.Channels.Join(ctx, b.Token, ch))
	id := sendTestMessage(t, reg, a.Token, ch, "findable")
	require.NoError(t, reg.Messages.React(ctx, b.Token, id, 1))

	got, err := reg.Search.Query(ctx, b.Token, "findable")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Reacts, 1)
	assert.True(t, got[0].Reacts[0].IsThisUserReacted)

	got, err = reg.Search.Query(ctx, a.Token, "findable")
	require.NoError(t, err)
	assert.False(t, got[0].Reacts[0].IsThisUserReacted)
}

func TestAdminClear_WipesEverything(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	ch := createTestChannel(t, reg, a.Token, "general", true)
	sendTestMessage(t, reg, a.Token, ch, "soon gone")
	_, err := reg.Standups.Start(ctx, a.Token, ch, 3600)
	require.NoError(t, err)

	require.NoError(t, reg.Admin.Clear(ctx))

	// Sessions went with the rest: the old token is dead.
	_, err = reg.Users.List(ctx, a.Token)
	assert.ErrorIs(t, err, apperror.ErrAccess)

	// A fresh registrant starts the world over as global owner, and the id
	// sequences restart from scratch.
	fresh, err := reg.Auth.Register(ctx, "new@example.com", "password123", "New", "Start")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.UserID)

	chans, err := reg.Channels.List(ctx, fresh.Token, true)
	require.NoError(t, err)
	assert.Empty(t, chans)
}
