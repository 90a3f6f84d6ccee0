package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/teamline/internal/apperror"
)

func TestDmCreate_NameIsSortedHandles(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	// Handles sort as: adalovelace, briankernighan, carolshaw — but we
	// create the dm in a different order to prove it's sorted, not joined.
	a := registerTestUser(t, reg, "a@example.com", "Carol", "Shaw")
	b := registerTestUser(t, reg, "b@example.com", "Ada", "Lovelace")
	c := registerTestUser(t, reg, "c@example.com", "Brian", "Kernighan")

	id, err := reg.Dms.Create(ctx, a.Token, []int64{c.UserID, b.UserID})
	require.NoError(t, err)

	details, err := reg.Dms.Details(ctx, b.Token, id)
	require.NoError(t, err)
	assert.Equal(t, "adalovelace, briankernighan, carolshaw", details.Name)
	assert.Len(t, details.Members, 3)
}

func TestDmCreate_SoloDm(t *testing.T) {
	// An empty uIds list is legal: a dm with only the creator in it.
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")

	id, err := reg.Dms.Create(ctx, a.Token, nil)
	require.NoError(t, err)

	details, err := reg.Dms.Details(ctx, a.Token, id)
	require.NoError(t, err)
	assert.Equal(t, "adalovelace", details.Name)
	require.Len(t, details.Members, 1)
	assert.Equal(t, a.UserID, details.Members[0].ID)
}

func TestDmCreate_InvalidMemberLists(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	b := registerTestUser(t, reg, "b@example.com", "Brian", "Kernighan")

	_, err := reg.Dms.Create(ctx, a.Token, []int64{b.UserID, b.UserID})
	assert.ErrorIs(t, err, apperror.ErrInput, "duplicate uId")

	_, err = reg.Dms.Create(ctx, a.Token, []int64{a.UserID})
	assert.ErrorIs(t, err, apperror.ErrInput, "creator listed in uIds")

	_, err = reg.Dms.Create(ctx, a.Token, []int64{9999})
	assert.ErrorIs(t, err, apperror.ErrInput, "unknown uId")
}

func TestDmList_OnlyMine(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	b := registerTestUser(t, reg, "b@example.com", "Brian", "Kernighan")
	c := registerTestUser(t, reg, "c@example.com", "Carol", "Shaw")

	shared, err := reg.Dms.Create(ctx, a.Token, []int64{b.UserID})
	require.NoError(t, err)
	_, err = reg.Dms.Create(ctx, b.Token, []int64{c.UserID})
	require.NoError(t, err)

	got, err := reg.Dms.List(ctx, a.Token)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, shared, got[0].ID)

	// There is no "list all" for dms — b simply sees both of theirs.
	both, err := reg.Dms.List(ctx, b.Token)
	require.NoError(t, err)
	assert.Len(t, both, 2)
}

func TestDmDetails_NonMemberRejected(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	c := registerTestUser(t, reg, "c@example.com", "Carol", "Shaw")
	id, err := reg.Dms.Create(ctx, a.Token, nil)
	require.NoError(t, err)

	_, err = reg.Dms.Details(ctx, c.Token, id)
	assert.ErrorIs(t, err, apperror.ErrAccess)
	_, err = reg.Dms.Details(ctx, a.Token, id+99)
	assert.ErrorIs(t, err, apperror.ErrInput)
}

func TestDmLeave_NamePersists(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	b := registerTestUser(t, reg, "b@example.com", "Brian", "Kernighan")
	id, err := reg.Dms.Create(ctx, a.Token, []int64{b.UserID})
	require.NoError(t, err)

	// The creator may leave like anyone else; the dm lives on for b, and
	// its name still reflects the founding roster.
	require.NoError(t, reg.Dms.Leave(ctx, a.Token, id))

	details, err := reg.Dms.Details(ctx, b.Token, id)
	require.NoError(t, err)
	assert.Equal(t, "adalovelace, briankernighan", details.Name)
	require.Len(t, details.Members, 1)

	_, err = reg.Dms.Details(ctx, a.Token, id)
	assert.ErrorIs(t, err, apperror.ErrAccess, "the departed creator is now an outsider")
}

func TestDmRemove(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	b := registerTestUser(t, reg, "b@example.com", "Brian", "Kernighan")
	id, err := reg.Dms.Create(ctx, a.Token, []int64{b.UserID})
	require.NoError(t, err)
	msgID := sendTestMessage(t, reg, a.Token, id, "hello")

	// Only the creator may remove.
	assert.ErrorIs(t, reg.Dms.Remove(ctx, b.Token, id), apperror.ErrAccess)

	require.NoError(t, reg.Dms.Remove(ctx, a.Token, id))

	_, err = reg.Dms.Details(ctx, a.Token, id)
	assert.ErrorIs(t, err, apperror.ErrInput, "dm is gone")
	// The cascade took the messages too.
	assert.ErrorIs(t, reg.Messages.Edit(ctx, a.Token, msgID, "still there?"), apperror.ErrInput)
}

func TestDmRemove_DepartedCreatorRejected(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	b := registerTestUser(t, reg, "b@example.com", "Brian", "Kernighan")
	id, err := reg.Dms.Create(ctx, a.Token, []int64{b.UserID})
	require.NoError(t, err)

	require.NoError(t, reg.Dms.Leave(ctx, a.Token, id))
	// Creator status alone is not enough — they must still be a member.
	assert.ErrorIs(t, reg.Dms.Remove(ctx, a.Token, id), apperror.ErrAccess)
}

func TestDmOperations_ChannelIDRejected(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	chID := createTestChannel(t, reg, a.Token, "general", true)

	_, err := reg.Dms.Details(ctx, a.Token, chID)
	assert.ErrorIs(t, err, apperror.ErrInput)
	assert.ErrorIs(t, reg.Dms.Remove(ctx, a.Token, chID), apperror.ErrInput)
}
