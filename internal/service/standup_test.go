package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/teamline/internal/apperror"
)

// stubStandupTimer swaps the service's scheduler for one that captures the
// flush callback instead of arming a real timer, so tests fire the flush
// deterministically with fire().
func stubStandupTimer(reg *Registry) (fire func()) {
	var pending []func()
	reg.Standups.schedule = func(d time.Duration, f func()) *time.Timer {
		pending = append(pending, f)
		// A stopped placeholder: reset() still has something to Stop.
		t := time.AfterFunc(time.Hour, func() {})
		t.Stop()
		return t
	}
	return func() {
		for _, f := range pending {
			f()
		}
		pending = nil
	}
}

func TestStandupStart(t *testing.T) {
	reg := newTestRegistry(t)
	stubStandupTimer(reg)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	b := registerTestUser(t, reg, "b@example.com", "Brian", "Kernighan")
	ch := createTestChannel(t, reg, a.Token, "general", true)

	before := time.Now().Unix()
	finish, err := reg.Standups.Start(ctx, a.Token, ch, 60)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, finish, before+60)

	// One window per channel.
	_, err = reg.Standups.Start(ctx, a.Token, ch, 60)
	assert.ErrorIs(t, err, apperror.ErrInput)
	// Non-members can't start one.
	_, err = reg.Standups.Start(ctx, b.Token, ch, 60)
	assert.ErrorIs(t, err, apperror.ErrAccess)
	// Negative length is nonsense.
	other := createTestChannel(t, reg, a.Token, "other", true)
	_, err = reg.Standups.Start(ctx, a.Token, other, -1)
	assert.ErrorIs(t, err, apperror.ErrInput)
}

func TestStandupActive(t *testing.T) {
	reg := newTestRegistry(t)
	fire := stubStandupTimer(reg)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	ch := createTestChannel(t, reg, a.Token, "general", true)

	status, err := reg.Standups.Active(ctx, a.Token, ch)
	require.NoError(t, err)
	assert.False(t, status.IsActive)
	assert.Nil(t, status.TimeFinish)

	finish, err := reg.Standups.Start(ctx, a.Token, ch, 120)
	require.NoError(t, err)

	status, err = reg.Standups.Active(ctx, a.Token, ch)
	require.NoError(t, err)
	assert.True(t, status.IsActive)
	require.NotNil(t, status.TimeFinish)
	assert.Equal(t, finish, *status.TimeFinish)

	fire()

	status, err = reg.Standups.Active(ctx, a.Token, ch)
	require.NoError(t, err)
	assert.False(t, status.IsActive, "flush closes the window")
}

func TestStandupSend_RequiresActiveWindow(t *testing.T) {
	reg := newTestRegistry(t)
	stubStandupTimer(reg)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	b := registerTestUser(t, reg, "b@example.com", "Brian", "Kernighan")
	ch := createTestChannel(t, reg, a.Token, "general", true)

	assert.ErrorIs(t, reg.Standups.Send(ctx, a.Token, ch, "too early"), apperror.ErrInput)

	_, err := reg.Standups.Start(ctx, a.Token, ch, 60)
	require.NoError(t, err)

	assert.NoError(t, reg.Standups.Send(ctx, a.Token, ch, "did stuff"))
	assert.ErrorIs(t, reg.Standups.Send(ctx, b.Token, ch, "outsider"), apperror.ErrAccess)
}

func TestStandupFlush_CombinedMessage(t *testing.T) {
	reg := newTestRegistry(t)
	fire := stubStandupTimer(reg)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	b := registerTestUser(t, reg, "b@example.com", "Brian", "Kernighan")
	ch := createTestChannel(t, reg, a.Token, "general", true)
	require.NoError(t, reg.Channels.Join(ctx, b.Token, ch))

	_, err := reg.Standups.Start(ctx, a.Token, ch, 60)
	require.NoError(t, err)
	require.NoError(t, reg.Standups.Send(ctx, a.Token, ch, "wrote the parser"))
	require.NoError(t, reg.Standups.Send(ctx, b.Token, ch, "fixed the build"))
	require.NoError(t, reg.Standups.Send(ctx, a.Token, ch, "reviewing next"))

	// Nothing lands until the window expires.
	page, err := reg.Messages.Page(ctx, a.Token, ch, 0)
	require.NoError(t, err)
	require.Empty(t, page.Messages)

	fire()

	page, err = reg.Messages.Page(ctx, a.Token, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1, "one combined message, not three")
	msg := page.Messages[0]
	assert.Equal(t, a.UserID, msg.SenderID, "authored by the starter")
	assert.Equal(t,
		"adalovelace: wrote the parser\n"+
			"briankernighan: fixed the build\n"+
			"adalovelace: reviewing next",
		msg.Body)
}

func TestStandupFlush_EmptyWindowPostsNothing(t *testing.T) {
	reg := newTestRegistry(t)
	fire := stubStandupTimer(reg)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	ch := createTestChannel(t, reg, a.Token, "general", true)

	_, err := reg.Standups.Start(ctx, a.Token, ch, 60)
	require.NoError(t, err)
	fire()

	page, err := reg.Messages.Page(ctx, a.Token, ch, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Messages)

	// The channel is free for a fresh window.
	_, err = reg.Standups.Start(ctx, a.Token, ch, 60)
	assert.NoError(t, err)
}

func TestStandupFlush_StarterMayHaveLeft(t *testing.T) {
	// The flush is the deferred effect of an authorized start, so it lands
	// even when the starter left the channel mid-window.
	reg := newTestRegistry(t)
	fire := stubStandupTimer(reg)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	b := registerTestUser(t, reg, "b@example.com", "Brian", "Kernighan")
	ch := createTestChannel(t, reg, a.Token, "general", true)
	require.NoError(t, reg.Channels.Join(ctx, b.Token, ch))

	_, err := reg.Standups.Start(ctx, a.Token, ch, 60)
	require.NoError(t, err)
	require.NoError(t, reg.Standups.Send(ctx, a.Token, ch, "signing off"))
	require.NoError(t, reg.Channels.Leave(ctx, a.Token, ch))

	fire()

	page, err := reg.Messages.Page(ctx, b.Token, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, a.UserID, page.Messages[0].SenderID)
	assert.Equal(t, "adalovelace: signing off", page.Messages[0].Body)
}

func TestStandupReset_CancelsWindows(t *testing.T) {
	reg := newTestRegistry(t)
	fire := stubStandupTimer(reg)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	ch := createTestChannel(t, reg, a.Token, "general", true)

	_, err := reg.Standups.Start(ctx, a.Token, ch, 60)
	require.NoError(t, err)
	require.NoError(t, reg.Standups.Send(ctx, a.Token, ch, "doomed"))

	reg.Standups.reset()

	// The window is gone; a late timer firing finds nothing to flush.
	fire()
	status, err := reg.Standups.Active(ctx, a.Token, ch)
	require.NoError(t, err)
	assert.False(t, status.IsActive)

	page, err := reg.Messages.Page(ctx, a.Token, ch, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Messages, "the buffered line must not land")
}
