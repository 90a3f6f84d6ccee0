package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/teamline/internal/apperror"
)

func TestRegister_Success(t *testing.T) {
	reg := newTestRegistry(t)

	res, err := reg.Auth.Register(context.Background(), "ada@example.com", "password123", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.NotZero(t, res.UserID)
	assert.NotEmpty(t, res.Token)

	p, err := reg.Users.Profile(context.Background(), res.Token, res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "adalovelace", p.Handle)
	assert.Equal(t, "Ada", p.NameFirst)
}

func TestRegister_Validation(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		first    string
		last     string
	}{
		{"no at sign", "nodomain", "password123", "Ada", "Lovelace"},
		{"two at signs", "a@@b.com", "password123", "Ada", "Lovelace"},
		{"empty local part", "@b.com", "password123", "Ada", "Lovelace"},
		{"empty domain", "a@", "password123", "Ada", "Lovelace"},
		{"short password", "ok@example.com", "12345", "Ada", "Lovelace"},
		{"empty first name", "ok@example.com", "password123", "", "Lovelace"},
		{"empty last name", "ok@example.com", "password123", "Ada", ""},
		{"first name too long", "ok@example.com", "password123", strings.Repeat("a", 51), "Lovelace"},
		{"last name too long", "ok@example.com", "password123", "Ada", strings.Repeat("b", 51)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Auth.Register(ctx, tt.email, tt.password, tt.first, tt.last)
			assert.ErrorIs(t, err, apperror.ErrInput)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	reg := newTestRegistry(t)
	registerTestUser(t, reg, "ada@example.com", "Ada", "Lovelace")

	_, err := reg.Auth.Register(context.Background(), "ada@example.com", "password123", "Other", "Person")
	assert.ErrorIs(t, err, apperror.ErrInput)
}

func TestRegister_HandleDerivation(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		first      string
		last       string
		wantHandle string
	}{
		{"lowercased and concatenated", "Ada", "Lovelace", "adalovelace"},
		{"non-alphanumerics stripped", "J-J'", "O Brien", "jjobrien"},
		{"truncated to 20", "Abcdefghijklm", "Nopqrstuvwxyz", "abcdefghijklmnopqrst"},
		{"digits kept", "Agent", "007", "agent007"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := reg.Auth.Register(ctx,
				fmt.Sprintf("u%d@example.com", i), "password123", tt.first, tt.last)
			require.NoError(t, err)
			p, err := reg.Users.Profile(ctx, res.Token, res.UserID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHandle, p.Handle)
		})
	}
}

func TestRegister_HandleCollisions(t *testing.T) {
	// Successive registrations with the same derived base get base, base0,
	// base1, ... — deterministic and collision-free.
	reg := newTestRegistry(t)
	ctx := context.Background()

	want := []string{"adalovelace", "adalovelace0", "adalovelace1", "adalovelace2"}
	for i, wantHandle := range want {
		res, err := reg.Auth.Register(ctx,
			fmt.Sprintf("ada%d@example.com", i), "password123", "Ada", "Lovelace")
		require.NoError(t, err)
		p, err := reg.Users.Profile(ctx, res.Token, res.UserID)
		require.NoError(t, err)
		assert.Equal(t, wantHandle, p.Handle)
	}
}

func TestRegister_CollisionSuffixMayExceedTwenty(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	first, last := "Abcdefghijklm", "Nopqrstuvwxyz" // base is exactly 20 chars
	res1, err := reg.Auth.Register(ctx, "long1@example.com", "password123", first, last)
	require.NoError(t, err)
	res2, err := reg.Auth.Register(ctx, "long2@example.com", "password123", first, last)
	require.NoError(t, err)

	p1, err := reg.Users.Profile(ctx, res1.Token, res1.UserID)
	require.NoError(t, err)
	p2, err := reg.Users.Profile(ctx, res2.Token, res2.UserID)
	require.NoError(t, err)

	assert.Equal(t, "abcdefghijklmnopqrst", p1.Handle)
	// The numeric suffix goes past the 20-character cap — only the base is capped.
	assert.Equal(t, "abcdefghijklmnopqrst0", p2.Handle)
}

func TestLogin_Success(t *testing.T) {
	reg := newTestRegistry(t)
	first := registerTestUser(t, reg, "ada@example.com", "Ada", "Lovelace")

	res, err := reg.Auth.Login(context.Background(), "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, first.UserID, res.UserID)
	// A login never reuses a prior session's token.
	assert.NotEqual(t, first.Token, res.Token)
}

func TestLogin_BadCredentials(t *testing.T) {
	reg := newTestRegistry(t)
	registerTestUser(t, reg, "ada@example.com", "Ada", "Lovelace")

	_, err := reg.Auth.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, apperror.ErrAccess, "unknown email")

	_, err = reg.Auth.Login(context.Background(), "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperror.ErrAccess, "wrong password")
}

func TestLogout_InvalidatesExactlyOneSession(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	registerTestUser(t, reg, "ada@example.com", "Ada", "Lovelace")

	// Two concurrent sessions for the same account ("two devices").
	s1, err := reg.Auth.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)
	s2, err := reg.Auth.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, reg.Auth.Logout(ctx, s1.Token))

	// The logged-out token is dead...
	_, err = reg.Users.List(ctx, s1.Token)
	assert.ErrorIs(t, err, apperror.ErrAccess)
	// ...the other session survives.
	_, err = reg.Users.List(ctx, s2.Token)
	assert.NoError(t, err)
	// ...and a second logout of the same token is rejected.
	assert.ErrorIs(t, reg.Auth.Logout(ctx, s1.Token), apperror.ErrAccess)
}

func TestResolve_GarbageToken(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Users.List(context.Background(), "not-a-real-token")
	if !errors.Is(err, apperror.ErrAccess) {
		t.Errorf("expected access error for garbage token, got %v", err)
	}
}

func TestSetName_DoesNotRecomputeHandle(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	res := registerTestUser(t, reg, "ada@example.com", "Ada", "Lovelace")

	require.NoError(t, reg.Users.SetName(ctx, res.Token, "Augusta", "King"))

	p, err := reg.Users.Profile(ctx, res.Token, res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", p.NameFirst)
	assert.Equal(t, "King", p.NameLast)
	assert.Equal(t, "adalovelace", p.Handle, "handle must be immutable")
}

func TestSetEmail_UniquenessRule(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	a := registerTestUser(t, reg, "a@example.com", "Ada", "Lovelace")
	registerTestUser(t, reg, "b@example.com", "Brian", "Kernighan")

	// Taking another account's email is rejected; re-setting your own is fine.
	assert.ErrorIs(t, reg.Users.SetEmail(ctx, a.Token, "b@example.com"), apperror.ErrInput)
	assert.NoError(t, reg.Users.SetEmail(ctx, a.Token, "a@example.com"))
	assert.NoError(t, reg.Users.SetEmail(ctx, a.Token, "new@example.com"))
}
