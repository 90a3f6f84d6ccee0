package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/teamline/internal/auth"
	"github.com/sakif/teamline/internal/repository/sqlite"
)

// The service suites run against a real in-memory SQLite store rather than
// a hand-written mock: the rules under test (membership checks, pagination,
// search visibility) lean on real queries, and modernc's ":memory:" database
// costs nothing to spin up per test.

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	// Errors only — keeps test output readable.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// bcrypt.MinCost: the default cost would add ~250ms per registration.
	return NewRegistry(store, tokens, auth.NewPasswordServiceWithCost(bcrypt.MinCost), logger)
}

// registerTestUser registers a user and returns the auth result. Each
// distinct name yields a distinct handle, which the dm-name tests rely on.
func registerTestUser(t *testing.T, reg *Registry, email, first, last string) *AuthResult {
	t.Helper()
	res, err := reg.Auth.Register(context.Background(), email, "password123", first, last)
	if err != nil {
		t.Fatalf("failed to register %s: %v", email, err)
	}
	return res
}

// createTestChannel creates a channel and returns its id.
func createTestChannel(t *testing.T, reg *Registry, token, name string, isPublic bool) int64 {
	t.Helper()
	id, err := reg.Channels.Create(context.Background(), token, name, isPublic)
	if err != nil {
		t.Fatalf("failed to create channel %s: %v", name, err)
	}
	return id
}

// sendTestMessage sends a message and returns its id.
func sendTestMessage(t *testing.T, reg *Registry, token string, convID int64, body string) int64 {
	t.Helper()
	id, err := reg.Messages.Send(context.Background(), token, convID, body)
	if err != nil {
		t.Fatalf("failed to send message: %v", err)
	}
	return id
}
