package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// Tests use bcrypt.MinCost — the logic under test is identical, only the
// work factor changes, and cost 12 would add ~250ms per hash.

func TestHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceWithCost(bcrypt.MinCost)

	hash, err := ps.Hash("hunter2hunter2")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "hunter2hunter2"); err != nil {
		t.Errorf("Verify() with correct password: %v", err)
	}
	if err := ps.Verify(hash, "wrong-password"); err == nil {
		t.Error("Verify() accepted the wrong password")
	}
}

func TestHash_SaltsDiffer(t *testing.T) {
	// bcrypt embeds a random salt — two users with the same password must
	// not share a hash, or a single crack would open both accounts.
	ps := NewPasswordServiceWithCost(bcrypt.MinCost)

	h1, err := ps.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	ps := NewPasswordServiceWithCost(bcrypt.MinCost)

	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash() accepted a password over 72 bytes")
	}
}
