package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sakif/teamline/internal/apperror"
	"github.com/sakif/teamline/internal/auth"
	"github.com/sakif/teamline/internal/model"
)

// Validation constants for registration.
const (
	MinPasswordLength = 6
	MinNameLength     = 1
	MaxNameLength     = 50
	MaxHandleBase     = 20 // derived handle before any collision suffix
)

// AuthService handles registration, login and logout.
type AuthService struct {
	core
	passwords *auth.PasswordService
}

// AuthResult bundles what an authentication operation produces: the user's
// id and a fresh token the caller can present on subsequent requests.
type AuthResult struct {
	UserID int64  `json:"authUserId"`
	Token  string `json:"token"`
}

// Register creates an account and logs it in.
//
// The first-ever registrant becomes the global owner — an explicit bootstrap
// check against the user count, not an incidental side effect.
func (s *AuthService) Register(ctx context.Context, email, password, nameFirst, nameLast string) (*AuthResult, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.Input("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if err := validateName("nameFirst", nameFirst); err != nil {
		return nil, err
	}
	if err := validateName("nameLast", nameLast); err != nil {
		return nil, err
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Input("email", "email address is already registered")
	}

	handle, err := s.deriveHandle(ctx, nameFirst, nameLast)
	if err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:         email,
		PasswordHash:  hash,
		NameFirst:     nameFirst,
		NameLast:      nameLast,
		Handle:        handle,
		IsGlobalOwner: count == 0,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("handle", user.Handle),
		slog.Bool("globalOwner", user.IsGlobalOwner),
	)

	return s.openSession(ctx, user.ID)
}

// Login verifies credentials and opens a new session. Every login issues a
// distinct token, even for the same account on the same device.
//
// Unknown email and wrong password produce the same access error — the
// response must not reveal which half of the credentials was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Access("incorrect email or password")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Access("incorrect email or password")
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))
	return s.openSession(ctx, user.ID)
}

// Logout invalidates exactly the presented token. The user's other sessions
// stay valid — logging out on a phone must not log out the laptop.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	sessionID, err := s.tokens.Parse(token)
	if err != nil {
		return apperror.Access("invalid token")
	}
	deleted, err := s.store.DeleteSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.Access("invalid token")
	}
	return nil
}

// openSession mints a token, persists its session row and packages the result.
func (s *AuthService) openSession(ctx context.Context, userID int64) (*AuthResult, error) {
	token, sessionID, err := s.tokens.Mint(userID)
	if err != nil {
		return nil, fmt.Errorf("minting token: %w", err)
	}
	if err := s.store.CreateSession(ctx, &model.Session{ID: sessionID, UserID: userID}); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return &AuthResult{UserID: userID, Token: token}, nil
}

// deriveHandle computes the unique handle for a new registrant:
// lowercase(first+last) with every non-alphanumeric character stripped,
// truncated to 20 characters. If that base is taken, the smallest
// non-negative integer is appended (as decimal text) until unique — the
// suffix may push the handle past 20 characters, only the base is capped.
//
// Deterministic and collision-free: n registrants with the same base end up
// with base, base0, base1, … base(n-2).
func (s *AuthService) deriveHandle(ctx context.Context, nameFirst, nameLast string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(nameFirst + nameLast) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == MaxHandleBase {
			break
		}
	}
	base := b.String()

	taken, err := s.store.HandleTaken(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for i := 0; ; i++ {
		candidate := base + strconv.Itoa(i)
		taken, err := s.store.HandleTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

// validateEmail enforces the local@domain shape: exactly one @, with
// non-empty text on both sides.
func validateEmail(email string) error {
	at := strings.Count(email, "@")
	if at != 1 {
		return apperror.Input("email", "email must contain exactly one @")
	}
	local, domain, _ := strings.Cut(email, "@")
	if local == "" || domain == "" {
		return apperror.Input("email", "email must be of the form local@domain")
	}
	return nil
}

func validateName(field, name string) error {
	if len(name) < MinNameLength || len(name) > MaxNameLength {
		return apperror.Input(field,
			fmt.Sprintf("%s must be between %d and %d characters", field, MinNameLength, MaxNameLength))
	}
	return nil
}
