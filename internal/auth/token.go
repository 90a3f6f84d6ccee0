package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// TokenService mints and validates session tokens.
//
// A token is a signed JWT carrying two things: the user id in "sub" and a
// fresh session id in "jti". The session id is what the sessions table
// stores; validation alone proves the token wasn't forged, but the caller
// must still confirm the session row exists before trusting it (logout
// deletes the row, which is the only revocation mechanism).
//
// Tokens carry no expiry: a session lives until its logout, mirroring the
// sessions-table-is-the-authority design. The signature still prevents
// anyone from minting or altering a token without the secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given HMAC secret.
// The secret should be at least 32 bytes of random data in production,
// e.g. JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// sessionClaims is the JWT payload: standard registered claims only.
// "sub" holds the user id as decimal text, "jti" the session id.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// Mint creates a signed token for the given user, returning the token string
// and the embedded session id. Every call produces a distinct session id
// (xid is globally unique), so two logins never share a token.
func (s *TokenService) Mint(userID int64) (token string, sessionID string, err error) {
	sessionID = xid.New().String()

	c := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  fmt.Sprintf("%d", userID),
			ID:       sessionID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "teamline",
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, sessionID, nil
}

// Parse verifies a token's signature and returns the session id it names.
//
// Pinning the algorithm with jwt.WithValidMethods blocks algorithm-confusion
// attacks (a token claiming alg "none" or an asymmetric scheme is rejected
// before the signature is even checked).
func (s *TokenService) Parse(tokenStr string) (sessionID string, err error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("teamline"),
	)
	if err != nil {
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}
	if c.ID == "" {
		return "", fmt.Errorf("auth: token has no session id")
	}

	return c.ID, nil
}
