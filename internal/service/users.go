package service

import (
	"context"

	"github.com/sakif/teamline/internal/apperror"
	"github.com/sakif/teamline/internal/model"
)

// UserService exposes the directory: profiles and profile updates.
type UserService struct {
	core
}

// Profile returns the public profile of any registered user.
func (s *UserService) Profile(ctx context.Context, token string, uID int64) (*model.Profile, error) {
	if _, err := s.resolve(ctx, token); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, uID)
	if err != nil {
		return nil, err
	}
	p := user.Profile()
	return &p, nil
}

// List returns the profiles of every registered user.
func (s *UserService) List(ctx context.Context, token string) ([]model.Profile, error) {
	if _, err := s.resolve(ctx, token); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return profiles(users), nil
}

// SetName updates the caller's first and last name. The handle is NOT
// recomputed — handles are derived once at registration and immutable.
func (s *UserService) SetName(ctx context.Context, token, nameFirst, nameLast string) error {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if err := validateName("nameFirst", nameFirst); err != nil {
		return err
	}
	if err := validateName("nameLast", nameLast); err != nil {
		return err
	}
	return s.store.UpdateUserName(ctx, user.ID, nameFirst, nameLast)
}

// SetEmail updates the caller's email, with the same shape validation and
// uniqueness rule as registration.
func (s *UserService) SetEmail(ctx context.Context, token, email string) error {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != user.ID {
		return apperror.Input("email", "email address is already registered")
	}
	return s.store.UpdateUserEmail(ctx, user.ID, email)
}
