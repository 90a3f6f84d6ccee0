package service

import (
	"context"
)

// AdminService holds the companion administrative operation: a full state
// wipe used for test isolation. Not part of the business domain.
type AdminService struct {
	core
	standups *StandupService
}

// Clear wipes every table and cancels any pending standup flush. It takes
// no token — it is infrastructure, not a user operation, and the HTTP
// surface should only expose it in test deployments.
func (s *AdminService) Clear(ctx context.Context) error {
	s.standups.reset()
	return s.store.Clear(ctx)
}
