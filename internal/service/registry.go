package service

import (
	"log/slog"

	"github.com/sakif/teamline/internal/auth"
	"github.com/sakif/teamline/internal/repository"
)

// Registry is the composition root for the service layer: one constructor
// call wires every service over a shared store, token service, password
// service and per-conversation lock table.
//
// Handlers receive individual services from here; nothing outside this
// package constructs a service directly, so the sharing of locks between
// (say) message sends and standup flushes can't be miswired.
type Registry struct {
	Auth     *AuthService
	Users    *UserService
	Channels *ChannelService
	Dms      *DmService
	Messages *MessageService
	Standups *StandupService
	Search   *SearchService
	Admin    *AdminService
}

// NewRegistry wires the full service layer.
func NewRegistry(store repository.Store, tokens *auth.TokenService, passwords *auth.PasswordService, logger *slog.Logger) *Registry {
	c := core{
		store:  store,
		tokens: tokens,
		locks:  newConvLocks(),
		logger: logger,
	}

	standups := newStandupService(c)
	return &Registry{
		Auth:     &AuthService{core: c, passwords: passwords},
		Users:    &UserService{core: c},
		Channels: &ChannelService{core: c},
		Dms:      &DmService{core: c},
		Messages: &MessageService{core: c},
		Standups: standups,
		Search:   &SearchService{core: c},
		Admin:    &AdminService{core: c, standups: standups},
	}
}
