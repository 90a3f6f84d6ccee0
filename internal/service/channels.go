package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/teamline/internal/apperror"
	"github.com/sakif/teamline/internal/model"
)

// Channel name length bounds.
const (
	MinChannelNameLength = 1
	MaxChannelNameLength = 20
)

// ChannelService implements the channel half of the membership ledger.
//
// The member state machine per user per channel is
//
//	NonMember -> Member -> Owner   (Owner implies Member)
//
// join/invite move NonMember to Member, leave moves either back to
// NonMember, addOwner/removeOwner toggle the Owner subset. Every mutation
// runs under the channel's lock so a check ("already a member?") and its
// act ("insert member row") are atomic against concurrent requests.
type ChannelService struct {
	core
}

// Create makes a new channel with the caller as its sole member and owner.
func (s *ChannelService) Create(ctx context.Context, token, name string, isPublic bool) (int64, error) {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return 0, err
	}
	if len(name) < MinChannelNameLength || len(name) > MaxChannelNameLength {
		return 0, apperror.Input("name",
			fmt.Sprintf("channel name must be between %d and %d characters",
				MinChannelNameLength, MaxChannelNameLength))
	}

	conv := &model.Conversation{
		Kind:      model.KindChannel,
		Name:      name,
		IsPublic:  isPublic,
		CreatorID: user.ID,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.store.CreateConversation(ctx, conv, []int64{user.ID}, []int64{user.ID}); err != nil {
		return 0, fmt.Errorf("creating channel: %w", err)
	}

	s.logger.Info("channel created",
		slog.Int64("channelID", conv.ID),
		slog.Int64("creatorID", user.ID),
		slog.Bool("isPublic", isPublic),
	)
	return conv.ID, nil
}

// List returns the channels the caller is a member of, or every channel
// (public and private alike) when all is true.
func (s *ChannelService) List(ctx context.Context, token string, all bool) ([]model.ChannelSummary, error) {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	memberID := user.ID
	if all {
		memberID = 0
	}
	convs, err := s.store.ListConversations(ctx, model.KindChannel, memberID)
	if err != nil {
		return nil, err
	}
	out := make([]model.ChannelSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, model.ChannelSummary{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

// Details returns a channel's metadata with full member and owner rosters.
// Only members may look.
func (s *ChannelService) Details(ctx context.Context, token string, channelID int64) (*model.ChannelDetails, error) {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	conv, err := s.channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, conv, user.ID); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, channelID)
	if err != nil {
		return nil, err
	}
	owners, err := s.store.ListOwners(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return &model.ChannelDetails{
		Name:         conv.Name,
		IsPublic:     conv.IsPublic,
		OwnerMembers: profiles(owners),
		AllMembers:   profiles(members),
	}, nil
}

// Join adds the caller to a channel.
//
// Anyone may join a public channel. A private channel admits only global
// owners — that is the one place global ownership bypasses membership rules.
// Joining a channel you're already in is an input error, global owner or not.
func (s *ChannelService) Join(ctx context.Context, token string, channelID int64) error {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	conv, err := s.channel(ctx, channelID)
	if err != nil {
		return err
	}

	defer s.locks.lock(channelID)()

	member, err := s.store.IsMember(ctx, channelID, user.ID)
	if err != nil {
		return err
	}
	if member {
		return apperror.Inputf("user %d is already a member of channel %d", user.ID, channelID)
	}
	if !conv.IsPublic && !user.IsGlobalOwner {
		return apperror.Access("channel is private")
	}

	if err := s.store.AddMember(ctx, channelID, user.ID); err != nil {
		return err
	}
	s.logger.Info("user joined channel",
		slog.Int64("channelID", channelID), slog.Int64("userID", user.ID))
	return nil
}

// Invite adds uID to a channel on behalf of a member.
//
// The inviter must already be a member — with no exception for global
// owners. A global owner outside a private channel cannot invite anyone in,
// themself included; their bypass applies to Join only.
func (s *ChannelService) Invite(ctx context.Context, token string, channelID, uID int64) error {
	inviter, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	conv, err := s.channel(ctx, channelID)
	if err != nil {
		return err
	}

	defer s.locks.lock(channelID)()

	if err := s.requireMember(ctx, conv, inviter.ID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, uID); err != nil {
		return err
	}
	member, err := s.store.IsMember(ctx, channelID, uID)
	if err != nil {
		return err
	}
	if member {
		return apperror.Inputf("user %d is already a member of channel %d", uID, channelID)
	}

	if err := s.store.AddMember(ctx, channelID, uID); err != nil {
		return err
	}
	s.logger.Info("user invited to channel",
		slog.Int64("channelID", channelID),
		slog.Int64("inviterID", inviter.ID),
		slog.Int64("userID", uID),
	)
	return nil
}

// Leave removes the caller from a channel. An owner leaving simply goes —
// ownership is not transferred, and a channel may be left with zero owners
// this way (but never via RemoveOwner).
func (s *ChannelService) Leave(ctx context.Context, token string, channelID int64) error {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	conv, err := s.channel(ctx, channelID)
	if err != nil {
		return err
	}

	defer s.locks.lock(channelID)()

	if err := s.requireMember(ctx, conv, user.ID); err != nil {
		return err
	}
	if err := s.store.RemoveMember(ctx, channelID, user.ID); err != nil {
		return err
	}
	s.logger.Info("user left channel",
		slog.Int64("channelID", channelID), slog.Int64("userID", user.ID))
	return nil
}

// AddOwner promotes a member to owner. The caller needs owner permission:
// an owner of this channel, or a global owner who is a member of it.
func (s *ChannelService) AddOwner(ctx context.Context, token string, channelID, uID int64) error {
	caller, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	conv, err := s.channel(ctx, channelID)
	if err != nil {
		return err
	}

	defer s.locks.lock(channelID)()

	ok, err := s.hasOwnerPermission(ctx, conv, caller)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Access("user does not have owner permission in the channel")
	}

	if _, err := s.store.GetUser(ctx, uID); err != nil {
		return err
	}
	member, err := s.store.IsMember(ctx, channelID, uID)
	if err != nil {
		return err
	}
	if !member {
		return apperror.Inputf("user %d is not a member of channel %d", uID, channelID)
	}
	owner, err := s.store.IsOwner(ctx, channelID, uID)
	if err != nil {
		return err
	}
	if owner {
		return apperror.Inputf("user %d is already an owner of channel %d", uID, channelID)
	}

	return s.store.AddOwner(ctx, channelID, uID)
}

// RemoveOwner demotes an owner back to plain member. The sole remaining
// owner cannot be stripped — zero owners is reachable only through Leave.
func (s *ChannelService) RemoveOwner(ctx context.Context, token string, channelID, uID int64) error {
	caller, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	conv, err := s.channel(ctx, channelID)
	if err != nil {
		return err
	}

	defer s.locks.lock(channelID)()

	ok, err := s.hasOwnerPermission(ctx, conv, caller)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Access("user does not have owner permission in the channel")
	}

	if _, err := s.store.GetUser(ctx, uID); err != nil {
		return err
	}
	owner, err := s.store.IsOwner(ctx, channelID, uID)
	if err != nil {
		return err
	}
	if !owner {
		return apperror.Inputf("user %d is not an owner of channel %d", uID, channelID)
	}
	count, err := s.store.CountOwners(ctx, channelID)
	if err != nil {
		return err
	}
	if count == 1 {
		return apperror.Inputf("user %d is the only owner of channel %d", uID, channelID)
	}

	return s.store.RemoveOwner(ctx, channelID, uID)
}
