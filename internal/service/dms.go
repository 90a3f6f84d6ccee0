package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sakif/teamline/internal/apperror"
	"github.com/sakif/teamline/internal/model"
)

// DmService implements the dm half of the membership ledger.
//
// Dms differ from channels in three ways: the member set is fixed at
// creation (no invite or join), the only elevated role is the creator (who
// alone may delete the dm), and the name is derived from the members'
// handles rather than chosen.
type DmService struct {
	core
}

// Create makes a dm between the caller and the listed users. The uIds list
// must name existing users, contain no duplicates, and not include the
// caller (the creator is a member implicitly).
//
// The dm's name is the alphabetically sorted, comma-space-joined list of
// ALL members' handles — creator included — and never changes afterwards,
// even when members leave.
func (s *DmService) Create(ctx context.Context, token string, uIDs []int64) (int64, error) {
	creator, err := s.resolve(ctx, token)
	if err != nil {
		return 0, err
	}

	seen := map[int64]bool{creator.ID: true}
	handles := []string{creator.Handle}
	for _, uid := range uIDs {
		if seen[uid] {
			return 0, apperror.Inputf("duplicate uId %d in dm member list", uid)
		}
		seen[uid] = true
		u, err := s.store.GetUser(ctx, uid)
		if err != nil {
			return 0, err
		}
		handles = append(handles, u.Handle)
	}
	sort.Strings(handles)

	conv := &model.Conversation{
		Kind:      model.KindDm,
		Name:      strings.Join(handles, ", "),
		CreatorID: creator.ID,
		CreatedAt: time.Now().Unix(),
	}
	members := append([]int64{creator.ID}, uIDs...)
	if err := s.store.CreateConversation(ctx, conv, members, nil); err != nil {
		return 0, fmt.Errorf("creating dm: %w", err)
	}

	s.logger.Info("dm created",
		slog.Int64("dmID", conv.ID),
		slog.Int64("creatorID", creator.ID),
		slog.Int("members", len(members)),
	)
	return conv.ID, nil
}

// List returns the dms the caller belongs to.
func (s *DmService) List(ctx context.Context, token string) ([]model.DmSummary, error) {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	convs, err := s.store.ListConversations(ctx, model.KindDm, user.ID)
	if err != nil {
		return nil, err
	}
	out := make([]model.DmSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, model.DmSummary{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

// Details returns a dm's name and member roster. Only members may look.
func (s *DmService) Details(ctx context.Context, token string, dmID int64) (*model.DmDetails, error) {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	conv, err := s.dm(ctx, dmID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, conv, user.ID); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, dmID)
	if err != nil {
		return nil, err
	}
	return &model.DmDetails{Name: conv.Name, Members: profiles(members)}, nil
}

// Leave removes the caller from a dm. Any member may go, the creator
// included; the dm keeps existing (and keeps its name) for the rest.
func (s *DmService) Leave(ctx context.Context, token string, dmID int64) error {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	conv, err := s.dm(ctx, dmID)
	if err != nil {
		return err
	}

	defer s.locks.lock(dmID)()

	if err := s.requireMember(ctx, conv, user.ID); err != nil {
		return err
	}
	if err := s.store.RemoveMember(ctx, dmID, user.ID); err != nil {
		return err
	}
	s.logger.Info("user left dm",
		slog.Int64("dmID", dmID), slog.Int64("userID", user.ID))
	return nil
}

// Remove deletes a dm entirely. Only the original creator may do it, and
// the creator must still be a member. All of the dm's messages go with it —
// an explicit cascade, visible in the repository's DeleteConversation.
func (s *DmService) Remove(ctx context.Context, token string, dmID int64) error {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	conv, err := s.dm(ctx, dmID)
	if err != nil {
		return err
	}

	defer s.locks.lock(dmID)()

	if conv.CreatorID != user.ID {
		return apperror.Access("only the dm creator may remove it")
	}
	if err := s.requireMember(ctx, conv, user.ID); err != nil {
		return err
	}

	if err := s.store.DeleteConversation(ctx, dmID); err != nil {
		return err
	}
	s.logger.Info("dm removed",
		slog.Int64("dmID", dmID), slog.Int64("creatorID", user.ID))
	return nil
}
