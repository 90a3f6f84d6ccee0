package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/teamline/internal/apperror"
	"github.com/sakif/teamline/internal/model"
)

// Message body bounds and the pagination window size.
const (
	MinMessageLength = 1
	MaxMessageLength = 1000
	MessagePageSize  = 50
)

// MessageService implements the message lifecycle: send, paginate, edit,
// remove, react and pin. Channels and dms share all of it — a message
// operation cares about the conversation's membership and ownership rules,
// not its kind (except that dm owner permission means "the creator").
type MessageService struct {
	core
}

// Send appends a message to a conversation the caller belongs to. The
// message gets a fresh system-wide id, the current timestamp, no reacts and
// no pin.
func (s *MessageService) Send(ctx context.Context, token string, convID int64, body string) (int64, error) {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return 0, err
	}
	conv, err := s.store.GetConversation(ctx, convID)
	if err != nil {
		return 0, err
	}
	if err := s.requireMember(ctx, conv, user.ID); err != nil {
		return 0, err
	}
	if len(body) < MinMessageLength || len(body) > MaxMessageLength {
		return 0, apperror.Input("message",
			fmt.Sprintf("message must be between %d and %d characters",
				MinMessageLength, MaxMessageLength))
	}

	defer s.locks.lock(convID)()

	msg := &model.Message{
		ConversationID: convID,
		SenderID:       user.ID,
		Body:           body,
		TimeSent:       time.Now().Unix(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return 0, fmt.Errorf("sending message: %w", err)
	}

	s.logger.Info("message sent",
		slog.Int64("messageID", msg.ID),
		slog.Int64("conversationID", convID),
		slog.Int64("senderID", user.ID),
	)
	return msg.ID, nil
}

// Page returns one pagination window over a conversation's log: up to 50
// messages newest-first starting at offset start. End is start+50 when more
// messages remain, -1 when this window reaches the oldest message.
//
// start may equal the message count (an empty final page); anything past
// that is an input error.
func (s *MessageService) Page(ctx context.Context, token string, convID int64, start int) (*model.MessagePage, error) {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	conv, err := s.store.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, conv, user.ID); err != nil {
		return nil, err
	}
	if start < 0 {
		return nil, apperror.Input("start", "start must not be negative")
	}
	count, err := s.store.CountMessages(ctx, convID)
	if err != nil {
		return nil, err
	}
	if start > count {
		return nil, apperror.Inputf("start %d exceeds message count %d", start, count)
	}

	msgs, err := s.store.ListMessages(ctx, convID, MessagePageSize, start)
	if err != nil {
		return nil, err
	}
	markCallerReacts(msgs, user.ID)

	end := start + MessagePageSize
	if end >= count {
		end = -1
	}
	return &model.MessagePage{
		Messages: msgs,
		Start:    start,
		End:      end,
	}, nil
}

// Edit replaces a message's body. Editing to the empty string deletes the
// message instead. Permission: the original sender, or anyone holding owner
// permission in the containing conversation.
func (s *MessageService) Edit(ctx context.Context, token string, messageID int64, body string) error {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if len(body) > MaxMessageLength {
		return apperror.Input("message",
			fmt.Sprintf("message must be at most %d characters", MaxMessageLength))
	}
	msg, conv, err := s.visibleMessage(ctx, user, messageID)
	if err != nil {
		return err
	}
	if err := s.requireSenderOrOwner(ctx, conv, user, msg); err != nil {
		return err
	}

	defer s.locks.lock(conv.ID)()

	if body == "" {
		return s.store.DeleteMessage(ctx, messageID)
	}
	return s.store.UpdateMessageBody(ctx, messageID, body)
}

// Remove hard-deletes a message, under the same permission rule as Edit.
func (s *MessageService) Remove(ctx context.Context, token string, messageID int64) error {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	msg, conv, err := s.visibleMessage(ctx, user, messageID)
	if err != nil {
		return err
	}
	if err := s.requireSenderOrOwner(ctx, conv, user, msg); err != nil {
		return err
	}

	defer s.locks.lock(conv.ID)()

	return s.store.DeleteMessage(ctx, messageID)
}

// React records the caller's reaction on a message. Reacting twice with the
// same kind is an input error.
func (s *MessageService) React(ctx context.Context, token string, messageID int64, reactID int) error {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if reactID != model.ThumbsUpReactID {
		return apperror.Inputf("%d is not a valid react id", reactID)
	}
	_, conv, err := s.visibleMessage(ctx, user, messageID)
	if err != nil {
		return err
	}

	defer s.locks.lock(conv.ID)()

	has, err := s.store.HasReact(ctx, messageID, reactID, user.ID)
	if err != nil {
		return err
	}
	if has {
		return apperror.Inputf("user already reacted to message %d", messageID)
	}
	return s.store.AddReact(ctx, messageID, reactID, user.ID)
}

// Unreact removes the caller's reaction; absent reactions are input errors.
func (s *MessageService) Unreact(ctx context.Context, token string, messageID int64, reactID int) error {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if reactID != model.ThumbsUpReactID {
		return apperror.Inputf("%d is not a valid react id", reactID)
	}
	_, conv, err := s.visibleMessage(ctx, user, messageID)
	if err != nil {
		return err
	}

	defer s.locks.lock(conv.ID)()

	has, err := s.store.HasReact(ctx, messageID, reactID, user.ID)
	if err != nil {
		return err
	}
	if !has {
		return apperror.Inputf("user has not reacted to message %d", messageID)
	}
	return s.store.RemoveReact(ctx, messageID, reactID, user.ID)
}

// Pin marks a message. Pinning needs owner permission in the containing
// conversation — a plain member gets an access error.
func (s *MessageService) Pin(ctx context.Context, token string, messageID int64) error {
	return s.setPinned(ctx, token, messageID, true)
}

// Unpin clears the mark, under the same permission rule as Pin.
func (s *MessageService) Unpin(ctx context.Context, token string, messageID int64) error {
	return s.setPinned(ctx, token, messageID, false)
}

func (s *MessageService) setPinned(ctx context.Context, token string, messageID int64, pinned bool) error {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	msg, conv, err := s.visibleMessage(ctx, user, messageID)
	if err != nil {
		return err
	}
	ok, err := s.hasOwnerPermission(ctx, conv, user)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Access(fmt.Sprintf("user does not have owner permission in the %s", conv.Kind))
	}

	defer s.locks.lock(conv.ID)()

	if msg.IsPinned == pinned {
		if pinned {
			return apperror.Inputf("message %d is already pinned", messageID)
		}
		return apperror.Inputf("message %d is not pinned", messageID)
	}
	return s.store.SetPinned(ctx, messageID, pinned)
}

// visibleMessage fetches a message the caller is allowed to address: it must
// exist AND live in a conversation the caller currently belongs to. Both
// failures are input errors — a message id outside the caller's
// conversations is indistinguishable from an unknown one.
func (s *MessageService) visibleMessage(ctx context.Context, user *model.User, messageID int64) (*model.Message, *model.Conversation, error) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}
	conv, err := s.store.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		return nil, nil, err
	}
	member, err := s.store.IsMember(ctx, conv.ID, user.ID)
	if err != nil {
		return nil, nil, err
	}
	if !member {
		return nil, nil, apperror.NotFound("message", messageID)
	}
	return msg, conv, nil
}

// requireSenderOrOwner is the edit/remove permission rule.
func (s *MessageService) requireSenderOrOwner(ctx context.Context, conv *model.Conversation, user *model.User, msg *model.Message) error {
	if msg.SenderID == user.ID {
		return nil
	}
	ok, err := s.hasOwnerPermission(ctx, conv, user)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Access("user may not modify another member's message")
	}
	return nil
}

// markCallerReacts fills in IsThisUserReacted from the caller's viewpoint.
func markCallerReacts(msgs []model.Message, userID int64) {
	for i := range msgs {
		for j := range msgs[i].Reacts {
			for _, uid := range msgs[i].Reacts[j].UIDs {
				if uid == userID {
					msgs[i].Reacts[j].IsThisUserReacted = true
					break
				}
			}
		}
	}
}
