package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sakif/teamline/internal/apperror"
	"github.com/sakif/teamline/internal/model"
)

// StandupService runs the per-channel standup windows.
//
// A window is Idle -> Active -> Idle: start opens it for a fixed number of
// seconds, members buffer lines into it, and at expiry the buffered lines
// are flushed as one combined message authored by whoever started the
// window. Zero buffered lines flush to nothing.
//
// Windows live in process memory only (a restart silently drops a pending
// window) and are keyed by channel id — at most one per channel. The flush
// is the system's single time-triggered action, scheduled with time.AfterFunc;
// the timer registry makes it cancellable, which the administrative clear
// uses. No user-facing cancellation exists: a window ends by expiry alone.
type StandupService struct {
	core

	mu      sync.Mutex
	windows map[int64]*standupWindow

	// schedule is time.AfterFunc, swappable in tests so a flush can be
	// triggered on demand instead of sleeping out real windows.
	schedule func(d time.Duration, f func()) *time.Timer
	now      func() time.Time
}

type standupWindow struct {
	starterID int64
	openUntil int64 // unix seconds
	lines     []model.StandupLine
	timer     *time.Timer
}

func newStandupService(c core) *StandupService {
	return &StandupService{
		core:     c,
		windows:  make(map[int64]*standupWindow),
		schedule: time.AfterFunc,
		now:      time.Now,
	}
}

// Start opens a standup window on a channel for lengthSeconds and returns
// the expiry timestamp. One active window per channel — a second start
// while one is pending is rejected.
func (s *StandupService) Start(ctx context.Context, token string, channelID int64, lengthSeconds int) (int64, error) {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return 0, err
	}
	conv, err := s.channel(ctx, channelID)
	if err != nil {
		return 0, err
	}
	if err := s.requireMember(ctx, conv, user.ID); err != nil {
		return 0, err
	}
	if lengthSeconds < 0 {
		return 0, apperror.Input("length", "standup length must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, active := s.windows[channelID]; active {
		return 0, apperror.Inputf("a standup is already active in channel %d", channelID)
	}

	openUntil := s.now().Add(time.Duration(lengthSeconds) * time.Second).Unix()
	w := &standupWindow{starterID: user.ID, openUntil: openUntil}
	w.timer = s.schedule(time.Duration(lengthSeconds)*time.Second, func() {
		s.flush(channelID)
	})
	s.windows[channelID] = w

	s.logger.Info("standup started",
		slog.Int64("channelID", channelID),
		slog.Int64("starterID", user.ID),
		slog.Int("lengthSeconds", lengthSeconds),
	)
	return openUntil, nil
}

// Send buffers one line into the channel's active window. The line is
// recorded as "<handle>: <text>"; it becomes part of a real message only
// when the window flushes.
func (s *StandupService) Send(ctx context.Context, token string, channelID int64, line string) error {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	conv, err := s.channel(ctx, channelID)
	if err != nil {
		return err
	}
	if err := s.requireMember(ctx, conv, user.ID); err != nil {
		return err
	}
	if len(line) > MaxMessageLength {
		return apperror.Input("message",
			fmt.Sprintf("standup line must be at most %d characters", MaxMessageLength))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, active := s.windows[channelID]
	if !active {
		return apperror.Inputf("no standup is active in channel %d", channelID)
	}
	w.lines = append(w.lines, model.StandupLine{Handle: user.Handle, Text: line})
	return nil
}

// Active reports whether a window is open on the channel, and until when.
func (s *StandupService) Active(ctx context.Context, token string, channelID int64) (*model.StandupStatus, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	if w, active := s.windows[channelID]; active {
		finish := w.openUntil
		return &model.StandupStatus{IsActive: true, TimeFinish: &finish}, nil
	}
	return &model.StandupStatus{IsActive: false, TimeFinish: nil}, nil
}

// flush closes a window and posts its buffer as one message.
//
// It runs on the timer goroutine with no request attached, so it uses a
// background context and reports failures to the log — there is nobody to
// return an error to. The combined message is authored by the starter even
// if they have since left the channel: the flush is the deferred effect of
// an authorized start, not a new send.
func (s *StandupService) flush(channelID int64) {
	s.mu.Lock()
	w, ok := s.windows[channelID]
	delete(s.windows, channelID)
	s.mu.Unlock()

	if !ok || len(w.lines) == 0 {
		return
	}

	rows := make([]string, 0, len(w.lines))
	for _, l := range w.lines {
		rows = append(rows, l.Handle+": "+l.Text)
	}

	ctx := context.Background()

	defer s.locks.lock(channelID)()

	msg := &model.Message{
		ConversationID: channelID,
		SenderID:       w.starterID,
		Body:           strings.Join(rows, "\n"),
		TimeSent:       s.now().Unix(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		s.logger.Error("standup flush failed",
			slog.Int64("channelID", channelID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Info("standup flushed",
		slog.Int64("channelID", channelID),
		slog.Int64("messageID", msg.ID),
		slog.Int("lines", len(w.lines)),
	)
}

// reset cancels every pending window. Called by the administrative clear.
func (s *StandupService) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, w := range s.windows {
		w.timer.Stop()
		delete(s.windows, id)
	}
}
