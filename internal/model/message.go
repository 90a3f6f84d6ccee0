package model

// ThumbsUpReactID is the only reaction kind the API currently accepts.
const ThumbsUpReactID = 1

// Message is one entry in a conversation's append-only log.
//
// MessageID is globally unique and monotonic across the whole system — all
// conversations share a single id sequence, so descending id is a stable
// "newest first" order even when timestamps collide.
type Message struct {
	ID             int64 `json:"messageId" db:"id"`
	ConversationID int64 `json:"-" db:"conversation_id"`
	SenderID       int64 `json:"uId" db:"sender_id"`
	Body           string `json:"message" db:"body"`
	TimeSent       int64 `json:"timeSent" db:"time_sent"` // unix seconds
	IsPinned       bool  `json:"isPinned" db:"is_pinned"`

	// Reacts is assembled from the reacts table at read time, grouped by
	// react id, with IsThisUserReacted computed for the requesting caller.
	Reacts []React `json:"reacts"`
}

// React is the per-kind aggregation of reactions on one message.
type React struct {
	ReactID           int     `json:"reactId"`
	UIDs              []int64 `json:"uIds"`
	IsThisUserReacted bool    `json:"isThisUserReacted"`
}

// MessagePage is one pagination window over a conversation's log: up to 50
// messages newest-first. End is Start+50 when more remain, -1 otherwise.
type MessagePage struct {
	Messages []Message `json:"messages"`
	Start    int       `json:"start"`
	End      int       `json:"end"`
}
