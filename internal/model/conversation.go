package model

// ConversationKind distinguishes the two conversation flavours. They share
// one id space and one message log; the membership rules differ (channels
// have join/invite/ownership, dms have a fixed member set and a creator).
type ConversationKind string

const (
	KindChannel ConversationKind = "channel"
	KindDm      ConversationKind = "dm"
)

// Conversation is a channel or a dm.
//
// For channels, Owners always satisfies owners ⊆ members; a channel may end
// up with zero owners when the last owner leaves (leaving never transfers
// ownership). For dms, CreatorID is the only elevated role — it alone
// authorizes deleting the dm — and the Owners set stays empty.
type Conversation struct {
	ID        int64            `json:"-" db:"id"`
	Kind      ConversationKind `json:"-" db:"kind"`
	Name      string           `json:"name" db:"name"`
	IsPublic  bool             `json:"isPublic" db:"is_public"` // channels only
	CreatorID int64            `json:"-" db:"creator_id"`
	CreatedAt int64            `json:"-" db:"created_at"` // unix seconds
}

// ChannelSummary is the list-view shape for channels.
type ChannelSummary struct {
	ID   int64  `json:"channelId"`
	Name string `json:"name"`
}

// DmSummary is the list-view shape for dms.
type DmSummary struct {
	ID   int64  `json:"dmId"`
	Name string `json:"name"`
}

// ChannelDetails is returned by the channel details operation: metadata plus
// the full member and owner profiles.
type ChannelDetails struct {
	Name         string    `json:"name"`
	IsPublic     bool      `json:"isPublic"`
	OwnerMembers []Profile `json:"ownerMembers"`
	AllMembers   []Profile `json:"allMembers"`
}

// DmDetails is returned by the dm details operation.
type DmDetails struct {
	Name    string    `json:"name"`
	Members []Profile `json:"members"`
}
