package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/teamline/internal/service"
)

// ChannelHandler serves channel creation, listing and membership routes.
type ChannelHandler struct {
	channels *service.ChannelService
	logger   *slog.Logger
}

func NewChannelHandler(channels *service.ChannelService, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{channels: channels, logger: logger}
}

// HandleCreate makes a channel.
//
// HTTP: POST /api/channels
// BODY: {"token","name","isPublic"}
func (h *ChannelHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Name     string `json:"name"`
		IsPublic bool   `json:"isPublic"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := h.channels.Create(r.Context(), requestToken(r, req.Token), req.Name, req.IsPublic)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"channelId": id})
}

// HandleList lists the caller's channels, or every channel with ?all=true.
//
// HTTP: GET /api/channels?token=&all=
func (h *ChannelHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"
	list, err := h.channels.List(r.Context(), requestToken(r, ""), all)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": list})
}

// HandleDetails returns a channel's metadata and rosters.
//
// HTTP: GET /api/channels/{channelID}?token=
func (h *ChannelHandler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "channelID")
	if err != nil {
		writeError(w, err)
		return
	}
	details, err := h.channels.Details(r.Context(), requestToken(r, ""), channelID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// HandleJoin adds the caller to a channel.
//
// HTTP: POST /api/channels/{channelID}/join
// BODY: {"token"}
func (h *ChannelHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	h.membershipAction(w, r, h.channels.Join)
}

// HandleLeave removes the caller from a channel.
//
// HTTP: POST /api/channels/{channelID}/leave
// BODY: {"token"}
func (h *ChannelHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	h.membershipAction(w, r, h.channels.Leave)
}

// HandleInvite adds another user to a channel.
//
// HTTP: POST /api/channels/{channelID}/invite
// BODY: {"token","uId"}
func (h *ChannelHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	h.targetAction(w, r, h.channels.Invite)
}

// HandleAddOwner promotes a member to owner.
//
// HTTP: POST /api/channels/{channelID}/owners
// BODY: {"token","uId"}
func (h *ChannelHandler) HandleAddOwner(w http.ResponseWriter, r *http.Request) {
	h.targetAction(w, r, h.channels.AddOwner)
}

// HandleRemoveOwner demotes an owner to member.
//
// HTTP: DELETE /api/channels/{channelID}/owners
// BODY: {"token","uId"}
func (h *ChannelHandler) HandleRemoveOwner(w http.ResponseWriter, r *http.Request) {
	h.targetAction(w, r, h.channels.RemoveOwner)
}

// membershipAction factors the join/leave shape: a channel id in the path,
// a token in the body, nothing else.
func (h *ChannelHandler) membershipAction(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, token string, channelID int64) error) {
	channelID, err := pathID(r, "channelID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := action(r.Context(), requestToken(r, req.Token), channelID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// targetAction factors the invite/addOwner/removeOwner shape: a channel id
// in the path, a token and a target uId in the body.
func (h *ChannelHandler) targetAction(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, token string, channelID, uID int64) error) {
	channelID, err := pathID(r, "channelID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Token string `json:"token"`
		UID   int64  `json:"uId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := action(r.Context(), requestToken(r, req.Token), channelID, req.UID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
