package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/teamline/internal/service"
)

// MessageHandler serves message sending, pagination and the per-message
// mutations (edit, remove, react, pin).
type MessageHandler struct {
	messages *service.MessageService
	logger   *slog.Logger
}

func NewMessageHandler(messages *service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

// HandleSend appends a message to a channel or dm.
//
// HTTP: POST /api/channels/{channelID}/messages
// HTTP: POST /api/dms/{dmID}/messages
// BODY: {"token","message"}
//
// Both routes target the shared conversation id space; conversationID
// names whichever path parameter the route used.
func (h *MessageHandler) HandleSend(idParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID, err := pathID(r, idParam)
		if err != nil {
			writeError(w, err)
			return
		}
		var req struct {
			Token   string `json:"token"`
			Message string `json:"message"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		id, err := h.messages.Send(r.Context(), requestToken(r, req.Token), convID, req.Message)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"messageId": id})
	}
}

// HandlePage returns one 50-message window of a conversation's log.
//
// HTTP: GET /api/channels/{channelID}/messages?token=&start=
// HTTP: GET /api/dms/{dmID}/messages?token=&start=
func (h *MessageHandler) HandlePage(idParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID, err := pathID(r, idParam)
		if err != nil {
			writeError(w, err)
			return
		}
		start, err := queryInt(r, "start", 0)
		if err != nil {
			writeError(w, err)
			return
		}
		page, err := h.messages.Page(r.Context(), requestToken(r, ""), convID, start)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// HandleEdit replaces a message's body (empty body deletes it).
//
// HTTP: PUT /api/messages/{messageID}
// BODY: {"token","message"}
func (h *MessageHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	messageID, err := pathID(r, "messageID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.messages.Edit(r.Context(), requestToken(r, req.Token), messageID, req.Message); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// HandleRemove hard-deletes a message.
//
// HTTP: DELETE /api/messages/{messageID}?token=
func (h *MessageHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	messageID, err := pathID(r, "messageID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.messages.Remove(r.Context(), requestToken(r, ""), messageID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// HandleReact records a reaction.
//
// HTTP: POST /api/messages/{messageID}/react
// BODY: {"token","reactId"}
func (h *MessageHandler) HandleReact(w http.ResponseWriter, r *http.Request) {
	h.reactAction(w, r, h.messages.React)
}

// HandleUnreact removes a reaction.
//
// HTTP: POST /api/messages/{messageID}/unreact
// BODY: {"token","reactId"}
func (h *MessageHandler) HandleUnreact(w http.ResponseWriter, r *http.Request) {
	h.reactAction(w, r, h.messages.Unreact)
}

// HandlePin marks a message (owner permission required).
//
// HTTP: POST /api/messages/{messageID}/pin
// BODY: {"token"}
func (h *MessageHandler) HandlePin(w http.ResponseWriter, r *http.Request) {
	h.pinAction(w, r, h.messages.Pin)
}

// HandleUnpin clears the mark.
//
// HTTP: POST /api/messages/{messageID}/unpin
// BODY: {"token"}
func (h *MessageHandler) HandleUnpin(w http.ResponseWriter, r *http.Request) {
	h.pinAction(w, r, h.messages.Unpin)
}

func (h *MessageHandler) reactAction(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, token string, messageID int64, reactID int) error) {
	messageID, err := pathID(r, "messageID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Token   string `json:"token"`
		ReactID int    `json:"reactId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := action(r.Context(), requestToken(r, req.Token), messageID, req.ReactID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *MessageHandler) pinAction(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, token string, messageID int64) error) {
	messageID, err := pathID(r, "messageID")
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
	if err := action(r.Context(), requestToken(r, req.Token), messageID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
