package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/teamline/internal/service"
)

// StandupHandler serves the standup window routes.
type StandupHandler struct {
	standups *service.StandupService
	logger   *slog.Logger
}

func NewStandupHandler(standups *service.StandupService, logger *slog.Logger) *StandupHandler {
	return &StandupHandler{standups: standups, logger: logger}
}

// HandleStart opens a standup window on a channel.
//
// HTTP: POST /api/channels/{channelID}/standup/start
// BODY: {"token","length"}   (seconds)
func (h *StandupHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "channelID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Token  string `json:"token"`
		Length int    `json:"length"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	finish, err := h.standups.Start(r.Context(), requestToken(r, req.Token), channelID, req.Length)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"timeFinish": finish})
}

// HandleSend buffers a line into the channel's active window.
//
// HTTP: POST /api/channels/{channelID}/standup/send
// BODY: {"token","message"}
func (h *StandupHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "channelID")
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
	if err := h.standups.Send(r.Context(), requestToken(r, req.Token), channelID, req.Message); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// HandleActive reports the channel's window state.
//
// HTTP: GET /api/channels/{channelID}/standup?token=
func (h *StandupHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "channelID")
	if err != nil {
		writeError(w, err)
		return
	}
	status, err := h.standups.Active(r.Context(), requestToken(r, ""), channelID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
