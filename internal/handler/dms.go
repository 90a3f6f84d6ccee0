package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/teamline/internal/service"
)

// DmHandler serves dm creation, listing and membership routes.
type DmHandler struct {
	dms    *service.DmService
	logger *slog.Logger
}

func NewDmHandler(dms *service.DmService, logger *slog.Logger) *DmHandler {
	return &DmHandler{dms: dms, logger: logger}
}

// HandleCreate makes a dm between the caller and the listed users.
//
// HTTP: POST /api/dms
// BODY: {"token","uIds":[2,3]}
func (h *DmHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string  `json:"token"`
		UIDs  []int64 `json:"uIds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := h.dms.Create(r.Context(), requestToken(r, req.Token), req.UIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"dmId": id})
}

// HandleList lists the caller's dms.
//
// HTTP: GET /api/dms?token=
func (h *DmHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.dms.List(r.Context(), requestToken(r, ""))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dms": list})
}

// HandleDetails returns a dm's name and members.
//
// HTTP: GET /api/dms/{dmID}?token=
func (h *DmHandler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	dmID, err := pathID(r, "dmID")
	if err != nil {
		writeError(w, err)
		return
	}
	details, err := h.dms.Details(r.Context(), requestToken(r, ""), dmID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// HandleLeave removes the caller from a dm.
//
// HTTP: POST /api/dms/{dmID}/leave
// BODY: {"token"}
func (h *DmHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	dmID, err := pathID(r, "dmID")
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
	if err := h.dms.Leave(r.Context(), requestToken(r, req.Token), dmID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// HandleRemove deletes a dm and all of its messages. Creator only.
//
// HTTP: DELETE /api/dms/{dmID}?token=
func (h *DmHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	dmID, err := pathID(r, "dmID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.dms.Remove(r.Context(), requestToken(r, ""), dmID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
