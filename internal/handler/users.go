package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/teamline/internal/service"
)

// UserHandler serves the user directory.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList returns every registered user's profile.
//
// HTTP: GET /api/users?token=
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context(), requestToken(r, ""))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": list})
}

// HandleProfile returns one user's public profile.
//
// HTTP: GET /api/users/{uID}?token=
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	uID, err := pathID(r, "uID")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.users.Profile(r.Context(), requestToken(r, ""), uID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": p})
}

// HandleSetName updates the caller's name. The handle never changes.
//
// HTTP: PUT /api/users/name
// BODY: {"token","nameFirst","nameLast"}
func (h *UserHandler) HandleSetName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		NameFirst string `json:"nameFirst"`
		NameLast  string `json:"nameLast"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.SetName(r.Context(), requestToken(r, req.Token), req.NameFirst, req.NameLast); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// HandleSetEmail updates the caller's email.
//
// HTTP: PUT /api/users/email
// BODY: {"token","email"}
func (h *UserHandler) HandleSetEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.SetEmail(r.Context(), requestToken(r, req.Token), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
