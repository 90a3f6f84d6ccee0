// Package handler contains the HTTP layer: thin translators between JSON
// requests and service calls. Handlers parse and delegate — every rule
// about who may do what lives in the service layer.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/teamline/internal/service"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// HandleRegister creates an account.
//
// HTTP: POST /api/auth/register
// BODY: {"email","password","nameFirst","nameLast"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		NameFirst string `json:"nameFirst"`
		NameLast  string `json:"nameLast"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Register(r.Context(), req.Email, req.Password, req.NameFirst, req.NameLast)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleLogin opens a new session.
//
// HTTP: POST /api/auth/login
// BODY: {"email","password"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleLogout invalidates the presented token.
//
// HTTP: POST /api/auth/logout
// BODY: {"token"}
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.Logout(r.Context(), requestToken(r, req.Token)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
