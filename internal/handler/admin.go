package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/teamline/internal/service"
)

// AdminHandler serves the administrative state wipe. It takes no token and
// exists for test isolation — deployments that are not test rigs should not
// mount it.
type AdminHandler struct {
	admin  *service.AdminService
	logger *slog.Logger
}

func NewAdminHandler(admin *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// HandleClear wipes all persisted state and pending standup windows.
//
// HTTP: DELETE /api/admin/clear
func (h *AdminHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Warn("all state cleared")
	writeJSON(w, http.StatusOK, struct{}{})
}
