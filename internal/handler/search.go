package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/teamline/internal/service"
)

// SearchHandler serves message search.
type SearchHandler struct {
	search *service.SearchService
	logger *slog.Logger
}

func NewSearchHandler(search *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{search: search, logger: logger}
}

// HandleQuery returns the caller's visible messages matching the query.
//
// HTTP: GET /api/search?token=&queryStr=
func (h *SearchHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.search.Query(r.Context(), requestToken(r, ""), r.URL.Query().Get("queryStr"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}
