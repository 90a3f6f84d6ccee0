package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/sakif/teamline/internal/apperror"
)

// REQUEST HELPERS:
// The API carries the session token three ways — a `token` field in write
// bodies, a `token` query parameter on reads, and an Authorization: Bearer
// header as a convenience — and entity ids as URL path segments. These
// helpers keep the extraction in one place.

// decodeJSON reads the request body into dst, turning malformed JSON into
// an input error rather than a bare 500.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.Input("body", "invalid JSON request body")
	}
	return nil
}

// requestToken picks the token out of a request. bodyToken is whatever the
// decoded body carried (empty for GET/DELETE requests without one); the
// query parameter and the Authorization header are fallbacks, in that order.
// An absent token is returned as "" — the service layer rejects it when it
// fails to parse.
func requestToken(r *http.Request, bodyToken string) string {
	if bodyToken != "" {
		return bodyToken
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// pathID parses a numeric id out of a chi URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, apperror.Input(name, name+" must be an integer")
	}
	return id, nil
}

// queryInt parses an integer query parameter, defaulting when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Input(name, name+" must be an integer")
	}
	return v, nil
}
