package api

import (
	"net/http"
	"strconv"
	"strings"
)

// StartupsHandler serves the startup catalogue.
type StartupsHandler struct {
	deps Dependencies
}

// NewStartupsHandler creates a new startups handler.
func NewStartupsHandler(deps Dependencies) *StartupsHandler {
	return &StartupsHandler{deps: deps}
}

// HandleList handles GET /api/startups.
func (h *StartupsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	startups, err := h.deps.Startups(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, startups)
}

// HandleGet handles GET /api/startups/{id}.
func (h *StartupsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/api/startups/")
	if raw == "" || strings.Contains(raw, "/") {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", WrapKind("startup", ErrBadRequest, err))
		return
	}

	detail, err := h.deps.Startup(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
