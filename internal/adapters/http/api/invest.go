package api

import "net/http"

// InvestHandler prepares investment intents for client-side signing.
type InvestHandler struct {
	deps Dependencies
}

// NewInvestHandler creates a new invest-intent handler.
func NewInvestHandler(deps Dependencies) *InvestHandler {
	return &InvestHandler{deps: deps}
}

// HandleInvestIntent handles POST /api/invest-intent.
func (h *InvestHandler) HandleInvestIntent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req investRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", WrapKind("invest_intent", ErrBadRequest, err))
		return
	}

	intent, err := h.deps.InvestIntent(r.Context(), *req.StartupID, req.Investor, req.Amount)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, intent)
}
