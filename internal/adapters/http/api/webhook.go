package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/quantumcrowd/pkg/logger"
)

const maxLoggedBody = 256

// WebhookHandler receives notifications from the publication relayer.
type WebhookHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(deps Dependencies, log logger.Logger) *WebhookHandler {
	return &WebhookHandler{deps: deps, log: log}
}

// HandlePredictionPublished handles POST /api/webhook/prediction-published.
// Any well-formed JSON body is acknowledged, including notifications for
// startups without a prediction, replayed deliveries and bodies whose fields
// have unexpected types. Only unparsable bodies are rejected.
func (h *WebhookHandler) HandlePredictionPublished(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}

	// Non-object bodies leave req empty and are ignored like any other
	// unusable notification.
	var req publishedRequest
	_ = json.Unmarshal(raw, &req)

	startupID, txHash, ok := req.target()
	if !ok {
		h.log.Debug(r.Context(), "publication notification ignored", logger.String("body", truncate(raw, maxLoggedBody)))
		writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
		return
	}

	attached, err := h.deps.AttachPublication(r.Context(), startupID, txHash)
	if err != nil {
		h.log.Warn(r.Context(), "publication not attached",
			logger.Int("startupId", startupID), logger.String("txHash", txHash), logger.Error(err))
	} else {
		h.log.Debug(r.Context(), "publication notification",
			logger.Int("startupId", startupID), logger.String("txHash", txHash), logger.Bool("attached", attached))
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
