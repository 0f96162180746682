package api

import (
	"errors"
	"net/http"

	"github.com/okian/quantumcrowd/internal/domain/model"
	"github.com/okian/quantumcrowd/pkg/logger"
)

// PredictHandler accepts prediction requests.
type PredictHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies, log logger.Logger) *PredictHandler {
	return &PredictHandler{deps: deps, log: log}
}

// HandlePredict handles POST /api/predict. It answers with a placeholder
// record immediately; scoring completes in the background.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req predictRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", WrapKind("predict", ErrBadRequest, err))
		return
	}

	sub, err := h.deps.Submit(r.Context(), *req.StartupID, *req.Features)
	switch {
	case err == nil:
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	case errors.Is(err, model.ErrBackpressure):
		h.log.Warn(r.Context(), "prediction rejected: queue full", logger.Int("startupId", *req.StartupID))
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind("predict", ErrBackpressure, err))
		return
	default:
		h.log.Error(r.Context(), "prediction submit failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{PredictionRecord: sub.Placeholder, JobID: sub.JobID})
}
