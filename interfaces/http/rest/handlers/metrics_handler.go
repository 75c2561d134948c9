package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"formulahub-backend/application/services"
	"formulahub-backend/interfaces/http/rest/middleware"
	"formulahub-backend/pkg/common"
	"formulahub-backend/pkg/utils"
)

// MetricsHandler handles interaction event endpoints. Both endpoints
// sit behind the session middleware, so a session id is always present.
type MetricsHandler struct {
	metrics *services.MetricsService
	logger  *zap.Logger
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(metrics *services.MetricsService, logger *zap.Logger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, logger: logger}
}

// RecordCopyRequest represents a formula copy notification
type RecordCopyRequest struct {
	FormulaID string `json:"formulaId" validate:"required"`
}

// RecordClickRequest represents a card click notification
type RecordClickRequest struct {
	CardID string `json:"cardId" validate:"required"`
}

// EventResponse reports whether the event was accepted. A duplicate
// inside the rate-limit window is still a success; recorded tells the
// two cases apart.
type EventResponse struct {
	Success  bool `json:"success"`
	Recorded bool `json:"recorded"`
}

// RecordCopy handles POST /api/metrics/copy
func (h *MetricsHandler) RecordCopy(w http.ResponseWriter, r *http.Request) {
	var req RecordCopyRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := middleware.GetSessionID(r.Context())
	recorded, err := h.metrics.RecordCopy(r.Context(), req.FormulaID, sessionID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, EventResponse{Success: true, Recorded: recorded})
}

// RecordClick handles POST /api/clicks
func (h *MetricsHandler) RecordClick(w http.ResponseWriter, r *http.Request) {
	var req RecordClickRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := middleware.GetSessionID(r.Context())
	recorded, err := h.metrics.RecordClick(r.Context(), req.CardID, sessionID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, EventResponse{Success: true, Recorded: recorded})
}
