package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"formulahub-backend/pkg/common"
)

// SeedFunc inserts sample content when the database is empty and
// returns how many items it inserted.
type SeedFunc func(ctx context.Context) (int, error)

// SeedHandler handles the admin seed endpoint
type SeedHandler struct {
	seed   SeedFunc
	logger *zap.Logger
}

// NewSeedHandler creates a new seed handler
func NewSeedHandler(seed SeedFunc, logger *zap.Logger) *SeedHandler {
	return &SeedHandler{seed: seed, logger: logger}
}

// Seed handles POST /api/seed
func (h *SeedHandler) Seed(w http.ResponseWriter, r *http.Request) {
	inserted, err := h.seed(r.Context())
	if err != nil {
		h.logger.Error("Failed to seed database", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"inserted": inserted,
	})
}
