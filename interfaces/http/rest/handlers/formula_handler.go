// Package handlers implements the REST endpoints. Handlers translate
// between the JSON surface and the application services; counters and
// scores never appear in responses.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"formulahub-backend/application/services"
	"formulahub-backend/domain/catalog"
	"formulahub-backend/pkg/common"
	"formulahub-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20 // 1MB

// FormulaHandler handles formula endpoints, including trending
type FormulaHandler struct {
	catalog  *services.CatalogService
	trending *services.TrendingService
	logger   *zap.Logger
}

// NewFormulaHandler creates a new formula handler
func NewFormulaHandler(catalog *services.CatalogService, trending *services.TrendingService, logger *zap.Logger) *FormulaHandler {
	return &FormulaHandler{
		catalog:  catalog,
		trending: trending,
		logger:   logger,
	}
}

// CreateFormulaRequest represents the request to create a formula
type CreateFormulaRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"required,min=1,max=2000"`
	Formula     string  `json:"formula" validate:"required,min=1,max=2000"`
	VideoURL    string  `json:"videoUrl" validate:"omitempty,url"`
	CategoryIDs []int64 `json:"categoryIds"`
}

// FormulaResponse represents a formula in API responses. Copy counters
// stay internal.
type FormulaResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Formula     string  `json:"formula"`
	VideoURL    string  `json:"videoUrl"`
	CategoryIDs []int64 `json:"categoryIds"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toFormulaResponse(f *catalog.Formula) FormulaResponse {
	categoryIDs := f.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = []int64{}
	}
	return FormulaResponse{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Formula:     f.Expression,
		VideoURL:    f.VideoURL,
		CategoryIDs: categoryIDs,
		CreatedAt:   utils.FormatRFC3339(f.CreatedAt),
		UpdatedAt:   utils.FormatRFC3339(f.UpdatedAt),
	}
}

func toFormulaResponses(formulas []catalog.Formula) []FormulaResponse {
	out := make([]FormulaResponse, 0, len(formulas))
	for i := range formulas {
		out = append(out, toFormulaResponse(&formulas[i]))
	}
	return out
}

// parseCategoryIDs parses a comma-separated categoryIds query parameter,
// skipping values that are not integers.
func parseCategoryIDs(raw string) []int64 {
	if raw == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// ListFormulas handles GET /api/formulas. With a categoryIds filter the
// listing is ordered by recent copy activity; unfiltered it is newest
// first.
func (h *FormulaHandler) ListFormulas(w http.ResponseWriter, r *http.Request) {
	categoryIDs := parseCategoryIDs(r.URL.Query().Get("categoryIds"))

	formulas, err := h.catalog.ListFormulas(r.Context(), categoryIDs)
	if err != nil {
		h.logger.Error("Failed to list formulas", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toFormulaResponses(formulas))
}

// GetTrending handles GET /api/formulas/trending
func (h *FormulaHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	categoryIDs := parseCategoryIDs(r.URL.Query().Get("categoryIds"))
	pagination := common.ExtractPaginationParams(r)

	ranked, err := h.trending.GetTrending(r.Context(), categoryIDs, pagination.Page, pagination.PageSize)
	if err != nil {
		h.logger.Error("Failed to compute trending", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	out := make([]FormulaResponse, 0, len(ranked))
	for i := range ranked {
		out = append(out, toFormulaResponse(&ranked[i].Formula))
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// GetFormula handles GET /api/formulas/{formulaID}
func (h *FormulaHandler) GetFormula(w http.ResponseWriter, r *http.Request) {
	formulaID := chi.URLParam(r, "formulaID")

	formula, err := h.catalog.GetFormula(r.Context(), formulaID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toFormulaResponse(formula))
}

// CreateFormula handles POST /api/formulas
func (h *FormulaHandler) CreateFormula(w http.ResponseWriter, r *http.Request) {
	var req CreateFormulaRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	formula := &catalog.Formula{
		Name:        req.Name,
		Description: req.Description,
		Expression:  req.Formula,
		VideoURL:    req.VideoURL,
		CategoryIDs: req.CategoryIDs,
	}
	if err := h.catalog.CreateFormula(r.Context(), formula); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toFormulaResponse(formula))
}

// UpdateFormula handles PUT /api/formulas/{formulaID}
func (h *FormulaHandler) UpdateFormula(w http.ResponseWriter, r *http.Request) {
	formulaID := chi.URLParam(r, "formulaID")

	var req CreateFormulaRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.catalog.GetFormula(r.Context(), formulaID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Expression = req.Formula
	existing.VideoURL = req.VideoURL
	existing.CategoryIDs = req.CategoryIDs

	if err := h.catalog.UpdateFormula(r.Context(), existing); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toFormulaResponse(existing))
}

// DeleteFormula handles DELETE /api/formulas/{formulaID}
func (h *FormulaHandler) DeleteFormula(w http.ResponseWriter, r *http.Request) {
	formulaID := chi.URLParam(r, "formulaID")

	if err := h.catalog.DeleteFormula(r.Context(), formulaID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
