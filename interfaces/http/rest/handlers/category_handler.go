package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"formulahub-backend/application/services"
	"formulahub-backend/domain/catalog"
	"formulahub-backend/pkg/common"
	"formulahub-backend/pkg/utils"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	catalog *services.CatalogService
	logger  *zap.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(catalog *services.CatalogService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{catalog: catalog, logger: logger}
}

// CategoryRequest represents the request to create or update a category
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   utils.FormatRFC3339(c.CreatedAt),
		UpdatedAt:   utils.FormatRFC3339(c.UpdatedAt),
	}
}

func categoryIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	return id, err == nil && id > 0
}

// ListCategories handles GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryResponse(&categories[i]))
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// GetCategory handles GET /api/categories/{categoryID}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryIDParam(r)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	category, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toCategoryResponse(category))
}

// CreateCategory handles POST /api/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	category := &catalog.Category{Name: req.Name, Description: req.Description}
	if err := h.catalog.CreateCategory(r.Context(), category); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// UpdateCategory handles PATCH /api/categories/{categoryID}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryIDParam(r)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	var req CategoryRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	category.Name = req.Name
	category.Description = req.Description

	if err := h.catalog.UpdateCategory(r.Context(), category); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory handles DELETE /api/categories/{categoryID}. Content in
// the category survives; only the memberships go.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryIDParam(r)
	if !ok {
		common.RespondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
