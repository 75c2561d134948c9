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

// CardHandler handles card endpoints
type CardHandler struct {
	catalog *services.CatalogService
	logger  *zap.Logger
}

// NewCardHandler creates a new card handler
func NewCardHandler(catalog *services.CatalogService, logger *zap.Logger) *CardHandler {
	return &CardHandler{catalog: catalog, logger: logger}
}

// CardRequest represents the request to create or update a card
type CardRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Content     string  `json:"content" validate:"required,min=1,max=5000"`
	LinkURL     string  `json:"linkUrl" validate:"omitempty,url"`
	CategoryIDs []int64 `json:"categoryIds"`
}

// CardResponse represents a card in API responses. Click counters stay
// internal.
type CardResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	LinkURL     string  `json:"linkUrl"`
	CategoryIDs []int64 `json:"categoryIds"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toCardResponse(c *catalog.Card) CardResponse {
	categoryIDs := c.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = []int64{}
	}
	return CardResponse{
		ID:          c.ID,
		Title:       c.Title,
		Content:     c.Content,
		LinkURL:     c.LinkURL,
		CategoryIDs: categoryIDs,
		CreatedAt:   utils.FormatRFC3339(c.CreatedAt),
		UpdatedAt:   utils.FormatRFC3339(c.UpdatedAt),
	}
}

// ListCards handles GET /api/cards with an optional categoryId filter
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			common.RespondError(w, http.StatusBadRequest, "Invalid category id")
			return
		}
		categoryID = &id
	}

	cards, err := h.catalog.ListCards(r.Context(), categoryID)
	if err != nil {
		h.logger.Error("Failed to list cards", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	out := make([]CardResponse, 0, len(cards))
	for i := range cards {
		out = append(out, toCardResponse(&cards[i]))
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// GetCard handles GET /api/cards/{cardID}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	card, err := h.catalog.GetCard(r.Context(), cardID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toCardResponse(card))
}

// CreateCard handles POST /api/cards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CardRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	card := &catalog.Card{
		Title:       req.Title,
		Content:     req.Content,
		LinkURL:     req.LinkURL,
		CategoryIDs: req.CategoryIDs,
	}
	if err := h.catalog.CreateCard(r.Context(), card); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toCardResponse(card))
}

// UpdateCard handles PATCH /api/cards/{cardID}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	var req CardRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	card, err := h.catalog.GetCard(r.Context(), cardID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	card.Title = req.Title
	card.Content = req.Content
	card.LinkURL = req.LinkURL
	card.CategoryIDs = req.CategoryIDs

	if err := h.catalog.UpdateCard(r.Context(), card); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toCardResponse(card))
}

// DeleteCard handles DELETE /api/cards/{cardID}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	if err := h.catalog.DeleteCard(r.Context(), cardID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
