package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"formulahub-backend/application/ports"
	"formulahub-backend/domain/catalog"
)

// CatalogService orchestrates CRUD over formulas, categories and cards.
// It owns id generation and timestamps; the repositories persist what
// they are given.
type CatalogService struct {
	formulas   ports.FormulaRepository
	categories ports.CategoryRepository
	cards      ports.CardRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	formulas ports.FormulaRepository,
	categories ports.CategoryRepository,
	cards ports.CardRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		formulas:   formulas,
		categories: categories,
		cards:      cards,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// --- Formulas ---

// CreateFormula validates and persists a new formula
func (s *CatalogService) CreateFormula(ctx context.Context, formula *catalog.Formula) error {
	if err := formula.Validate(); err != nil {
		return err
	}

	now := s.now()
	formula.ID = uuid.New().String()
	formula.CreatedAt = now
	formula.UpdatedAt = now

	if err := s.formulas.Create(ctx, formula); err != nil {
		s.logger.Error("Failed to create formula",
			zap.String("name", formula.Name),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// GetFormula retrieves a formula by id
func (s *CatalogService) GetFormula(ctx context.Context, id string) (*catalog.Formula, error) {
	return s.formulas.GetByID(ctx, id)
}

// ListFormulas lists formulas, optionally restricted to categories.
// Filtered listings are ordered by recent copy activity, matching the
// catalog browsing views.
func (s *CatalogService) ListFormulas(ctx context.Context, categoryIDs []int64) ([]catalog.Formula, error) {
	if len(categoryIDs) == 0 {
		return s.formulas.List(ctx)
	}
	return s.formulas.ListRecent(ctx, categoryIDs, 0, 0)
}

// ListRecentFormulas lists a page of formulas by last copy activity
func (s *CatalogService) ListRecentFormulas(ctx context.Context, categoryIDs []int64, limit, offset int) ([]catalog.Formula, error) {
	return s.formulas.ListRecent(ctx, categoryIDs, limit, offset)
}

// UpdateFormula validates and persists changes to an existing formula
func (s *CatalogService) UpdateFormula(ctx context.Context, formula *catalog.Formula) error {
	if err := formula.Validate(); err != nil {
		return err
	}
	formula.UpdatedAt = s.now()

	if err := s.formulas.Update(ctx, formula); err != nil {
		s.logger.Error("Failed to update formula",
			zap.String("formulaID", formula.ID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// DeleteFormula removes a formula, cascading to its events
func (s *CatalogService) DeleteFormula(ctx context.Context, id string) error {
	return s.formulas.Delete(ctx, id)
}

// --- Categories ---

// CreateCategory validates and persists a new category
func (s *CatalogService) CreateCategory(ctx context.Context, category *catalog.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}

	now := s.now()
	category.CreatedAt = now
	category.UpdatedAt = now

	if err := s.categories.Create(ctx, category); err != nil {
		s.logger.Error("Failed to create category",
			zap.String("name", category.Name),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// GetCategory retrieves a category by id
func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*catalog.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// ListCategories lists all categories ordered by name
func (s *CatalogService) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return s.categories.List(ctx)
}

// UpdateCategory validates and persists changes to a category
func (s *CatalogService) UpdateCategory(ctx context.Context, category *catalog.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}
	category.UpdatedAt = s.now()
	return s.categories.Update(ctx, category)
}

// DeleteCategory removes a category; memberships cascade, content stays
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return s.categories.Delete(ctx, id)
}

// --- Cards ---

// CreateCard validates and persists a new card
func (s *CatalogService) CreateCard(ctx context.Context, card *catalog.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}

	now := s.now()
	card.ID = uuid.New().String()
	card.CreatedAt = now
	card.UpdatedAt = now

	if err := s.cards.Create(ctx, card); err != nil {
		s.logger.Error("Failed to create card",
			zap.String("title", card.Title),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// GetCard retrieves a card by id
func (s *CatalogService) GetCard(ctx context.Context, id string) (*catalog.Card, error) {
	return s.cards.GetByID(ctx, id)
}

// ListCards lists cards, optionally restricted to one category
func (s *CatalogService) ListCards(ctx context.Context, categoryID *int64) ([]catalog.Card, error) {
	if categoryID == nil {
		return s.cards.List(ctx)
	}
	return s.cards.ListByCategory(ctx, *categoryID)
}

// UpdateCard validates and persists changes to a card
func (s *CatalogService) UpdateCard(ctx context.Context, card *catalog.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}
	card.UpdatedAt = s.now()
	return s.cards.Update(ctx, card)
}

// DeleteCard removes a card, cascading to its events
func (s *CatalogService) DeleteCard(ctx context.Context, id string) error {
	return s.cards.Delete(ctx, id)
}
