package catalog

import (
	"strings"
	"time"

	pkgerrors "formulahub-backend/pkg/errors"
)

// Card is a free-form content unit (tips, shortcuts, how-tos) shown in
// the catalog alongside formulas. Click counters are maintained by the
// event store, like formula copy counters.
type Card struct {
	ID            string
	Title         string
	Content       string
	LinkURL       string
	CategoryIDs   []int64
	TotalClicks   int64
	LastClickedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the business rules for a card
func (c *Card) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return pkgerrors.NewValidationError("title is required")
	}
	if strings.TrimSpace(c.Content) == "" {
		return pkgerrors.NewValidationError("content is required")
	}
	return nil
}
