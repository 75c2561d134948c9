package catalog

import (
	"strings"
	"time"

	pkgerrors "formulahub-backend/pkg/errors"
)

// Category groups formulas and cards. Names are unique.
type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the business rules for a category
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return pkgerrors.NewValidationError("name is required")
	}
	return nil
}
