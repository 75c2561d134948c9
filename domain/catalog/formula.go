package catalog

import (
	"strings"
	"time"

	pkgerrors "formulahub-backend/pkg/errors"
)

// Formula is a ranked content unit: a spreadsheet formula with its
// description and optional tutorial video. TotalCopies and LastCopiedAt
// are maintained exclusively by the event store; no other write path may
// touch them.
type Formula struct {
	ID           string
	Name         string
	Description  string
	Expression   string
	VideoURL     string
	CategoryIDs  []int64
	TotalCopies  int64
	LastCopiedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks the business rules for a formula
func (f *Formula) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return pkgerrors.NewValidationError("name is required")
	}
	if strings.TrimSpace(f.Description) == "" {
		return pkgerrors.NewValidationError("description is required")
	}
	if strings.TrimSpace(f.Expression) == "" {
		return pkgerrors.NewValidationError("formula is required")
	}
	return nil
}
