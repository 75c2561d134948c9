// Package ports declares the persistence interfaces the application layer
// depends on. Implementations live under infrastructure/persistence; the
// domain never sees a concrete store handle.
package ports

import (
	"context"
	"time"

	"formulahub-backend/domain/catalog"
)

// FormulaRepository defines persistence for formulas
type FormulaRepository interface {
	// Create persists a new formula with its category memberships
	Create(ctx context.Context, formula *catalog.Formula) error

	// GetByID retrieves a formula by id
	GetByID(ctx context.Context, id string) (*catalog.Formula, error)

	// List retrieves all formulas, newest first
	List(ctx context.Context) ([]catalog.Formula, error)

	// ListByCategories retrieves formulas belonging to any of the given
	// categories. An empty filter means no restriction.
	ListByCategories(ctx context.Context, categoryIDs []int64) ([]catalog.Formula, error)

	// ListRecent retrieves a page of formulas ordered by last copy
	// activity, falling back to creation time.
	ListRecent(ctx context.Context, categoryIDs []int64, limit, offset int) ([]catalog.Formula, error)

	// Update persists field changes and rewrites category memberships
	Update(ctx context.Context, formula *catalog.Formula) error

	// Delete removes a formula together with its events and memberships
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines persistence for categories
type CategoryRepository interface {
	Create(ctx context.Context, category *catalog.Category) error
	GetByID(ctx context.Context, id int64) (*catalog.Category, error)
	List(ctx context.Context) ([]catalog.Category, error)
	Update(ctx context.Context, category *catalog.Category) error
	Delete(ctx context.Context, id int64) error
}

// CardRepository defines persistence for cards
type CardRepository interface {
	Create(ctx context.Context, card *catalog.Card) error
	GetByID(ctx context.Context, id string) (*catalog.Card, error)
	List(ctx context.Context) ([]catalog.Card, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]catalog.Card, error)
	Update(ctx context.Context, card *catalog.Card) error
	Delete(ctx context.Context, id string) error
}

// EventStore is the durable append-only log of interaction events. It is
// the only component allowed to mutate per-item counters.
type EventStore interface {
	// RecordEvent appends an event and bumps the item's counter in one
	// transaction. It returns false (and no error) when the session
	// already produced an accepted event for the item inside the
	// rate-limit window, and a not-found error when the item is unknown.
	RecordEvent(ctx context.Context, kind catalog.EventKind, itemID, sessionID string, now time.Time) (bool, error)

	// EventsSince returns, per item, the timestamps of events recorded
	// at or after since. Items without events are absent from the map.
	EventsSince(ctx context.Context, kind catalog.EventKind, itemIDs []string, since time.Time) (map[string][]time.Time, error)
}
