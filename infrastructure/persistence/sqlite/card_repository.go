package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"formulahub-backend/domain/catalog"
	pkgerrors "formulahub-backend/pkg/errors"
)

// CardRepository persists cards and their category memberships
type CardRepository struct {
	db *DB
}

// NewCardRepository creates a card repository on the shared handle
func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = "id, title, content, link_url, total_clicks, last_clicked_at, created_at, updated_at"

func scanCard(row interface{ Scan(...interface{}) error }) (*catalog.Card, error) {
	var c catalog.Card
	var lastClickedAt sql.NullTime
	err := row.Scan(
		&c.ID, &c.Title, &c.Content, &c.LinkURL,
		&c.TotalClicks, &lastClickedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastClickedAt.Valid {
		t := lastClickedAt.Time
		c.LastClickedAt = &t
	}
	return &c, nil
}

// Create persists a new card with its category memberships
func (r *CardRepository) Create(ctx context.Context, card *catalog.Card) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.NewDatabaseError("create card", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cards (id, title, content, link_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		card.ID, card.Title, card.Content, card.LinkURL, card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("create card", err)
	}

	if err := replaceCardCategories(ctx, tx, card.ID, card.CategoryIDs); err != nil {
		return pkgerrors.NewDatabaseError("create card", err)
	}

	if err := tx.Commit(); err != nil {
		return pkgerrors.NewDatabaseError("create card", err)
	}
	return nil
}

// GetByID retrieves a card by id
func (r *CardRepository) GetByID(ctx context.Context, id string) (*catalog.Card, error) {
	row := r.db.conn.QueryRowContext(ctx,
		"SELECT "+cardColumns+" FROM cards WHERE id = ?", id)

	card, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, pkgerrors.NewNotFoundError("card")
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get card", err)
	}

	memberships, err := r.loadCategories(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	card.CategoryIDs = memberships[id]
	return card, nil
}

// List retrieves all cards, newest first
func (r *CardRepository) List(ctx context.Context) ([]catalog.Card, error) {
	return r.list(ctx, 0)
}

// ListByCategory retrieves cards in the given category, newest first
func (r *CardRepository) ListByCategory(ctx context.Context, categoryID int64) ([]catalog.Card, error) {
	return r.list(ctx, categoryID)
}

func (r *CardRepository) list(ctx context.Context, categoryID int64) ([]catalog.Card, error) {
	query := "SELECT " + cardColumns + " FROM cards"
	var args []interface{}
	if categoryID > 0 {
		query += " WHERE id IN (SELECT card_id FROM card_categories WHERE category_id = ?)"
		args = append(args, categoryID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list cards", err)
	}
	defer rows.Close()

	var cards []catalog.Card
	var ids []string
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan card", err)
		}
		cards = append(cards, *c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("list cards", err)
	}

	memberships, err := r.loadCategories(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		cards[i].CategoryIDs = memberships[cards[i].ID]
	}
	return cards, nil
}

// Update persists field changes and rewrites category memberships
func (r *CardRepository) Update(ctx context.Context, card *catalog.Card) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.NewDatabaseError("update card", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE cards SET title = ?, content = ?, link_url = ?, updated_at = ? WHERE id = ?",
		card.Title, card.Content, card.LinkURL, card.UpdatedAt, card.ID,
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("update card", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError("card")
	}

	if err := replaceCardCategories(ctx, tx, card.ID, card.CategoryIDs); err != nil {
		return pkgerrors.NewDatabaseError("update card", err)
	}

	if err := tx.Commit(); err != nil {
		return pkgerrors.NewDatabaseError("update card", err)
	}
	return nil
}

// Delete removes a card, its memberships (FK cascade) and its click events
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete card", err)
	}
	defer tx.Rollback()

	if err := deleteItemEvents(ctx, tx, catalog.EventKindClick, id); err != nil {
		return pkgerrors.NewDatabaseError("delete card", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM cards WHERE id = ?", id)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete card", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError("card")
	}

	if err := tx.Commit(); err != nil {
		return pkgerrors.NewDatabaseError("delete card", err)
	}
	return nil
}

func (r *CardRepository) loadCategories(ctx context.Context, cardIDs []string) (map[string][]int64, error) {
	out := make(map[string][]int64, len(cardIDs))
	if len(cardIDs) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(cardIDs)-1) + "?"
	args := make([]interface{}, len(cardIDs))
	for i, id := range cardIDs {
		args[i] = id
	}

	rows, err := r.db.conn.QueryContext(ctx,
		"SELECT card_id, category_id FROM card_categories WHERE card_id IN ("+placeholders+") ORDER BY category_id",
		args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("load card categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cardID string
		var categoryID int64
		if err := rows.Scan(&cardID, &categoryID); err != nil {
			return nil, pkgerrors.NewDatabaseError("scan card category", err)
		}
		out[cardID] = append(out[cardID], categoryID)
	}
	return out, rows.Err()
}

func replaceCardCategories(ctx context.Context, tx *sql.Tx, cardID string, categoryIDs []int64) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM card_categories WHERE card_id = ?", cardID); err != nil {
		return err
	}
	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO card_categories (card_id, category_id) VALUES (?, ?)",
			cardID, categoryID); err != nil {
			return err
		}
	}
	return nil
}
