package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"formulahub-backend/domain/catalog"
	pkgerrors "formulahub-backend/pkg/errors"
)

// FormulaRepository persists formulas and their category memberships
type FormulaRepository struct {
	db *DB
}

// NewFormulaRepository creates a formula repository on the shared handle
func NewFormulaRepository(db *DB) *FormulaRepository {
	return &FormulaRepository{db: db}
}

const formulaColumns = "id, name, description, formula, video_url, total_copies, last_copied_at, created_at, updated_at"

func scanFormula(row interface{ Scan(...interface{}) error }) (*catalog.Formula, error) {
	var f catalog.Formula
	var lastCopiedAt sql.NullTime
	err := row.Scan(
		&f.ID, &f.Name, &f.Description, &f.Expression, &f.VideoURL,
		&f.TotalCopies, &lastCopiedAt, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastCopiedAt.Valid {
		t := lastCopiedAt.Time
		f.LastCopiedAt = &t
	}
	return &f, nil
}

// Create persists a new formula with its category memberships
func (r *FormulaRepository) Create(ctx context.Context, formula *catalog.Formula) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.NewDatabaseError("create formula", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO formulas (id, name, description, formula, video_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		formula.ID, formula.Name, formula.Description, formula.Expression,
		formula.VideoURL, formula.CreatedAt, formula.UpdatedAt,
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("create formula", err)
	}

	if err := replaceFormulaCategories(ctx, tx, formula.ID, formula.CategoryIDs); err != nil {
		return pkgerrors.NewDatabaseError("create formula", err)
	}

	if err := tx.Commit(); err != nil {
		return pkgerrors.NewDatabaseError("create formula", err)
	}
	return nil
}

// GetByID retrieves a formula by id
func (r *FormulaRepository) GetByID(ctx context.Context, id string) (*catalog.Formula, error) {
	row := r.db.conn.QueryRowContext(ctx,
		"SELECT "+formulaColumns+" FROM formulas WHERE id = ?", id)

	formula, err := scanFormula(row)
	if err == sql.ErrNoRows {
		return nil, pkgerrors.NewNotFoundError("formula")
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get formula", err)
	}

	memberships, err := r.loadCategories(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	formula.CategoryIDs = memberships[id]
	return formula, nil
}

// List retrieves all formulas, newest first
func (r *FormulaRepository) List(ctx context.Context) ([]catalog.Formula, error) {
	return r.list(ctx, nil, "created_at DESC", 0, 0)
}

// ListByCategories retrieves formulas in any of the given categories,
// newest first. An empty filter means no restriction.
func (r *FormulaRepository) ListByCategories(ctx context.Context, categoryIDs []int64) ([]catalog.Formula, error) {
	return r.list(ctx, categoryIDs, "created_at DESC", 0, 0)
}

// ListRecent retrieves a page of formulas ordered by last copy activity
func (r *FormulaRepository) ListRecent(ctx context.Context, categoryIDs []int64, limit, offset int) ([]catalog.Formula, error) {
	return r.list(ctx, categoryIDs, "COALESCE(last_copied_at, created_at) DESC, created_at DESC", limit, offset)
}

func (r *FormulaRepository) list(ctx context.Context, categoryIDs []int64, orderBy string, limit, offset int) ([]catalog.Formula, error) {
	query := "SELECT " + formulaColumns + " FROM formulas"
	var args []interface{}

	if len(categoryIDs) > 0 {
		placeholders := strings.Repeat("?,", len(categoryIDs)-1) + "?"
		query += fmt.Sprintf(
			" WHERE id IN (SELECT formula_id FROM formula_categories WHERE category_id IN (%s))",
			placeholders,
		)
		for _, id := range categoryIDs {
			args = append(args, id)
		}
	}

	query += " ORDER BY " + orderBy
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list formulas", err)
	}
	defer rows.Close()

	var formulas []catalog.Formula
	var ids []string
	for rows.Next() {
		f, err := scanFormula(rows)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan formula", err)
		}
		formulas = append(formulas, *f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("list formulas", err)
	}

	memberships, err := r.loadCategories(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range formulas {
		formulas[i].CategoryIDs = memberships[formulas[i].ID]
	}
	return formulas, nil
}

// Update persists field changes and rewrites category memberships
func (r *FormulaRepository) Update(ctx context.Context, formula *catalog.Formula) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.NewDatabaseError("update formula", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE formulas SET name = ?, description = ?, formula = ?, video_url = ?, updated_at = ?
		 WHERE id = ?`,
		formula.Name, formula.Description, formula.Expression, formula.VideoURL,
		formula.UpdatedAt, formula.ID,
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("update formula", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError("formula")
	}

	if err := replaceFormulaCategories(ctx, tx, formula.ID, formula.CategoryIDs); err != nil {
		return pkgerrors.NewDatabaseError("update formula", err)
	}

	if err := tx.Commit(); err != nil {
		return pkgerrors.NewDatabaseError("update formula", err)
	}
	return nil
}

// Delete removes a formula, its memberships (FK cascade) and its copy
// events (same transaction; the shared events table has no FK).
func (r *FormulaRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete formula", err)
	}
	defer tx.Rollback()

	if err := deleteItemEvents(ctx, tx, catalog.EventKindCopy, id); err != nil {
		return pkgerrors.NewDatabaseError("delete formula", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM formulas WHERE id = ?", id)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete formula", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError("formula")
	}

	if err := tx.Commit(); err != nil {
		return pkgerrors.NewDatabaseError("delete formula", err)
	}
	return nil
}

func (r *FormulaRepository) loadCategories(ctx context.Context, formulaIDs []string) (map[string][]int64, error) {
	out := make(map[string][]int64, len(formulaIDs))
	if len(formulaIDs) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(formulaIDs)-1) + "?"
	args := make([]interface{}, len(formulaIDs))
	for i, id := range formulaIDs {
		args[i] = id
	}

	rows, err := r.db.conn.QueryContext(ctx,
		fmt.Sprintf(
			"SELECT formula_id, category_id FROM formula_categories WHERE formula_id IN (%s) ORDER BY category_id",
			placeholders,
		), args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("load formula categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var formulaID string
		var categoryID int64
		if err := rows.Scan(&formulaID, &categoryID); err != nil {
			return nil, pkgerrors.NewDatabaseError("scan formula category", err)
		}
		out[formulaID] = append(out[formulaID], categoryID)
	}
	return out, rows.Err()
}

func replaceFormulaCategories(ctx context.Context, tx *sql.Tx, formulaID string, categoryIDs []int64) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM formula_categories WHERE formula_id = ?", formulaID); err != nil {
		return err
	}
	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO formula_categories (formula_id, category_id) VALUES (?, ?)",
			formulaID, categoryID); err != nil {
			return err
		}
	}
	return nil
}
