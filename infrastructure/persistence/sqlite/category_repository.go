package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"formulahub-backend/domain/catalog"
	pkgerrors "formulahub-backend/pkg/errors"
)

// CategoryRepository persists categories
type CategoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a category repository on the shared handle
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create persists a new category and fills in the generated id
func (r *CategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	res, err := r.db.conn.ExecContext(ctx,
		"INSERT INTO categories (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)",
		category.Name, category.Description, category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return pkgerrors.NewConflictError("category name already exists")
		}
		return pkgerrors.NewDatabaseError("create category", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return pkgerrors.NewDatabaseError("create category", err)
	}
	category.ID = id
	return nil
}

// GetByID retrieves a category by id
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*catalog.Category, error) {
	var c catalog.Category
	err := r.db.conn.QueryRowContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM categories WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, pkgerrors.NewNotFoundError("category")
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get category", err)
	}
	return &c, nil
}

// List retrieves all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name")
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list categories", err)
	}
	defer rows.Close()

	var categories []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, pkgerrors.NewDatabaseError("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("list categories", err)
	}
	return categories, nil
}

// Update persists field changes to a category
func (r *CategoryRepository) Update(ctx context.Context, category *catalog.Category) error {
	res, err := r.db.conn.ExecContext(ctx,
		"UPDATE categories SET name = ?, description = ?, updated_at = ? WHERE id = ?",
		category.Name, category.Description, category.UpdatedAt, category.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return pkgerrors.NewConflictError("category name already exists")
		}
		return pkgerrors.NewDatabaseError("update category", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError("category")
	}
	return nil
}

// Delete removes a category; memberships go with it via FK cascade
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.conn.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete category", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError("category")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
