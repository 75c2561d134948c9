package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formulahub-backend/domain/catalog"
	pkgerrors "formulahub-backend/pkg/errors"
)

func newTestCategory(t *testing.T, repo *CategoryRepository, name string, now time.Time) int64 {
	t.Helper()
	c := &catalog.Category{Name: name, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(context.Background(), c))
	return c.ID
}

func TestFormulaRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	formulas := NewFormulaRepository(db)
	categories := NewCategoryRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	catID := newTestCategory(t, categories, "Math", now)

	f := &catalog.Formula{
		ID:          "f1",
		Name:        "SUM",
		Description: "Adds a range",
		Expression:  "=SUM(A1:A10)",
		VideoURL:    "https://example.com/v",
		CategoryIDs: []int64{catID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, formulas.Create(ctx, f))

	got, err := formulas.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "SUM", got.Name)
	assert.Equal(t, "=SUM(A1:A10)", got.Expression)
	assert.Equal(t, []int64{catID}, got.CategoryIDs)
	assert.Equal(t, int64(0), got.TotalCopies)
	assert.Nil(t, got.LastCopiedAt)
}

func TestFormulaRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	formulas := NewFormulaRepository(db)

	_, err := formulas.GetByID(context.Background(), "missing")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestFormulaRepository_ListByCategories(t *testing.T) {
	db := newTestDB(t)
	formulas := NewFormulaRepository(db)
	categories := NewCategoryRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	math := newTestCategory(t, categories, "Math", now)
	text := newTestCategory(t, categories, "Text", now)

	require.NoError(t, formulas.Create(ctx, &catalog.Formula{
		ID: "f1", Name: "SUM", Description: "d", Expression: "=SUM()",
		CategoryIDs: []int64{math}, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, formulas.Create(ctx, &catalog.Formula{
		ID: "f2", Name: "CONCAT", Description: "d", Expression: "=CONCAT()",
		CategoryIDs: []int64{text}, CreatedAt: now.Add(time.Minute), UpdatedAt: now,
	}))
	require.NoError(t, formulas.Create(ctx, &catalog.Formula{
		ID: "f3", Name: "TEXTSUM", Description: "d", Expression: "=X()",
		CategoryIDs: []int64{math, text}, CreatedAt: now.Add(2 * time.Minute), UpdatedAt: now,
	}))

	got, err := formulas.ListByCategories(ctx, []int64{math})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "f3", got[0].ID, "newest first")
	assert.Equal(t, "f1", got[1].ID)

	all, err := formulas.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFormulaRepository_ListRecent_OrdersByActivity(t *testing.T) {
	db := newTestDB(t)
	formulas := NewFormulaRepository(db)
	store := NewEventStore(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// f1 is older but copied recently; f2 is newer with no copies.
	require.NoError(t, formulas.Create(ctx, &catalog.Formula{
		ID: "f1", Name: "A", Description: "d", Expression: "=A()",
		CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now,
	}))
	require.NoError(t, formulas.Create(ctx, &catalog.Formula{
		ID: "f2", Name: "B", Description: "d", Expression: "=B()",
		CreatedAt: now.Add(-time.Hour), UpdatedAt: now,
	}))

	recorded, err := store.RecordEvent(ctx, catalog.EventKindCopy, "f1", "s", now)
	require.NoError(t, err)
	require.True(t, recorded)

	got, err := formulas.ListRecent(ctx, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "f1", got[0].ID)

	// Pagination slices the ordered list.
	page2, err := formulas.ListRecent(ctx, nil, 1, 1)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "f2", page2[0].ID)
}

func TestFormulaRepository_Update(t *testing.T) {
	db := newTestDB(t)
	formulas := NewFormulaRepository(db)
	categories := NewCategoryRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	math := newTestCategory(t, categories, "Math", now)
	text := newTestCategory(t, categories, "Text", now)

	f := &catalog.Formula{
		ID: "f1", Name: "SUM", Description: "d", Expression: "=SUM()",
		CategoryIDs: []int64{math}, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, formulas.Create(ctx, f))

	f.Name = "SUMIF"
	f.CategoryIDs = []int64{text}
	f.UpdatedAt = now.Add(time.Hour)
	require.NoError(t, formulas.Update(ctx, f))

	got, err := formulas.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "SUMIF", got.Name)
	assert.Equal(t, []int64{text}, got.CategoryIDs)

	err = formulas.Update(ctx, &catalog.Formula{ID: "missing", UpdatedAt: now})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestFormulaRepository_Delete_CascadesEvents(t *testing.T) {
	db := newTestDB(t)
	formulas := NewFormulaRepository(db)
	store := NewEventStore(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, formulas.Create(ctx, &catalog.Formula{
		ID: "f1", Name: "A", Description: "d", Expression: "=A()",
		CreatedAt: now, UpdatedAt: now,
	}))
	recorded, err := store.RecordEvent(ctx, catalog.EventKindCopy, "f1", "s", now)
	require.NoError(t, err)
	require.True(t, recorded)

	require.NoError(t, formulas.Delete(ctx, "f1"))

	_, err = formulas.GetByID(ctx, "f1")
	assert.True(t, pkgerrors.IsNotFound(err))

	var remaining int
	require.NoError(t, db.conn.QueryRow("SELECT COUNT(1) FROM events").Scan(&remaining))
	assert.Zero(t, remaining)

	assert.True(t, pkgerrors.IsNotFound(formulas.Delete(ctx, "f1")))
}

func TestCategoryRepository_UniqueName(t *testing.T) {
	db := newTestDB(t)
	categories := NewCategoryRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, categories.Create(ctx, &catalog.Category{Name: "Math", CreatedAt: now, UpdatedAt: now}))
	err := categories.Create(ctx, &catalog.Category{Name: "Math", CreatedAt: now, UpdatedAt: now})
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestCategoryRepository_DeleteDetachesMemberships(t *testing.T) {
	db := newTestDB(t)
	formulas := NewFormulaRepository(db)
	categories := NewCategoryRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	math := newTestCategory(t, categories, "Math", now)
	require.NoError(t, formulas.Create(ctx, &catalog.Formula{
		ID: "f1", Name: "A", Description: "d", Expression: "=A()",
		CategoryIDs: []int64{math}, CreatedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, categories.Delete(ctx, math))

	got, err := formulas.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Empty(t, got.CategoryIDs, "membership rows follow the category")
}

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	inserted, err := Seed(ctx, db, now)
	require.NoError(t, err)
	assert.Equal(t, len(sampleFormulas), inserted)

	inserted, err = Seed(ctx, db, now)
	require.NoError(t, err)
	assert.Zero(t, inserted, "a populated database is left alone")

	formulas, err := NewFormulaRepository(db).List(ctx)
	require.NoError(t, err)
	assert.Len(t, formulas, len(sampleFormulas))
	for _, f := range formulas {
		assert.NotEmpty(t, f.CategoryIDs)
	}
}
