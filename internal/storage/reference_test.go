package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/core"
)

func TestStatusCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateStatus(ctx, "Archived")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = s.CreateStatus(ctx, "Archived")
	assert.ErrorIs(t, err, core.ErrDuplicateName)

	got, err := s.GetStatus(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := s.UpdateStatus(ctx, created.ID, "Closed")
	require.NoError(t, err)
	assert.Equal(t, "Closed", updated.Name)

	// Renaming to its own name is not a duplicate.
	_, err = s.UpdateStatus(ctx, created.ID, "Closed")
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, created.ID, "Business")
	assert.ErrorIs(t, err, core.ErrDuplicateName)

	require.NoError(t, s.DeleteStatus(ctx, created.ID))
	_, err = s.GetStatus(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = s.DeleteStatus(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStatusSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	found, err := s.ListStatuses(ctx, "Busi")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Business", found[0].Name)
}

func TestCategoryScopedUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	h := seedHierarchy(t, s)

	// Same name under the same type is rejected.
	_, err := s.CreateCategory(ctx, h.outflow.ID, "Hosting")
	assert.ErrorIs(t, err, core.ErrDuplicateName)

	// Same name under a different type is fine.
	other, err := s.CreateCategory(ctx, h.inflow.ID, "Hosting")
	require.NoError(t, err)
	assert.Equal(t, h.inflow.ID, other.TransactionTypeID)

	// Subcategories are unique within their category only.
	_, err = s.CreateSubcategory(ctx, h.outCat.ID, "Servers")
	assert.ErrorIs(t, err, core.ErrDuplicateName)
	_, err = s.CreateSubcategory(ctx, h.inCat.ID, "Servers")
	require.NoError(t, err)
}

func TestCreateCategoryUnknownParent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateCategory(ctx, 9999, "Orphan")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = s.CreateSubcategory(ctx, 9999, "Orphan")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestHierarchyCascadeDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	h := seedHierarchy(t, s)

	// No records reference the outflow branch yet, so the delete cascades
	// through categories to subcategories.
	require.NoError(t, s.DeleteTransactionType(ctx, h.outflow.ID))

	_, err := s.GetCategory(ctx, h.outCat.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.GetSubcategory(ctx, h.outSub.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestProtectedDeletes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	h := seedHierarchy(t, s)

	_, err := s.CreateRecord(ctx, core.Record{
		CreatedDate:       core.NewDate(2025, 1, 15),
		StatusID:          &h.status.ID,
		TransactionTypeID: h.outflow.ID,
		CategoryID:        h.outCat.ID,
		SubcategoryID:     h.outSub.ID,
		Amount:            mustAmount(t, "300.00"),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteStatus(ctx, h.status.ID), core.ErrReferencedByLedger)
	assert.ErrorIs(t, s.DeleteSubcategory(ctx, h.outSub.ID), core.ErrReferencedByLedger)
	assert.ErrorIs(t, s.DeleteCategory(ctx, h.outCat.ID), core.ErrReferencedByLedger)
	// Transitive protection: records reach the type through its category.
	assert.ErrorIs(t, s.DeleteTransactionType(ctx, h.outflow.ID), core.ErrReferencedByLedger)

	// The untouched inflow branch still deletes freely.
	require.NoError(t, s.DeleteTransactionType(ctx, h.inflow.ID))
}

func TestCategoryReparentBlockedWhileReferenced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	h := seedHierarchy(t, s)

	_, err := s.CreateRecord(ctx, core.Record{
		CreatedDate:       core.NewDate(2025, 3, 1),
		TransactionTypeID: h.outflow.ID,
		CategoryID:        h.outCat.ID,
		SubcategoryID:     h.outSub.ID,
		Amount:            mustAmount(t, "10.00"),
	})
	require.NoError(t, err)

	_, err = s.UpdateCategory(ctx, h.outCat.ID, h.inflow.ID, "Hosting")
	assert.ErrorIs(t, err, core.ErrReferencedByLedger)

	// A rename within the same type stays allowed.
	renamed, err := s.UpdateCategory(ctx, h.outCat.ID, h.outflow.ID, "Cloud")
	require.NoError(t, err)
	assert.Equal(t, "Cloud", renamed.Name)

	_, err = s.UpdateSubcategory(ctx, h.outSub.ID, h.inCat.ID, "Servers")
	assert.ErrorIs(t, err, core.ErrReferencedByLedger)
}

func TestListCategoriesByType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	h := seedHierarchy(t, s)

	cats, err := s.ListCategories(ctx, &h.outflow.ID, "")
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Hosting", cats[0].Name)

	subs, err := s.ListSubcategories(ctx, &h.outCat.ID, "")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Servers", subs[0].Name)

	none, err := s.ListCategories(ctx, &h.inSub.ID, "nothing-matches")
	require.NoError(t, err)
	assert.Empty(t, none)
}
