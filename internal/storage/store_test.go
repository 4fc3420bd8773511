package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cashflow/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cashflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// hierarchy is a minimal consistent reference tree for record tests.
type hierarchy struct {
	status  core.Status
	inflow  core.TransactionType
	outflow core.TransactionType
	inCat   core.Category
	inSub   core.Subcategory
	outCat  core.Category
	outSub  core.Subcategory
}

func seedHierarchy(t *testing.T, s *Store) hierarchy {
	t.Helper()
	ctx := context.Background()

	var h hierarchy
	var err error

	h.status, err = s.CreateStatus(ctx, "Corporate")
	require.NoError(t, err)

	h.inflow, err = s.CreateTransactionType(ctx, "Incoming", core.DirectionInflow)
	require.NoError(t, err)
	h.outflow, err = s.CreateTransactionType(ctx, "Outgoing", core.DirectionOutflow)
	require.NoError(t, err)

	h.inCat, err = s.CreateCategory(ctx, h.inflow.ID, "Revenue")
	require.NoError(t, err)
	h.inSub, err = s.CreateSubcategory(ctx, h.inCat.ID, "Contracts")
	require.NoError(t, err)

	h.outCat, err = s.CreateCategory(ctx, h.outflow.ID, "Hosting")
	require.NoError(t, err)
	h.outSub, err = s.CreateSubcategory(ctx, h.outCat.ID, "Servers")
	require.NoError(t, err)

	return h
}

func mustAmount(t *testing.T, s string) core.Amount {
	t.Helper()
	a, err := core.ParseAmount(s)
	require.NoError(t, err)
	return a
}

func TestOpenRunsMigrationsAndSeeds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	statuses, err := s.ListStatuses(ctx, "")
	require.NoError(t, err)
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = st.Name
	}
	require.Contains(t, names, "Business")
	require.Contains(t, names, "Personal")
	require.Contains(t, names, "Tax")

	types, err := s.ListTransactionTypes(ctx, "")
	require.NoError(t, err)
	require.Len(t, types, 2)

	// Opening the same database again must be a no-op for migrations.
	path := filepath.Join(t.TempDir(), "reopen.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())
	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}
