package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitinvoice/internal/core"
	"splitinvoice/internal/storage"
	"splitinvoice/internal/storage/memory"
)

func TestBillLifecycle(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	b := core.Bill{
		ID:          "b1",
		Date:        time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC),
		People:      []core.Person{{Name: "Alice"}},
		TotalAmount: core.Money{Cents: 2000},
	}
	require.NoError(t, store.SaveBill(ctx, b))

	got, err := store.GetBill(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, b, got)

	older := b
	older.ID = "b0"
	older.Date = b.Date.AddDate(0, -1, 0)
	require.NoError(t, store.SaveBill(ctx, older))

	bills, err := store.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, "b1", bills[0].ID)

	require.NoError(t, store.DeleteBill(ctx, "b1"))
	_, err = store.GetBill(ctx, "b1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGroupsSortedByName(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.SaveGroup(ctx, core.Group{Name: "zeta", Members: []string{"A"}}))
	require.NoError(t, store.SaveGroup(ctx, core.Group{Name: "alpha", Members: []string{"B"}}))

	groups, err := store.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "alpha", groups[0].Name)
}

func TestTemplateNotFound(t *testing.T) {
	store := memory.NewStore()

	_, err := store.GetTemplate(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
