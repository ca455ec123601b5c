package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitinvoice/internal/core"
	"splitinvoice/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testBill(id string, date time.Time) core.Bill {
	return core.Bill{
		ID:            id,
		Date:          date,
		Restaurant:    "Trattoria",
		Location:      "Milano",
		TaxPercentage: core.Rate{BasisPoints: 1000},
		AdditionalFee: core.Money{Cents: 400},
		People: []core.Person{
			{Name: "Alice", Items: []core.LineItem{
				{Description: "Pizza", Price: core.Money{Cents: 1250}},
				{Description: "Water", Price: core.Money{Cents: 400}},
			}},
			{Name: "Bob", Items: []core.LineItem{
				{Description: "Pasta", Price: core.Money{Cents: 800}},
			}},
		},
		TotalAmount: core.Money{Cents: 3095},
	}
}

func TestSaveAndGetBill(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := testBill("b1", time.Date(2026, 3, 14, 20, 30, 0, 0, time.UTC))
	require.NoError(t, repo.SaveBill(ctx, want))

	got, err := repo.GetBill(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.True(t, want.Date.Equal(got.Date))
	assert.Equal(t, want.Restaurant, got.Restaurant)
	assert.Equal(t, want.TaxPercentage, got.TaxPercentage)
	assert.Equal(t, want.AdditionalFee, got.AdditionalFee)
	assert.Equal(t, want.TotalAmount, got.TotalAmount)
	assert.Equal(t, want.People, got.People)
}

func TestGetBillNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetBill(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaveBillRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.SaveBill(context.Background(), core.Bill{ID: "b1"})
	assert.Error(t, err)
}

func TestListBillsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	old := testBill("old", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	mid := testBill("mid", time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	new_ := testBill("new", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	for _, b := range []core.Bill{old, new_, mid} {
		require.NoError(t, repo.SaveBill(ctx, b))
	}

	bills, err := repo.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 3)
	assert.Equal(t, "new", bills[0].ID)
	assert.Equal(t, "mid", bills[1].ID)
	assert.Equal(t, "old", bills[2].ID)
}

func TestSaveBillOverwritesSameID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b := testBill("b1", time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC))
	require.NoError(t, repo.SaveBill(ctx, b))

	b.Notes = "updated"
	require.NoError(t, repo.SaveBill(ctx, b))

	bills, err := repo.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, "updated", bills[0].Notes)
}

func TestDeleteBill(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveBill(ctx, testBill("b1", time.Now().UTC())))
	require.NoError(t, repo.DeleteBill(ctx, "b1"))

	_, err := repo.GetBill(ctx, "b1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteBill(ctx, "b1"), storage.ErrNotFound)
}

func TestGroupRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	g := core.Group{Name: "lunch crew", Members: []string{"Alice", "Bob", "Carol"}}
	require.NoError(t, repo.SaveGroup(ctx, g))

	got, err := repo.GetGroup(ctx, "lunch crew")
	require.NoError(t, err)
	assert.Equal(t, g, got)

	groups, err := repo.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	require.NoError(t, repo.DeleteGroup(ctx, "lunch crew"))
	_, err = repo.GetGroup(ctx, "lunch crew")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTemplateRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tpl := core.Template{
		Name:          "friday dinner",
		Restaurant:    "Trattoria",
		TaxPercentage: core.Rate{BasisPoints: 1000},
		People: []core.Person{
			{Name: "Alice"},
			{Name: "Bob"},
		},
	}
	require.NoError(t, repo.SaveTemplate(ctx, tpl))

	got, err := repo.GetTemplate(ctx, "friday dinner")
	require.NoError(t, err)
	assert.Equal(t, tpl, got)

	templates, err := repo.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)

	require.NoError(t, repo.DeleteTemplate(ctx, "friday dinner"))
	assert.ErrorIs(t, repo.DeleteTemplate(ctx, "friday dinner"), storage.ErrNotFound)
}
