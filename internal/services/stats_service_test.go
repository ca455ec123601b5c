package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitinvoice/internal/core"
	"splitinvoice/internal/storage/memory"
)

func saveBill(t *testing.T, store *memory.Store, id, restaurant string, totalCents int64, daysAgo int) {
	t.Helper()
	b := core.Bill{
		ID:          id,
		Date:        time.Now().UTC().AddDate(0, 0, -daysAgo),
		Restaurant:  restaurant,
		People:      []core.Person{{Name: "Alice"}},
		TotalAmount: core.Money{Cents: totalCents},
	}
	require.NoError(t, store.SaveBill(context.Background(), b))
}

func TestComputeEmptyHistory(t *testing.T) {
	svc := NewStatsService(memory.NewStore())

	stats, err := svc.Compute(context.Background(), Period{})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.BillCount)
	assert.True(t, stats.GrandTotal.IsZero())
	assert.True(t, stats.AverageBill.IsZero())
	assert.Empty(t, stats.Restaurants)
}

func TestComputeAggregates(t *testing.T) {
	store := memory.NewStore()
	saveBill(t, store, "b1", "Trattoria", 3000, 3)
	saveBill(t, store, "b2", "Trattoria", 2000, 2)
	saveBill(t, store, "b3", "Sushi Bar", 4500, 1)
	saveBill(t, store, "b4", "", 500, 0)

	svc := NewStatsService(store)
	stats, err := svc.Compute(context.Background(), Period{})
	require.NoError(t, err)

	assert.Equal(t, 4, stats.BillCount)
	assert.Equal(t, int64(10000), stats.GrandTotal.Cents)
	assert.Equal(t, int64(2500), stats.AverageBill.Cents)

	// Unnamed restaurant stays out of the breakdown.
	require.Len(t, stats.Restaurants, 2)
	assert.Equal(t, "Trattoria", stats.Restaurants[0].Restaurant)
	assert.Equal(t, 2, stats.Restaurants[0].Visits)
	assert.Equal(t, int64(5000), stats.Restaurants[0].Total.Cents)
	assert.Equal(t, "Sushi Bar", stats.Restaurants[1].Restaurant)
}

func TestComputePeriodFilter(t *testing.T) {
	store := memory.NewStore()
	saveBill(t, store, "b1", "Trattoria", 3000, 10)
	saveBill(t, store, "b2", "Trattoria", 2000, 1)

	svc := NewStatsService(store)
	period := Period{From: time.Now().UTC().AddDate(0, 0, -3)}
	stats, err := svc.Compute(context.Background(), period)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.BillCount)
	assert.Equal(t, int64(2000), stats.GrandTotal.Cents)
	require.Len(t, stats.Restaurants, 1)
	assert.Equal(t, 1, stats.Restaurants[0].Visits)
}
