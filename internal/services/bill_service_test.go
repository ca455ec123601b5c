package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitinvoice/internal/core"
	"splitinvoice/internal/storage/memory"
)

type fakePublisher struct {
	published []string
	err       error
}

func (p *fakePublisher) PublishBillExport(_ context.Context, billID, format string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, billID)
	return nil
}

func testBill(id string) core.Bill {
	return core.Bill{
		ID:   id,
		Date: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
		People: []core.Person{
			{Name: "Alice", Items: []core.LineItem{
				{Description: "Pizza", Price: core.Money{Cents: 1250}},
			}},
		},
		TotalAmount: core.Money{Cents: 1250},
	}
}

func TestSaveBillPublishesExport(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewBillService(memory.NewStore(), pub)
	ctx := context.Background()

	require.NoError(t, svc.SaveBill(ctx, testBill("b1")))

	saved, err := svc.GetBill(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", saved.ID)
	assert.Equal(t, []string{"b1"}, pub.published)
}

func TestSaveBillSucceedsWhenPublishFails(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewBillService(memory.NewStore(), pub)
	ctx := context.Background()

	require.NoError(t, svc.SaveBill(ctx, testBill("b1")))

	_, err := svc.GetBill(ctx, "b1")
	assert.NoError(t, err)
}

func TestSaveBillWithoutPublisher(t *testing.T) {
	svc := NewBillService(memory.NewStore(), nil)

	require.NoError(t, svc.SaveBill(context.Background(), testBill("b1")))
}

func TestSaveBillRejectsInvalidWithoutPublishing(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewBillService(memory.NewStore(), pub)

	err := svc.SaveBill(context.Background(), core.Bill{ID: "bad"})
	assert.Error(t, err)
	assert.Empty(t, pub.published)
}
