package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitinvoice/internal/amqp"
	"splitinvoice/internal/core"
	"splitinvoice/internal/storage/memory"
)

func savedBill(t *testing.T, store *memory.Store, id string) core.Bill {
	t.Helper()
	b := core.Bill{
		ID:         id,
		Date:       time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
		Restaurant: "Trattoria",
		People: []core.Person{
			{Name: "Alice", Items: []core.LineItem{
				{Description: "Pizza", Price: core.Money{Cents: 1250}},
			}},
		},
		TotalAmount: core.Money{Cents: 1250},
	}
	require.NoError(t, store.SaveBill(context.Background(), b))
	return b
}

func TestHandleExportMessageWritesCSV(t *testing.T) {
	store := memory.NewStore()
	savedBill(t, store, "bill-1")
	dir := t.TempDir()
	w := NewExportWorker(store, dir)

	msg := amqp.NewBillExportMessage("bill-1", "csv")
	require.NoError(t, w.HandleExportMessage(context.Background(), msg))

	data, err := os.ReadFile(filepath.Join(dir, "bill-1.csv"))
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "date,"))
	assert.Contains(t, content, "Trattoria")
	assert.Contains(t, content, "Pizza")
}

func TestHandleExportMessageMissingBillIsDropped(t *testing.T) {
	w := NewExportWorker(memory.NewStore(), t.TempDir())

	msg := amqp.NewBillExportMessage("gone", "csv")
	assert.NoError(t, w.HandleExportMessage(context.Background(), msg))
}

func TestHandleExportMessageUnknownFormatIsDropped(t *testing.T) {
	store := memory.NewStore()
	savedBill(t, store, "bill-1")
	dir := t.TempDir()
	w := NewExportWorker(store, dir)

	msg := amqp.NewBillExportMessage("bill-1", "xlsx")
	require.NoError(t, w.HandleExportMessage(context.Background(), msg))

	_, err := os.Stat(filepath.Join(dir, "bill-1.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestExportAll(t *testing.T) {
	store := memory.NewStore()
	savedBill(t, store, "bill-1")
	savedBill(t, store, "bill-2")
	dir := t.TempDir()
	w := NewExportWorker(store, dir)

	require.NoError(t, w.ExportAll(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestExportFileNameSanitized(t *testing.T) {
	assert.Equal(t, "a_b_c.csv", exportFileName("a/b\\c"))
	assert.Equal(t, "bill-1.csv", exportFileName("bill-1"))
}
