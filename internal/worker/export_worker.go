// Package worker runs the background export of saved bills.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"splitinvoice/internal/amqp"
	"splitinvoice/internal/core"
	"splitinvoice/internal/export"
	"splitinvoice/internal/storage"
)

// ExportWorker turns queued export jobs into CSV files on disk.
type ExportWorker struct {
	bills     storage.BillStore
	exportDir string
}

func NewExportWorker(bills storage.BillStore, exportDir string) *ExportWorker {
	return &ExportWorker{
		bills:     bills,
		exportDir: exportDir,
	}
}

// HandleExportMessage processes a single export job from the queue.
// A bill deleted between publish and delivery is not an error.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.BillExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		"bill_id", msg.BillID,
		"format", msg.Format)

	bill, err := w.bills.GetBill(ctx, msg.BillID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Bill no longer exists, dropping export job", "bill_id", msg.BillID)
			return nil
		}
		return fmt.Errorf("get bill from storage: %w", err)
	}

	if msg.Format != "" && msg.Format != "csv" {
		slog.WarnContext(ctx, "Unsupported export format, dropping job",
			"bill_id", msg.BillID, "format", msg.Format)
		return nil
	}

	path, err := w.writeCSV(bill)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Exported bill",
		"bill_id", msg.BillID,
		"path", path)
	return nil
}

// ExportAll writes every saved bill out, used as a catch-up at startup
// in case export messages were lost while the worker was down.
func (w *ExportWorker) ExportAll(ctx context.Context) error {
	bills, err := w.bills.ListBills(ctx)
	if err != nil {
		return fmt.Errorf("list bills: %w", err)
	}

	if len(bills) == 0 {
		slog.InfoContext(ctx, "No bills to export on startup")
		return nil
	}

	successCount := 0
	errorCount := 0
	for _, bill := range bills {
		if _, err := w.writeCSV(bill); err != nil {
			slog.ErrorContext(ctx, "Failed to export bill", "bill_id", bill.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(bills),
		"exported", successCount,
		"errors", errorCount)
	return nil
}

func (w *ExportWorker) writeCSV(bill core.Bill) (string, error) {
	if err := os.MkdirAll(w.exportDir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(w.exportDir, exportFileName(bill.ID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := export.WriteBillCSV(f, bill); err != nil {
		return "", fmt.Errorf("write bill CSV: %w", err)
	}
	return path, nil
}

func exportFileName(billID string) string {
	// Bill IDs are UUIDs, but sanitize anyway before using one as a file name.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, billID)
	return safe + ".csv"
}
