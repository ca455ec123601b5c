package services

import (
	"context"
	"fmt"
	"log/slog"

	"splitinvoice/internal/core"
	applog "splitinvoice/internal/log"
	"splitinvoice/internal/storage"
)

// ExportPublisher queues a saved bill for the export worker.
type ExportPublisher interface {
	PublishBillExport(ctx context.Context, billID, format string) error
}

// BillService orchestrates bill persistence and async export.
type BillService struct {
	bills     storage.BillStore
	publisher ExportPublisher
	logs      *applog.StructuredLogger
}

func NewBillService(bills storage.BillStore, publisher ExportPublisher) *BillService {
	return &BillService{
		bills:     bills,
		publisher: publisher,
		logs:      applog.NewStructuredLogger(applog.New(applog.Config{Component: applog.ComponentStorage})),
	}
}

// SaveBill persists a bill snapshot and queues a CSV export.
// Export publishing is best effort, the save never fails because of it.
func (s *BillService) SaveBill(ctx context.Context, b core.Bill) error {
	if err := s.bills.SaveBill(ctx, b); err != nil {
		return fmt.Errorf("save bill: %w", err)
	}
	s.logs.LogBillSaved(ctx, b.ID, b.Restaurant, len(b.People), b.TotalAmount.Cents)

	if err := s.publishExport(ctx, b.ID); err != nil {
		s.logs.LogError(ctx, "Failed to publish export message", err,
			applog.ComponentAMQP, applog.OpExport,
			applog.NewFields().WithBill(b.ID, b.Restaurant, len(b.People), b.TotalAmount.Cents))
	}

	return nil
}

func (s *BillService) GetBill(ctx context.Context, id string) (core.Bill, error) {
	return s.bills.GetBill(ctx, id)
}

func (s *BillService) ListBills(ctx context.Context) ([]core.Bill, error) {
	return s.bills.ListBills(ctx)
}

func (s *BillService) DeleteBill(ctx context.Context, id string) error {
	return s.bills.DeleteBill(ctx, id)
}

func (s *BillService) publishExport(ctx context.Context, billID string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Export publisher not available, skipping export message")
		return nil
	}
	return s.publisher.PublishBillExport(ctx, billID, "csv")
}
