package amqp

import (
	"encoding/json"
	"time"
)

// BillExportMessage asks the export worker to write out one saved bill.
// It carries only the bill ID; the worker loads the full bill from storage.
type BillExportMessage struct {
	BillID    string    `json:"bill_id"`
	Format    string    `json:"format"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBillExportMessage creates an export request for the given bill.
func NewBillExportMessage(billID, format string) *BillExportMessage {
	return &BillExportMessage{
		BillID:    billID,
		Format:    format,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BillExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillExportMessageFromJSON creates a message from JSON bytes
func BillExportMessageFromJSON(data []byte) (*BillExportMessage, error) {
	var msg BillExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.BillID == "" {
		return nil, errEmptyBillID
	}
	return &msg, nil
}
