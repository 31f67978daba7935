package queue

import (
	"encoding/json"
	"time"
)

// ScanEvent is the body of a TypeScan message: one accepted attendance scan,
// consumed by the worker for auditing.
type ScanEvent struct {
	RecordID  string    `json:"record_id"`
	SessionID string    `json:"session_id"`
	StudentID string    `json:"student_id"`
	Status    string    `json:"status"`
	ScannedAt time.Time `json:"scanned_at"`
}

// NewScanMessage wraps a scan event as a queue message.
func NewScanMessage(evt ScanEvent) (Message, error) {
	raw, err := json.Marshal(evt)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: TypeScan, Body: raw}, nil
}
