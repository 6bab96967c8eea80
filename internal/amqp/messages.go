package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds carried on the sync queue.
const (
	KindLedgerSync = "ledger_sync"
	KindEmiSync    = "emi_sync"
)

// SyncMessage announces that a document changed and should be re-exported.
// It carries only the document key; the worker fetches the current state
// from the database, so stale or duplicate deliveries are harmless.
type SyncMessage struct {
	Kind      string    `json:"kind"`
	UserID    string    `json:"userId,omitempty"`
	Month     string    `json:"month,omitempty"`
	EmiID     int64     `json:"emiId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerSyncMessage creates a sync message for one user-month ledger.
func NewLedgerSyncMessage(userID, month string) *SyncMessage {
	return &SyncMessage{
		Kind:      KindLedgerSync,
		UserID:    userID,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// NewEmiSyncMessage creates a sync message for one EMI.
func NewEmiSyncMessage(id int64) *SyncMessage {
	return &SyncMessage{
		Kind:      KindEmiSync,
		EmiID:     id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncMessageFromJSON creates a message from JSON bytes.
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
