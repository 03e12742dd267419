package amqp

import (
	"encoding/json"
	"time"

	"duitku/internal/core"
)

// TransactionMessage is a lightweight notification that a ledger row needs
// mirroring to the spreadsheet. It carries only the kind and ID; the worker
// fetches the full row from the database.
type TransactionMessage struct {
	Kind      core.TransactionKind `json:"kind"`
	ID        int64                `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
}

// NewTransactionMessage creates a mirror notification for a ledger row.
func NewTransactionMessage(kind core.TransactionKind, id int64) *TransactionMessage {
	return &TransactionMessage{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionMessageFromJSON creates a message from JSON bytes
func TransactionMessageFromJSON(data []byte) (*TransactionMessage, error) {
	var msg TransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
