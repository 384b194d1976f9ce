package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// TransactionChangeMessage announces that the underlying transaction data
// mutated. Consumers use it to invalidate derived caches; it carries only
// identifiers, never the transaction itself.
type TransactionChangeMessage struct {
	TransactionID int64     `json:"transaction_id"`
	Kind          string    `json:"kind"`
	Category      string    `json:"category,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionChangeMessage(id int64, kind, category string) *TransactionChangeMessage {
	return &TransactionChangeMessage{
		TransactionID: id,
		Kind:          kind,
		Category:      category,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionChangeMessage) Validate() error {
	switch m.Kind {
	case ChangeCreated, ChangeUpdated, ChangeDeleted:
		return nil
	}
	return fmt.Errorf("unknown change kind %q", m.Kind)
}

// ToJSON converts the message to JSON bytes
func (m *TransactionChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionChangeMessageFromJSON creates a message from JSON bytes
func TransactionChangeMessageFromJSON(data []byte) (*TransactionChangeMessage, error) {
	var msg TransactionChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
