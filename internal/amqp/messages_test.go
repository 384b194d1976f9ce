package amqp

import (
	"testing"
)

func TestTransactionChangeMessage_Validate(t *testing.T) {
	for _, kind := range []string{ChangeCreated, ChangeUpdated, ChangeDeleted} {
		msg := NewTransactionChangeMessage(1, kind, "")
		if err := msg.Validate(); err != nil {
			t.Errorf("%s should be valid: %v", kind, err)
		}
	}

	msg := NewTransactionChangeMessage(1, "renamed", "")
	if err := msg.Validate(); err == nil {
		t.Error("unknown kind should be rejected")
	}
}

func TestTransactionChangeMessage_RoundTrip(t *testing.T) {
	original := NewTransactionChangeMessage(42, ChangeUpdated, "groceries")

	data, err := original.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := TransactionChangeMessageFromJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.TransactionID != 42 || decoded.Kind != ChangeUpdated || decoded.Category != "groceries" {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("timestamp mismatch: %v vs %v", decoded.Timestamp, original.Timestamp)
	}
}

func TestTransactionChangeMessageFromJSON_Rejects(t *testing.T) {
	if _, err := TransactionChangeMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("malformed JSON should error")
	}
	if _, err := TransactionChangeMessageFromJSON([]byte(`{"transaction_id":1,"kind":"exploded"}`)); err == nil {
		t.Error("unknown kind should error on decode")
	}
}
