package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"goldloan/internal/receipt"
)

// ReceiptMailMessage carries a complete receipt, so the consumer needs no
// access to the visitor's session.
type ReceiptMailMessage struct {
	To        string          `json:"to"`
	Receipt   receipt.Receipt `json:"receipt"`
	RequestID string          `json:"request_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewReceiptMailMessage(to, requestID string, r receipt.Receipt) *ReceiptMailMessage {
	return &ReceiptMailMessage{
		To:        to,
		Receipt:   r,
		RequestID: requestID,
		Timestamp: time.Now(),
	}
}

func (m *ReceiptMailMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReceiptMailMessageFromJSON(data []byte) (*ReceiptMailMessage, error) {
	var msg ReceiptMailMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.To == "" || msg.Receipt.Number == "" {
		return nil, errors.New("receipt mail message missing recipient or receipt number")
	}
	return &msg, nil
}
