// Package queue defines the receipt messages exchanged over RabbitMQ and
// the consumer that delivers them.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/queuepro/internal/ticketing"
)

// ReceiptQueueName is the durable queue carrying ReceiptRequested messages.
const ReceiptQueueName = "token.receipts"

// ReceiptRequested asks the consumer to deliver a token receipt.  It
// carries everything the mailer needs so the consumer never touches the
// database.
type ReceiptRequested struct {
	Receipt     ticketing.Receipt `json:"receipt"`
	RequestedAt string            `json:"requested_at"`
}

func EncodeReceipt(r ticketing.Receipt, at time.Time) ([]byte, error) {
	return json.Marshal(ReceiptRequested{Receipt: r, RequestedAt: at.UTC().Format(time.RFC3339)})
}

func DecodeReceipt(body []byte) (ReceiptRequested, error) {
	var ev ReceiptRequested
	if err := json.Unmarshal(body, &ev); err != nil {
		return ReceiptRequested{}, fmt.Errorf("unmarshal: %w", err)
	}
	switch {
	case ev.Receipt.Kind == ticketing.ReceiptAppointment:
		if ev.Receipt.AppointmentDate == "" {
			return ReceiptRequested{}, fmt.Errorf("appointment receipt without date")
		}
	case ev.Receipt.TokenNumber == "":
		return ReceiptRequested{}, fmt.Errorf("receipt without token number")
	}
	return ev, nil
}
