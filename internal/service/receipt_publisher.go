// Package service holds outbound integrations used by the HTTP layer.
package service

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/queuepro/internal/queue"
	"github.com/iliyamo/queuepro/internal/ticketing"
)

// ReceiptPublisher queues receipts on RabbitMQ for the receipt consumer.
// Each publish dials its own connection.  Errors are returned wrapped and
// left to the caller to log.
type ReceiptPublisher struct {
	URL string
}

var _ ticketing.ReceiptSender = (*ReceiptPublisher)(nil)

func NewReceiptPublisher(url string) *ReceiptPublisher {
	return &ReceiptPublisher{URL: url}
}

// SendReceipt publishes r as a persistent message on the receipt queue.
func (p *ReceiptPublisher) SendReceipt(ctx context.Context, r ticketing.Receipt) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so receipts survive broker restarts.
	if _, err := ch.QueueDeclare(queue.ReceiptQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq declare %s: %w", queue.ReceiptQueueName, err)
	}

	now := time.Now().UTC()
	body, err := queue.EncodeReceipt(r, now)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.ReceiptQueueName, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}
