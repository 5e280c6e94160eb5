package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/queuepro/internal/ticketing"
)

// StartReceiptConsumer connects to RabbitMQ, declares the receipt queue
// and hands every message to sender.  It reconnects with backoff until
// ctx is cancelled.  Messages that cannot be delivered are rejected
// without requeue so one bad receipt cannot stall the queue.
func StartReceiptConsumer(ctx context.Context, url string, sender ticketing.ReceiptSender) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("receipt-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, sender)
		_ = conn.Close()
		if err == nil {
			return nil
		}
		log.Printf("receipt-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// consumeLoop returns nil only when ctx is cancelled.
func consumeLoop(ctx context.Context, conn *amqp.Connection, sender ticketing.ReceiptSender) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Printf("receipt-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(ReceiptQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ReceiptQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(ctx, d.Body, sender); err != nil {
				log.Printf("receipt-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(ctx context.Context, body []byte, sender ticketing.ReceiptSender) error {
	ev, err := DecodeReceipt(body)
	if err != nil {
		return err
	}
	sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := sender.SendReceipt(sendCtx, ev.Receipt); err != nil {
		return fmt.Errorf("send %s receipt to %s: %w", ev.Receipt.Kind, ev.Receipt.OwnerEmail, err)
	}
	return nil
}
