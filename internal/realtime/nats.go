package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/iliyamo/queuepro/internal/ticketing"
)

const subjectRoot = "queue"

// Subject returns the NATS subject carrying events of one scope.
func Subject(branch, serviceID string) string {
	return fmt.Sprintf("%s.%s.%s", subjectRoot, branch, serviceID)
}

// NATSBridge publishes events to NATS and relays every queue subject
// back into the local hub, so clients connected to any instance see
// events produced by all of them.
type NATSBridge struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	hub     *Hub
	publish func(subject string, data []byte) error
}

var _ ticketing.Notifier = (*NATSBridge)(nil)

func NewNATSBridge(url string, hub *Hub) (*NATSBridge, error) {
	nc, err := nats.Connect(url, nats.Name("queuepro"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	b := &NATSBridge{nc: nc, hub: hub, publish: nc.Publish}
	b.sub, err = nc.Subscribe(subjectRoot+".>", b.relay)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %s.>: %w", subjectRoot, err)
	}
	log.Printf("nats: relaying %s.> into local hub", subjectRoot)
	return b, nil
}

// Publish sends ev to NATS.  When NATS rejects it the event is still
// broadcast to this instance's subscribers and the error is returned.
func (b *NATSBridge) Publish(_ context.Context, ev ticketing.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	subject := Subject(ev.Branch, ev.ServiceID)
	if err := b.publish(subject, data); err != nil {
		b.hub.Broadcast(data, Subscription{Branch: ev.Branch, ServiceID: ev.ServiceID})
		return fmt.Errorf("nats publish %s, delivered locally only: %w", subject, err)
	}
	return nil
}

func (b *NATSBridge) relay(m *nats.Msg) {
	var ev ticketing.Event
	if err := json.Unmarshal(m.Data, &ev); err != nil {
		log.Printf("nats: bad event on %s: %v", m.Subject, err)
		return
	}
	b.hub.Broadcast(m.Data, Subscription{Branch: ev.Branch, ServiceID: ev.ServiceID})
}

// Close drains the subscription and the connection.
func (b *NATSBridge) Close() error {
	return b.nc.Drain()
}
