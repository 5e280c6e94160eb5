package ticketing

import "context"

// Event types broadcast to real-time subscribers.
const (
	EventTokenCreated = "token_created"
	EventTokenServed  = "token_served"
	EventQueueUpdated = "queue_updated"
)

// Event is a queue change scoped to (Branch, ServiceID).  Fields unused by
// an event type are omitted from its JSON form.
type Event struct {
	Type        string       `json:"type"`
	Branch      string       `json:"branch"`
	ServiceID   string       `json:"service_id"`
	TokenNumber string       `json:"token_number,omitempty"`
	Position    int          `json:"position,omitempty"`
	Tokens      []QueueEntry `json:"tokens,omitempty"`
}

// Notifier fans events out to subscribers of the event's scope.  Delivery
// is at most once with no replay.  Publish errors never fail the
// operation that produced the event.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// Receipt kinds.
const (
	ReceiptIssued      = "issued"
	ReceiptServed      = "served"
	ReceiptAppointment = "appointment"
)

// Receipt is the owner notification sent after an issue, an advancement
// or a booked appointment.  Appointment receipts carry no token number.
type Receipt struct {
	Kind        string `json:"kind"`
	TokenNumber string `json:"token_number"`
	OwnerName   string `json:"owner_name"`
	OwnerEmail  string `json:"owner_email"`
	Branch      string `json:"branch"`
	ServiceName string `json:"service_name"`
	Position    int    `json:"position,omitempty"`
	IssuedAt    string `json:"issued_at"`

	AppointmentDate string `json:"appointment_date,omitempty"`
	AppointmentTime string `json:"appointment_time,omitempty"`
	Purpose         string `json:"purpose,omitempty"`
}

// ReceiptSender delivers receipts, typically by email.
type ReceiptSender interface {
	SendReceipt(ctx context.Context, r Receipt) error
}
