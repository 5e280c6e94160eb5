package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/domodwyer/mailyak/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/queuepro/internal/ticketing"
)

var receipt = ticketing.Receipt{
	Kind:        ticketing.ReceiptIssued,
	TokenNumber: "BCAS004-25122024",
	OwnerName:   "Ada",
	OwnerEmail:  "ada@example.com",
	Branch:      "bank",
	ServiceName: "Cash Deposit",
	Position:    4,
	IssuedAt:    "2024-12-25T09:00:00Z",
}

func TestRender(t *testing.T) {
	subject, body := Render(receipt)
	assert.Equal(t, "Your token BCAS004-25122024", subject)
	assert.Contains(t, body, "Position in queue: 4")

	served := receipt
	served.Kind = ticketing.ReceiptServed
	subject, body = Render(served)
	assert.Equal(t, "Token BCAS004-25122024 is being served", subject)
	assert.Contains(t, body, "Cash Deposit")
}

func TestMailerComposesReceipt(t *testing.T) {
	m := NewMailer(Config{Host: "localhost", Port: 2525, From: "queue@example.com", FromName: "QueuePro"})
	var sent *mailyak.MailYak
	m.send = func(msg *mailyak.MailYak) error { sent = msg; return nil }

	require.NoError(t, m.SendReceipt(context.Background(), receipt))
	require.NotNil(t, sent)

	buf, err := sent.MimeBuf()
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Subject: Your token BCAS004-25122024")
	assert.Contains(t, raw, "ada@example.com")
	assert.Contains(t, raw, "QueuePro")
}

func TestMailerPropagatesFailures(t *testing.T) {
	m := NewMailer(Config{Host: "localhost", Port: 2525, From: "queue@example.com"})
	m.send = func(*mailyak.MailYak) error { return errors.New("connection refused") }
	assert.Error(t, m.SendReceipt(context.Background(), receipt))

	block := make(chan struct{})
	defer close(block)
	m.send = func(*mailyak.MailYak) error { <-block; return nil }
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.SendReceipt(ctx, receipt), context.DeadlineExceeded)
}

func TestMailerSkipsMissingAddress(t *testing.T) {
	m := NewMailer(Config{Host: "localhost", Port: 2525})
	called := false
	m.send = func(*mailyak.MailYak) error { called = true; return nil }

	r := receipt
	r.OwnerEmail = ""
	require.NoError(t, m.SendReceipt(context.Background(), r))
	assert.False(t, called)
}

func TestRenderAppointment(t *testing.T) {
	subject, body := Render(ticketing.Receipt{
		Kind:            ticketing.ReceiptAppointment,
		OwnerName:       "Ada",
		Branch:          "bank",
		AppointmentDate: "2024-12-30",
		AppointmentTime: "10:30",
		Purpose:         "loan",
	})
	assert.Equal(t, "Your Bank Appointment is Scheduled", subject)
	assert.Contains(t, body, "2024-12-30 at 10:30")
	assert.Contains(t, body, "Purpose: loan")
}
