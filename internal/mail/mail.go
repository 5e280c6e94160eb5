// Package mail delivers token receipts by email.
package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strconv"

	"github.com/domodwyer/mailyak/v3"

	"github.com/iliyamo/queuepro/internal/ticketing"
)

// Config holds SMTP settings.  Username may be empty for relays that
// accept unauthenticated mail.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Mailer sends receipts over SMTP using mailyak.
type Mailer struct {
	cfg  Config
	auth smtp.Auth
	send func(*mailyak.MailYak) error
}

var _ ticketing.ReceiptSender = (*Mailer)(nil)

func NewMailer(cfg Config) *Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &Mailer{cfg: cfg, auth: auth, send: (*mailyak.MailYak).Send}
}

// SendReceipt composes and sends r.  The SMTP exchange runs in its own
// goroutine so ctx bounds how long the caller waits.
func (m *Mailer) SendReceipt(ctx context.Context, r ticketing.Receipt) error {
	if r.OwnerEmail == "" {
		return nil
	}
	msg := m.compose(r)
	errc := make(chan error, 1)
	go func() { errc <- m.send(msg) }()
	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", r.OwnerEmail, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mailer) compose(r ticketing.Receipt) *mailyak.MailYak {
	msg := mailyak.New(m.cfg.Host+":"+strconv.Itoa(m.cfg.Port), m.auth)
	msg.From(m.cfg.From)
	if m.cfg.FromName != "" {
		msg.FromName(m.cfg.FromName)
	}
	msg.To(r.OwnerEmail)
	subject, body := Render(r)
	msg.Subject(subject)
	msg.Plain().Set(body)
	return msg
}

// Render returns the subject and plain-text body of a receipt.
func Render(r ticketing.Receipt) (string, string) {
	switch r.Kind {
	case ticketing.ReceiptServed:
		return fmt.Sprintf("Token %s is being served", r.TokenNumber),
			fmt.Sprintf("Hello %s,\n\nYour token %s for %s (%s) has been called. Please proceed to the counter.\n",
				r.OwnerName, r.TokenNumber, r.ServiceName, r.Branch)
	case ticketing.ReceiptAppointment:
		return "Your Bank Appointment is Scheduled",
			fmt.Sprintf("Hello %s,\n\nYour appointment at the %s branch is booked for %s at %s.\nPurpose: %s\n",
				r.OwnerName, r.Branch, r.AppointmentDate, r.AppointmentTime, r.Purpose)
	default:
		return fmt.Sprintf("Your token %s", r.TokenNumber),
			fmt.Sprintf("Hello %s,\n\nYour token number is %s for %s (%s).\nPosition in queue: %d\nIssued at: %s\n",
				r.OwnerName, r.TokenNumber, r.ServiceName, r.Branch, r.Position, r.IssuedAt)
	}
}

// LogSender writes receipts to the log.  It is used when no SMTP server
// is configured.
type LogSender struct{}

func (LogSender) SendReceipt(_ context.Context, r ticketing.Receipt) error {
	subject, _ := Render(r)
	log.Printf("mail: to=%s subject=%q", r.OwnerEmail, subject)
	return nil
}
