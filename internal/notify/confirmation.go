package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

// BookingConfirmation carries what a patient needs to show up for a booked appointment.
type BookingConfirmation struct {
	AppointmentID   string
	PatientName     string
	PatientEmail    string
	Procedure       string
	ScheduledAt     time.Time
	DurationMinutes int
	Price           float64
	PayAtLocation   bool
}

// ConfirmationMessage renders the patient-facing confirmation email.
func ConfirmationMessage(c BookingConfirmation) EmailMessage {
	procedure := c.Procedure
	if procedure == "" {
		procedure = "your appointment"
	}
	when := c.ScheduledAt.Format("Monday, January 2, 2006 at 3:04 PM MST")
	greeting := "Hi"
	if name := strings.TrimSpace(c.PatientName); name != "" {
		greeting = "Hi " + name
	}

	var body strings.Builder
	fmt.Fprintf(&body, "%s,\n\n", greeting)
	fmt.Fprintf(&body, "Your booking for %s is confirmed.\n\n", procedure)
	fmt.Fprintf(&body, "When: %s\n", when)
	fmt.Fprintf(&body, "Duration: %d minutes\n", c.DurationMinutes)
	fmt.Fprintf(&body, "Total: %.2f\n", c.Price)
	if c.PayAtLocation {
		body.WriteString("Payment will be collected at the clinic.\n")
	}
	fmt.Fprintf(&body, "\nReference: %s\n", c.AppointmentID)

	var htmlBody strings.Builder
	fmt.Fprintf(&htmlBody, "<p>%s,</p>", html.EscapeString(greeting))
	fmt.Fprintf(&htmlBody, "<p>Your booking for <strong>%s</strong> is confirmed.</p>", html.EscapeString(procedure))
	fmt.Fprintf(&htmlBody, "<ul><li>When: %s</li><li>Duration: %d minutes</li><li>Total: %.2f</li></ul>",
		html.EscapeString(when), c.DurationMinutes, c.Price)
	if c.PayAtLocation {
		htmlBody.WriteString("<p>Payment will be collected at the clinic.</p>")
	}
	fmt.Fprintf(&htmlBody, "<p>Reference: %s</p>", html.EscapeString(c.AppointmentID))

	return EmailMessage{
		To:       c.PatientEmail,
		ToName:   c.PatientName,
		Subject:  fmt.Sprintf("Booking confirmed: %s", procedure),
		Body:     body.String(),
		HTML:     htmlBody.String(),
		Category: CategoryBookingConfirmation,
	}
}

// Confirmer emails booking confirmations to patients.
type Confirmer struct {
	email  EmailSender
	logger *logging.Logger
}

func NewConfirmer(email EmailSender, logger *logging.Logger) *Confirmer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Confirmer{email: email, logger: logger}
}

// SendBookingConfirmation is a no-op when no sender is configured or the patient left no address.
func (c *Confirmer) SendBookingConfirmation(ctx context.Context, conf BookingConfirmation) error {
	if c == nil || c.email == nil {
		return nil
	}
	if strings.TrimSpace(conf.PatientEmail) == "" {
		c.logger.Debug("booking confirmation skipped: no patient email", "appointment_id", conf.AppointmentID)
		return nil
	}
	if err := c.email.Send(ctx, ConfirmationMessage(conf)); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	return nil
}
