package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

const defaultFromName = "MedSpa Booking"

// CategoryBookingConfirmation tags confirmation mail so providers can report on it.
const CategoryBookingConfirmation = "booking_confirmation"

var errNoRecipient = errors.New("notify: message has no recipient")

// EmailSender sends transactional email such as booking confirmations.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is provider agnostic; senders map it onto their own payloads.
type EmailMessage struct {
	To       string
	ToName   string
	ReplyTo  string
	Subject  string
	Body     string // plain text
	HTML     string // optional
	Category string
}

func (m EmailMessage) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errNoRecipient
	}
	return nil
}

// textBody falls back to the HTML part so providers that require a text part get one.
func (m EmailMessage) textBody() string {
	if m.Body != "" {
		return m.Body
	}
	return m.HTML
}

// Identity is the From line shared by every sender.
type Identity struct {
	Name    string
	Address string
}

func newIdentity(name, address string) Identity {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultFromName
	}
	return Identity{Name: name, Address: strings.TrimSpace(address)}
}

func (i Identity) String() string {
	return fmt.Sprintf("%s <%s>", i.Name, i.Address)
}

// StubEmailSender logs instead of sending and keeps what it was given.
type StubEmailSender struct {
	logger *logging.Logger

	mu   sync.Mutex
	sent []EmailMessage
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := msg.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	s.logger.Info("stub email sender: would send email", "to", msg.To, "subject", msg.Subject, "category", msg.Category)
	return nil
}

// Sent returns a copy of every accepted message.
func (s *StubEmailSender) Sent() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmailMessage(nil), s.sent...)
}
