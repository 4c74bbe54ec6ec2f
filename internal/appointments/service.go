package appointments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/medspa-booking-wizard/internal/notify"
	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

var appointmentsTracer = otel.Tracer("medspa.internal.appointments")

// Confirmer sends the patient a booking confirmation.
type Confirmer interface {
	SendBookingConfirmation(ctx context.Context, conf notify.BookingConfirmation) error
}

// Service books appointments committed by the wizard.
type Service struct {
	repo      Repository
	confirmer Confirmer
	logger    *logging.Logger
	now       func() time.Time
}

// NewService constructs an appointments service. confirmer may be nil.
func NewService(repo Repository, confirmer Confirmer, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, confirmer: confirmer, logger: logger, now: time.Now}
}

// CreateAppointment validates and stores a booking. A confirmation email is
// attempted afterwards; its failure does not undo the booking.
func (s *Service) CreateAppointment(ctx context.Context, req CreateRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("medspa.org_id", req.OrgID),
		attribute.String("medspa.provider_id", req.ProviderID),
	)

	if err := validate(req); err != nil {
		span.RecordError(err)
		return nil, err
	}

	appt := &Appointment{
		ID:              uuid.NewString(),
		OrgID:           req.OrgID,
		PatientID:       req.PatientID,
		ProviderID:      req.ProviderID,
		ClinicID:        req.ClinicID,
		ProcedureID:     req.ProcedureID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Reason:          strings.TrimSpace(req.Reason),
		Notes:           strings.TrimSpace(req.Notes),
		Price:           req.Price,
		PaymentChannel:  req.PaymentChannel,
		Status:          StatusBooked,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("medspa.appointment_id", appt.ID))
	s.logger.Info("appointment booked",
		"org_id", appt.OrgID,
		"appointment_id", appt.ID,
		"provider_id", appt.ProviderID,
		"scheduled_at", appt.ScheduledAt.Format(time.RFC3339),
	)

	s.confirm(ctx, appt, req)
	return appt, nil
}

// GetAppointment returns an appointment scoped to the org.
func (s *Service) GetAppointment(ctx context.Context, orgID, id string) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.get")
	defer span.End()
	span.SetAttributes(attribute.String("medspa.org_id", orgID))

	appt, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return appt, nil
}

func (s *Service) confirm(ctx context.Context, appt *Appointment, req CreateRequest) {
	if s.confirmer == nil || req.PatientEmail == "" {
		return
	}
	err := s.confirmer.SendBookingConfirmation(ctx, notify.BookingConfirmation{
		AppointmentID:   appt.ID,
		PatientName:     req.PatientName,
		PatientEmail:    req.PatientEmail,
		Procedure:       appt.Reason,
		ScheduledAt:     appt.ScheduledAt,
		DurationMinutes: appt.DurationMinutes,
		Price:           appt.Price,
		PayAtLocation:   appt.PaymentChannel == "at_location",
	})
	if err != nil {
		s.logger.Warn("booking confirmation failed", "error", err, "appointment_id", appt.ID)
	}
}

func validate(req CreateRequest) error {
	switch {
	case strings.TrimSpace(req.OrgID) == "":
		return fmt.Errorf("%w: org id required", ErrInvalidRequest)
	case strings.TrimSpace(req.PatientID) == "":
		return fmt.Errorf("%w: patient id required", ErrInvalidRequest)
	case strings.TrimSpace(req.ProviderID) == "":
		return fmt.Errorf("%w: provider id required", ErrInvalidRequest)
	case strings.TrimSpace(req.ProcedureID) == "":
		return fmt.Errorf("%w: procedure id required", ErrInvalidRequest)
	case strings.TrimSpace(req.ClinicID) == "":
		return fmt.Errorf("%w: clinic id required", ErrInvalidRequest)
	case req.ScheduledAt.IsZero():
		return fmt.Errorf("%w: scheduled time required", ErrInvalidRequest)
	case req.DurationMinutes <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidRequest)
	case req.Price < 0:
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidRequest)
	}
	return nil
}
