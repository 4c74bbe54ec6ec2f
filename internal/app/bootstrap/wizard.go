package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/medspa-booking-wizard/internal/appointments"
	appconfig "github.com/wolfman30/medspa-booking-wizard/internal/config"
	"github.com/wolfman30/medspa-booking-wizard/internal/wizard"
)

// AppointmentCreator adapts appointments.Service to the wizard's commit collaborator.
type AppointmentCreator struct {
	service *appointments.Service
}

var _ wizard.AppointmentCreator = (*AppointmentCreator)(nil)

func NewAppointmentCreator(service *appointments.Service) *AppointmentCreator {
	if service == nil {
		panic("bootstrap: appointments service required")
	}
	return &AppointmentCreator{service: service}
}

func (c *AppointmentCreator) CreateAppointment(ctx context.Context, req wizard.AppointmentRequest) (string, error) {
	appt, err := c.service.CreateAppointment(ctx, appointments.CreateRequest{
		OrgID:           req.OrgID,
		PatientID:       req.PatientID,
		ProviderID:      req.ProviderID,
		ClinicID:        req.ClinicID,
		ProcedureID:     req.ProcedureID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Reason:          req.Reason,
		Notes:           req.Notes,
		Price:           req.Price,
		PaymentChannel:  string(req.PaymentChannel),
		PatientName:     req.PatientName,
		PatientEmail:    req.PatientEmail,
	})
	if err != nil {
		return "", err
	}
	return appt.ID, nil
}

// WizardOptions translates configuration into per-session wizard options.
func WizardOptions(cfg *appconfig.Config) ([]wizard.Option, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: clinic timezone %q: %w", cfg.ClinicTimezone, err)
	}
	return []wizard.Option{
		wizard.WithLocale(wizard.ParseLocale(cfg.WizardLocale)),
		wizard.WithLocation(loc),
		wizard.WithPlaceholderClinicID(cfg.PlaceholderClinicID),
		wizard.WithDefaultDuration(cfg.DefaultAppointmentMinutes),
	}, nil
}
