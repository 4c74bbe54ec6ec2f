package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var wizardTracer = otel.Tracer("medspa.internal.wizard")

// ErrInvalidSchedule is wrapped in a CommitRejectedError when the draft's
// date or slot start cannot be combined into a timestamp.
var ErrInvalidSchedule = errors.New("wizard: invalid schedule")

// AppointmentRequest is the payload handed to the appointment service on commit.
type AppointmentRequest struct {
	OrgID           string         `json:"orgId,omitempty"`
	PatientID       string         `json:"patientId"`
	ProviderID      string         `json:"providerId"`
	ClinicID        string         `json:"clinicId"`
	ProcedureID     string         `json:"procedureId"`
	ScheduledAt     time.Time      `json:"scheduledAt"`
	DurationMinutes int            `json:"durationMinutes"`
	Reason          string         `json:"reason"`
	Notes           string         `json:"notes,omitempty"`
	Price           float64        `json:"price"`
	PaymentChannel  PaymentChannel `json:"paymentChannel,omitempty"`
	PatientEmail    string         `json:"patientEmail,omitempty"`
	PatientName     string         `json:"patientName,omitempty"`
}

// AppointmentCreator persists the appointment and returns its identifier.
type AppointmentCreator interface {
	CreateAppointment(ctx context.Context, req AppointmentRequest) (string, error)
}

// CommitResult reports the outcome of Finalize. On failure Err holds a
// *CommitRejectedError and the draft is left as it was.
type CommitResult struct {
	Success       bool
	AppointmentID string
	Err           error
}

// Finalize validates the draft and submits it. Missing selection, schedule or
// client yields an *IncompleteDraftError without any side effect. Payment is
// not required here; clinics may settle it at the front desk.
//
// Only one commit runs at a time; a concurrent call gets ErrCommitInProgress.
// The snapshot taken at the start is what gets submitted, and edits made while
// the creator runs are dropped by the reset that follows a success.
func (w *Wizard) Finalize(ctx context.Context) (*CommitResult, error) {
	ctx, span := wizardTracer.Start(ctx, "wizard.finalize")
	defer span.End()

	w.mu.Lock()
	if w.committing {
		w.mu.Unlock()
		w.metrics.ObserveCommit("in_progress", 0)
		return nil, ErrCommitInProgress
	}
	draft := w.draft.clone()
	if missing := draft.missing(); len(missing) > 0 {
		w.mu.Unlock()
		w.metrics.ObserveCommit("incomplete", 0)
		span.SetAttributes(attribute.StringSlice("wizard.missing", missing))
		return nil, &IncompleteDraftError{Missing: missing}
	}
	w.committing = true
	rev := w.rev
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.committing = false
		w.mu.Unlock()
	}()

	req, err := w.buildRequest(draft)
	if err != nil {
		span.RecordError(err)
		w.metrics.ObserveCommit("invalid", 0)
		w.logger.Warn("wizard: cannot build appointment request", "error", err)
		return &CommitResult{Err: &CommitRejectedError{Err: err}}, nil
	}
	span.SetAttributes(
		attribute.String("medspa.org_id", req.OrgID),
		attribute.String("wizard.provider_id", req.ProviderID),
		attribute.String("wizard.procedure_id", req.ProcedureID),
	)

	start := time.Now()
	id, err := w.creator.CreateAppointment(ctx, req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		w.metrics.ObserveCommit("rejected", elapsed)
		w.logger.Warn("wizard: appointment creation failed", "error", err)
		return &CommitResult{Err: &CommitRejectedError{Err: err}}, nil
	}

	w.mu.Lock()
	if edits := w.rev - rev; edits > 0 {
		w.logger.Warn("wizard: discarding edits made while the commit was in flight", "edits", edits, "appointment_id", id)
	}
	w.resetLocked(ctx)
	w.mu.Unlock()

	w.metrics.ObserveCommit("success", elapsed)
	w.logger.Info("wizard: booking committed", "appointment_id", id, "org_id", req.OrgID)
	return &CommitResult{Success: true, AppointmentID: id}, nil
}

func (w *Wizard) buildRequest(d Draft) (AppointmentRequest, error) {
	sel, sched, client := d.Selection, d.Schedule, d.Client

	scheduledAt, err := w.combine(*sched)
	if err != nil {
		return AppointmentRequest{}, err
	}

	clinicID := sel.Provider.ClinicID
	if clinicID == "" {
		clinicID = w.placeholderClinicID
	}

	req := AppointmentRequest{
		OrgID:           w.orgID,
		PatientID:       client.PatientID,
		ProviderID:      sel.Provider.ID,
		ClinicID:        clinicID,
		ProcedureID:     sel.Service.ID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: w.durationFor(sel.Service, sched.Slot),
		Reason:          sel.Service.Name,
		Notes:           client.Notes,
		Price:           sel.Provider.Price,
		PatientEmail:    client.Email,
		PatientName:     joinName(client.FirstName, client.LastName),
	}
	if d.Payment != nil {
		req.PaymentChannel = d.Payment.Channel
	}
	return req, nil
}

// combine merges the calendar date with the slot start in the clinic time zone.
func (w *Wizard) combine(s Schedule) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout+" 15:04", s.Date+" "+s.Slot.Start, w.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q at %q: %v", ErrInvalidSchedule, s.Date, s.Slot.Start, err)
	}
	return t, nil
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
