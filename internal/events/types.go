package events

import "time"

// AppointmentBookedType is the outbox type for AppointmentBookedV1.
const AppointmentBookedType = "appointment.booked.v1"

// AppointmentBookedV1 is emitted when a wizard commit creates an appointment.
type AppointmentBookedV1 struct {
	EventID         string    `json:"event_id"`
	OrgID           string    `json:"org_id"`
	AppointmentID   string    `json:"appointment_id"`
	PatientID       string    `json:"patient_id"`
	ProviderID      string    `json:"provider_id"`
	ClinicID        string    `json:"clinic_id"`
	ProcedureID     string    `json:"procedure_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	PaymentChannel  string    `json:"payment_channel,omitempty"`
	BookedAt        time.Time `json:"booked_at"`
}
