package appointments

import "time"

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
)

// Appointment is a committed booking.
type Appointment struct {
	ID              string    `json:"id"`
	OrgID           string    `json:"orgId"`
	PatientID       string    `json:"patientId"`
	ProviderID      string    `json:"providerId"`
	ClinicID        string    `json:"clinicId"`
	ProcedureID     string    `json:"procedureId"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Reason          string    `json:"reason,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Price           float64   `json:"price"`
	PaymentChannel  string    `json:"paymentChannel,omitempty"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// EndsAt returns the end of the booked interval.
func (a Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// CreateRequest is the input to Service.CreateAppointment.
type CreateRequest struct {
	OrgID           string
	PatientID       string
	ProviderID      string
	ClinicID        string
	ProcedureID     string
	ScheduledAt     time.Time
	DurationMinutes int
	Reason          string
	Notes           string
	Price           float64
	PaymentChannel  string

	// Contact details used for the confirmation email; not stored.
	PatientName  string
	PatientEmail string
}
