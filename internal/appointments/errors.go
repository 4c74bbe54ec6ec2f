package appointments

import "errors"

var (
	// ErrInvalidRequest wraps every validation failure from CreateAppointment.
	ErrInvalidRequest = errors.New("appointments: invalid request")
	// ErrSlotUnavailable is returned when the provider already has a booking at that time.
	ErrSlotUnavailable = errors.New("appointments: slot unavailable")
	ErrNotFound        = errors.New("appointments: not found")
)
