// Package wizard implements the four-step appointment booking wizard: step
// tracking, draft accumulation, draft persistence, summary derivation and the
// final commit to the appointment service.
package wizard

import (
	"strconv"
	"time"
)

// Step identifies one screen of the booking wizard.
type Step int

const (
	StepSelection Step = 1
	StepSchedule  Step = 2
	StepClient    Step = 3
	StepPayment   Step = 4

	firstStep = StepSelection
	lastStep  = StepPayment
)

// Valid reports whether s is one of the four wizard steps.
func (s Step) Valid() bool {
	return s >= firstStep && s <= lastStep
}

func (s Step) String() string {
	switch s {
	case StepSelection:
		return "selection"
	case StepSchedule:
		return "schedule"
	case StepClient:
		return "client"
	case StepPayment:
		return "payment"
	default:
		return "step_" + strconv.Itoa(int(s))
	}
}

// PaymentChannel is where the patient settles the appointment.
type PaymentChannel string

const (
	PaymentOnline     PaymentChannel = "online"
	PaymentAtLocation PaymentChannel = "at_location"
)

// PaymentMethod is only meaningful for PaymentOnline.
type PaymentMethod string

const (
	MethodCard   PaymentMethod = "card"
	MethodPix    PaymentMethod = "pix"
	MethodWallet PaymentMethod = "wallet"
)

// ServiceItem is the procedure picked on the first step.
type ServiceItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	Description     string `json:"description,omitempty"`
}

// ProviderRef is the practitioner offering the procedure, with the price and
// clinic needed for the summary and the commit.
type ProviderRef struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Title         string  `json:"title,omitempty"`
	PhotoURL      string  `json:"photoUrl,omitempty"`
	Price         float64 `json:"price"`
	ClinicID      string  `json:"clinicId,omitempty"`
	ClinicName    string  `json:"clinicName,omitempty"`
	ClinicAddress string  `json:"clinicAddress,omitempty"`
}

type Selection struct {
	Service  ServiceItem `json:"service"`
	Provider ProviderRef `json:"provider"`
}

// TimeSlot uses 24h "HH:MM" clock strings.
type TimeSlot struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
}

// Schedule carries the calendar date as "YYYY-MM-DD" so drafts round-trip
// without time zone drift.
type Schedule struct {
	Date string   `json:"date"`
	Slot TimeSlot `json:"slot"`
}

const dateLayout = "2006-01-02"

// Day parses the schedule date in loc.
func (s Schedule) Day(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(dateLayout, s.Date, loc)
}

// ClientRecord holds the patient-supplied fields from the third step.
type ClientRecord struct {
	PatientID string `json:"patientId"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type Payment struct {
	Channel PaymentChannel `json:"channel"`
	Method  PaymentMethod  `json:"method,omitempty"`
}

// Draft is the in-progress booking, persisted as a single blob.
type Draft struct {
	CurrentStep          Step          `json:"currentStep"`
	HighestCompletedStep int           `json:"highestCompletedStep"`
	Selection            *Selection    `json:"selection,omitempty"`
	Schedule             *Schedule     `json:"schedule,omitempty"`
	Client               *ClientRecord `json:"client,omitempty"`
	Payment              *Payment      `json:"payment,omitempty"`
}

// EmptyDraft is the initial shape of every wizard.
func EmptyDraft() Draft {
	return Draft{CurrentStep: firstStep}
}

// clone deep-copies the optional slices so callers cannot mutate wizard state.
func (d Draft) clone() Draft {
	out := d
	if d.Selection != nil {
		v := *d.Selection
		out.Selection = &v
	}
	if d.Schedule != nil {
		v := *d.Schedule
		out.Schedule = &v
	}
	if d.Client != nil {
		v := *d.Client
		out.Client = &v
	}
	if d.Payment != nil {
		v := *d.Payment
		out.Payment = &v
	}
	return out
}

// missing lists the slices Finalize requires but the draft lacks.
func (d Draft) missing() []string {
	var out []string
	if d.Selection == nil {
		out = append(out, StepSelection.String())
	}
	if d.Schedule == nil {
		out = append(out, StepSchedule.String())
	}
	if d.Client == nil {
		out = append(out, StepClient.String())
	}
	return out
}
