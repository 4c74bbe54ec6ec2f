package wizard

// Discounts are not offered through the wizard yet.
const summaryDiscount = 0.0

// Summary is the read-only, display-ready view of a draft.
type Summary struct {
	Date      FormattedDate    `json:"date"`
	TimeRange string           `json:"timeRange"`
	Slot      TimeSlot         `json:"slot"`
	Procedure SummaryProcedure `json:"procedure"`
	Provider  SummaryProvider  `json:"provider"`
	Client    *ClientRecord    `json:"client,omitempty"`
	Payment   *Payment         `json:"payment,omitempty"`
	Totals    Totals           `json:"totals"`
}

type SummaryProcedure struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category,omitempty"`
	DurationMinutes int    `json:"durationMinutes"`
}

type SummaryProvider struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Title         string `json:"title,omitempty"`
	PhotoURL      string `json:"photoUrl,omitempty"`
	ClinicName    string `json:"clinicName,omitempty"`
	ClinicAddress string `json:"clinicAddress,omitempty"`
}

type Totals struct {
	ServiceAmount float64 `json:"serviceAmount"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
}

// Summary derives the summary from the live draft. It returns nil until both
// the selection and the schedule are set.
func (w *Wizard) Summary() *Summary {
	w.mu.Lock()
	d := w.draft.clone()
	w.mu.Unlock()
	return w.summarize(d)
}

func (w *Wizard) summarize(d Draft) *Summary {
	if d.Selection == nil || d.Schedule == nil {
		return nil
	}
	sel, sched := d.Selection, d.Schedule

	date := FormattedDate{Text: sched.Date}
	if day, err := sched.Day(w.location); err == nil {
		date = w.locale.formatDate(day)
	}

	amount := sel.Provider.Price
	return &Summary{
		Date:      date,
		TimeRange: sched.Slot.Start + " - " + sched.Slot.End,
		Slot:      sched.Slot,
		Procedure: SummaryProcedure{
			ID:              sel.Service.ID,
			Name:            sel.Service.Name,
			Category:        sel.Service.Category,
			DurationMinutes: w.durationFor(sel.Service, sched.Slot),
		},
		Provider: SummaryProvider{
			ID:            sel.Provider.ID,
			Name:          sel.Provider.Name,
			Title:         sel.Provider.Title,
			PhotoURL:      sel.Provider.PhotoURL,
			ClinicName:    sel.Provider.ClinicName,
			ClinicAddress: sel.Provider.ClinicAddress,
		},
		Client:  d.Client,
		Payment: d.Payment,
		Totals: Totals{
			ServiceAmount: amount,
			Discount:      summaryDiscount,
			Total:         amount - summaryDiscount,
		},
	}
}

// durationFor prefers the procedure's duration, then the slot's, then the default.
func (w *Wizard) durationFor(service ServiceItem, slot TimeSlot) int {
	switch {
	case service.DurationMinutes > 0:
		return service.DurationMinutes
	case slot.DurationMinutes > 0:
		return slot.DurationMinutes
	default:
		return w.defaultDuration
	}
}
