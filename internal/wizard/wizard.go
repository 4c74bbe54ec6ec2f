package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/medspa-booking-wizard/internal/observability/metrics"
	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

const (
	// DefaultPlaceholderClinicID is sent when the chosen provider has no clinic.
	DefaultPlaceholderClinicID = "00000000-0000-0000-0000-000000000001"
	// DefaultDurationMinutes applies when neither procedure nor slot carry a duration.
	DefaultDurationMinutes = 60
)

// Wizard owns one booking draft. Its methods may be called from several
// goroutines and every mutation is mirrored to the store before the call
// returns. See Finalize for how edits racing a commit are handled.
type Wizard struct {
	mu         sync.Mutex
	draft      Draft
	rev        uint64 // bumped on every mirrored mutation
	committing bool

	bridge  *bridge
	creator AppointmentCreator
	logger  *logging.Logger
	metrics *metrics.WizardMetrics

	orgID               string
	quietRestore        bool
	locale              Locale
	location            *time.Location
	placeholderClinicID string
	defaultDuration     int
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithKey sets the store slot for this wizard's draft.
func WithKey(key string) Option {
	return func(w *Wizard) {
		if key != "" {
			w.bridge.key = key
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithMetrics(m *metrics.WizardMetrics) Option {
	return func(w *Wizard) { w.metrics = m }
}

// withQuietRestore keeps the restore out of the restores metric. The HTTP
// handler rebuilds a wizard per request and only counts explicit resumes.
func withQuietRestore() Option {
	return func(w *Wizard) { w.quietRestore = true }
}

// WithOrgID tags commits with the tenant the wizard runs for.
func WithOrgID(orgID string) Option {
	return func(w *Wizard) { w.orgID = orgID }
}

func WithLocale(locale Locale) Option {
	return func(w *Wizard) {
		if locale.valid() {
			w.locale = locale
		}
	}
}

// WithLocation sets the clinic time zone used to combine date and slot start.
func WithLocation(loc *time.Location) Option {
	return func(w *Wizard) {
		if loc != nil {
			w.location = loc
		}
	}
}

func WithPlaceholderClinicID(id string) Option {
	return func(w *Wizard) {
		if id != "" {
			w.placeholderClinicID = id
		}
	}
}

func WithDefaultDuration(minutes int) Option {
	return func(w *Wizard) {
		if minutes > 0 {
			w.defaultDuration = minutes
		}
	}
}

// New builds a wizard and restores any draft previously mirrored under its key.
// Restore problems are never returned; the wizard starts empty instead.
func New(ctx context.Context, store Store, creator AppointmentCreator, opts ...Option) *Wizard {
	if store == nil {
		panic("wizard: store required")
	}
	if creator == nil {
		panic("wizard: appointment creator required")
	}
	w := &Wizard{
		bridge:              &bridge{store: store, key: DefaultKey},
		creator:             creator,
		logger:              logging.Default(),
		locale:              LocaleEnUS,
		location:            time.UTC,
		placeholderClinicID: DefaultPlaceholderClinicID,
		defaultDuration:     DefaultDurationMinutes,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("draft_key", w.bridge.key)
	w.bridge.logger = w.logger
	if !w.quietRestore {
		w.bridge.metrics = w.metrics
	}
	w.draft = w.bridge.restore(ctx)
	return w
}

// Snapshot returns a copy of the current draft.
func (w *Wizard) Snapshot() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.clone()
}

func (w *Wizard) CurrentStep() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.CurrentStep
}

func (w *Wizard) HighestCompletedStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.HighestCompletedStep
}

// GoToStep jumps without gating; callers check IsStepUnlocked first.
// Steps outside 1..4 are ignored.
func (w *Wizard) GoToStep(ctx context.Context, step Step) {
	if !step.Valid() {
		w.logger.Warn("wizard: ignoring jump to unknown step", "step", int(step))
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.CurrentStep = step
	w.persistLocked(ctx)
}

// Advance moves forward one step (clamped at the last) and marks the step
// being left as completed.
func (w *Wizard) Advance(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	before := w.draft.CurrentStep
	if before < lastStep {
		w.draft.CurrentStep = before + 1
	}
	w.raiseLocked(before)
	w.persistLocked(ctx)
}

// Retreat moves back one step, clamped at the first. The watermark is untouched.
func (w *Wizard) Retreat(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft.CurrentStep > firstStep {
		w.draft.CurrentStep--
	}
	w.persistLocked(ctx)
}

// IsStepUnlocked reports whether every step before n is completed.
func (w *Wizard) IsStepUnlocked(n Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.HighestCompletedStep >= int(n)-1
}

// UnlockedSteps lists the steps a UI may currently offer.
func (w *Wizard) UnlockedSteps() []Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []Step
	for s := firstStep; s <= lastStep; s++ {
		if w.draft.HighestCompletedStep >= int(s)-1 {
			out = append(out, s)
		}
	}
	return out
}

func (w *Wizard) SetSelection(ctx context.Context, service ServiceItem, provider ProviderRef) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Selection = &Selection{Service: service, Provider: provider}
	w.completeLocked(ctx, StepSelection)
}

func (w *Wizard) SetSchedule(ctx context.Context, date string, slot TimeSlot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Schedule = &Schedule{Date: date, Slot: slot}
	w.completeLocked(ctx, StepSchedule)
}

func (w *Wizard) SetClient(ctx context.Context, client ClientRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c := client
	w.draft.Client = &c
	w.completeLocked(ctx, StepClient)
}

// SetPayment stores the payment choice. A method sent with PaymentAtLocation
// is dropped; a missing method for PaymentOnline is accepted as-is.
func (w *Wizard) SetPayment(ctx context.Context, channel PaymentChannel, method PaymentMethod) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := &Payment{Channel: channel}
	if channel == PaymentOnline {
		p.Method = method
	}
	w.draft.Payment = p
	w.completeLocked(ctx, StepPayment)
}

// Reset empties the draft and erases the persisted copy.
func (w *Wizard) Reset(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked(ctx)
}

func (w *Wizard) resetLocked(ctx context.Context) {
	w.draft = EmptyDraft()
	if err := w.bridge.clear(ctx); err != nil {
		w.logger.Warn("wizard: draft clear failed", "error", err)
		w.metrics.ObservePersistFailure("clear")
	}
}

func (w *Wizard) completeLocked(ctx context.Context, step Step) {
	w.raiseLocked(step)
	w.metrics.ObserveStepCompleted(step.String())
	w.persistLocked(ctx)
}

func (w *Wizard) raiseLocked(step Step) {
	if step > lastStep {
		step = lastStep
	}
	if int(step) > w.draft.HighestCompletedStep {
		w.draft.HighestCompletedStep = int(step)
	}
}

// persistLocked mirrors the draft; failures are logged and counted, never returned.
func (w *Wizard) persistLocked(ctx context.Context) {
	w.rev++
	if err := w.bridge.mirror(ctx, w.draft); err != nil {
		w.logger.Warn("wizard: draft mirror failed", "error", err, "step", int(w.draft.CurrentStep))
		w.metrics.ObservePersistFailure("mirror")
	}
}
