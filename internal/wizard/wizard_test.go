package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medspa-booking-wizard/internal/observability/metrics"
	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

type memStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	delErr error
	sets   int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = value
	return nil
}

func (m *memStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.data, key)
	return nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

type stubCreator struct {
	mu    sync.Mutex
	id    string
	err   error
	calls []AppointmentRequest
}

func (s *stubCreator) CreateAppointment(ctx context.Context, req AppointmentRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

func facialCleaning() (ServiceItem, ProviderRef) {
	return ServiceItem{ID: "proc-1", Name: "Facial Cleaning", Category: "Skin", DurationMinutes: 30},
		ProviderRef{ID: "prov-1", Name: "Dr. A", Price: 150, ClinicID: "clinic-9", ClinicName: "Downtown"}
}

func newTestWizard(t *testing.T, store Store, creator AppointmentCreator, opts ...Option) *Wizard {
	t.Helper()
	if creator == nil {
		creator = &stubCreator{id: "appt-1"}
	}
	return New(context.Background(), store, creator, opts...)
}

func TestNewStartsEmpty(t *testing.T) {
	wz := newTestWizard(t, newMemStore(), nil)

	draft := wz.Snapshot()
	assert.Equal(t, EmptyDraft(), draft)
	assert.Equal(t, StepSelection, wz.CurrentStep())
	assert.Equal(t, 0, wz.HighestCompletedStep())
}

func TestNewPanicsWithoutCollaborators(t *testing.T) {
	assert.Panics(t, func() { New(context.Background(), nil, &stubCreator{}) })
	assert.Panics(t, func() { New(context.Background(), newMemStore(), nil) })
}

func TestRetreatClampsAtFirstStep(t *testing.T) {
	wz := newTestWizard(t, newMemStore(), nil)
	wz.Retreat(context.Background())
	assert.Equal(t, StepSelection, wz.CurrentStep())
	assert.Equal(t, 0, wz.HighestCompletedStep())
}

func TestAdvanceClampsAtLastStepAndRaisesWatermark(t *testing.T) {
	ctx := context.Background()
	wz := newTestWizard(t, newMemStore(), nil)
	wz.GoToStep(ctx, StepPayment)
	require.Equal(t, 0, wz.HighestCompletedStep())

	wz.Advance(ctx)
	assert.Equal(t, StepPayment, wz.CurrentStep())
	assert.Equal(t, 4, wz.HighestCompletedStep())
}

func TestAdvanceMarksStepBeingLeft(t *testing.T) {
	ctx := context.Background()
	wz := newTestWizard(t, newMemStore(), nil)

	wz.Advance(ctx)
	assert.Equal(t, StepSchedule, wz.CurrentStep())
	assert.Equal(t, 1, wz.HighestCompletedStep())

	wz.Retreat(ctx)
	assert.Equal(t, StepSelection, wz.CurrentStep())
	assert.Equal(t, 1, wz.HighestCompletedStep(), "retreat must not lower the watermark")
}

func TestGoToStepIsUnconditional(t *testing.T) {
	wz := newTestWizard(t, newMemStore(), nil)
	wz.GoToStep(context.Background(), StepClient)
	assert.Equal(t, StepClient, wz.CurrentStep())
	assert.False(t, wz.IsStepUnlocked(StepClient))
}

func TestGoToUnknownStepKeepsDraftRestorable(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	wz := newTestWizard(t, store, nil)
	svc, prov := facialCleaning()
	wz.SetSelection(ctx, svc, prov)

	for _, step := range []Step{Step(5), Step(0), Step(-1)} {
		wz.GoToStep(ctx, step)
		assert.Equal(t, StepSelection, wz.CurrentStep(), "step %d must be ignored", step)
	}
	wz.Advance(ctx)
	assert.Equal(t, StepSchedule, wz.CurrentStep())
	assert.Equal(t, 1, wz.HighestCompletedStep())

	restored := newTestWizard(t, store, nil)
	require.NotNil(t, restored.Snapshot().Selection, "draft must survive a restore")
	assert.Equal(t, wz.Snapshot(), restored.Snapshot())
}

func TestRaiseNeverExceedsLastStep(t *testing.T) {
	wz := newTestWizard(t, newMemStore(), nil)
	wz.mu.Lock()
	wz.raiseLocked(Step(9))
	wz.mu.Unlock()
	assert.Equal(t, int(lastStep), wz.HighestCompletedStep())
}

func TestIsStepUnlocked(t *testing.T) {
	ctx := context.Background()
	wz := newTestWizard(t, newMemStore(), nil)
	assert.True(t, wz.IsStepUnlocked(StepSelection))
	assert.False(t, wz.IsStepUnlocked(StepSchedule))

	svc, prov := facialCleaning()
	wz.SetSelection(ctx, svc, prov)
	assert.True(t, wz.IsStepUnlocked(StepSchedule))
	assert.False(t, wz.IsStepUnlocked(StepClient))
	assert.Equal(t, []Step{StepSelection, StepSchedule}, wz.UnlockedSteps())
}

func TestSettersRaiseWatermarkToTheirStep(t *testing.T) {
	ctx := context.Background()
	wz := newTestWizard(t, newMemStore(), nil)

	wz.SetPayment(ctx, PaymentAtLocation, "")
	assert.Equal(t, 4, wz.HighestCompletedStep())

	svc, prov := facialCleaning()
	wz.SetSelection(ctx, svc, prov)
	assert.Equal(t, 4, wz.HighestCompletedStep(), "earlier setter must not lower the watermark")
}

func TestSettersDoNotMoveCurrentStep(t *testing.T) {
	ctx := context.Background()
	wz := newTestWizard(t, newMemStore(), nil)
	wz.SetClient(ctx, ClientRecord{PatientID: "pat-1"})
	assert.Equal(t, StepSelection, wz.CurrentStep())
	assert.Equal(t, 3, wz.HighestCompletedStep())
}

func TestWatermarkMonotonicOverRandomOperations(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	svc, prov := facialCleaning()

	ops := []func(*Wizard){
		func(w *Wizard) { w.SetSelection(ctx, svc, prov) },
		func(w *Wizard) { w.SetSchedule(ctx, "2025-03-10", TimeSlot{Start: "10:00", End: "10:30"}) },
		func(w *Wizard) { w.SetClient(ctx, ClientRecord{PatientID: "pat-1"}) },
		func(w *Wizard) { w.SetPayment(ctx, PaymentOnline, MethodCard) },
		func(w *Wizard) { w.Advance(ctx) },
		func(w *Wizard) { w.Retreat(ctx) },
		func(w *Wizard) { w.GoToStep(ctx, Step(rng.Intn(4)+1)) },
	}

	for run := 0; run < 50; run++ {
		wz := newTestWizard(t, newMemStore(), nil)
		prev := wz.HighestCompletedStep()
		for i := 0; i < 30; i++ {
			ops[rng.Intn(len(ops))](wz)
			cur := wz.HighestCompletedStep()
			require.GreaterOrEqual(t, cur, prev)
			require.True(t, wz.CurrentStep().Valid())
			prev = cur
		}
	}
}

func TestSetPaymentDropsMethodForPayAtLocation(t *testing.T) {
	ctx := context.Background()
	wz := newTestWizard(t, newMemStore(), nil)

	wz.SetPayment(ctx, PaymentAtLocation, MethodCard)
	assert.Equal(t, &Payment{Channel: PaymentAtLocation}, wz.Snapshot().Payment)

	wz.SetPayment(ctx, PaymentOnline, MethodPix)
	assert.Equal(t, &Payment{Channel: PaymentOnline, Method: MethodPix}, wz.Snapshot().Payment)
}

func TestSetterReplacesSlice(t *testing.T) {
	ctx := context.Background()
	wz := newTestWizard(t, newMemStore(), nil)
	wz.SetClient(ctx, ClientRecord{PatientID: "pat-1", Notes: "first"})
	wz.SetClient(ctx, ClientRecord{PatientID: "pat-2"})
	assert.Equal(t, &ClientRecord{PatientID: "pat-2"}, wz.Snapshot().Client)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	wz := newTestWizard(t, newMemStore(), nil)
	wz.SetClient(ctx, ClientRecord{PatientID: "pat-1"})

	snap := wz.Snapshot()
	snap.Client.PatientID = "tampered"
	assert.Equal(t, "pat-1", wz.Snapshot().Client.PatientID)
}

func TestEveryMutationIsMirrored(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	wz := newTestWizard(t, store, nil)

	svc, prov := facialCleaning()
	wz.SetSelection(ctx, svc, prov)
	wz.Advance(ctx)
	wz.Retreat(ctx)
	wz.GoToStep(ctx, StepSchedule)
	assert.Equal(t, 4, store.sets)
}

func TestRoundTripAfterEachSetter(t *testing.T) {
	ctx := context.Background()
	svc, prov := facialCleaning()
	steps := []func(*Wizard){
		func(w *Wizard) { w.SetSelection(ctx, svc, prov) },
		func(w *Wizard) { w.SetSchedule(ctx, "2025-03-10", TimeSlot{Start: "10:00", End: "10:30", DurationMinutes: 30}) },
		func(w *Wizard) {
			w.SetClient(ctx, ClientRecord{PatientID: "pat-1", FirstName: "Ana", Email: "ana@example.com", Notes: "sensitive skin"})
		},
		func(w *Wizard) { w.SetPayment(ctx, PaymentOnline, MethodCard) },
		func(w *Wizard) { w.Advance(ctx) },
	}

	store := newMemStore()
	wz := newTestWizard(t, store, nil, WithKey("k"))
	for i, step := range steps {
		step(wz)
		restored := newTestWizard(t, store, nil, WithKey("k"))
		assert.Equal(t, wz.Snapshot(), restored.Snapshot(), "round trip after step %d", i)
	}
}

func TestRestoreFallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"corrupt json", "{not json"},
		{"unknown field", `{"currentStep":2,"highestCompletedStep":1,"legacyCart":[]}`},
		{"step out of range", `{"currentStep":7,"highestCompletedStep":1}`},
		{"step zero", `{"currentStep":0,"highestCompletedStep":0}`},
		{"watermark out of range", `{"currentStep":1,"highestCompletedStep":9}`},
		{"wrong type", `{"currentStep":"two","highestCompletedStep":1}`},
		{"trailing data", `{"currentStep":1,"highestCompletedStep":0} {"x":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.data[DefaultKey] = tt.blob
			wz := newTestWizard(t, store, nil)
			assert.Equal(t, EmptyDraft(), wz.Snapshot())
		})
	}
}

func TestRestoreLogCarriesDraftKeyOnce(t *testing.T) {
	var buf bytes.Buffer
	store := newMemStore()
	store.data["booking-wizard:org-1:sess"] = "{not json"
	newTestWizard(t, store, nil,
		WithKey("booking-wizard:org-1:sess"),
		WithLogger(logging.NewWithWriter("debug", &buf)),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "wizard: discarding unreadable draft", entry["msg"])
	assert.Equal(t, "booking-wizard:org-1:sess", entry["draft_key"])
	assert.NotContains(t, entry, "key")
}

func TestRestoreSwallowsStoreErrors(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	reg := prometheus.NewRegistry()

	wz := newTestWizard(t, store, nil, WithMetrics(metrics.NewWizardMetrics(reg)))
	assert.Equal(t, EmptyDraft(), wz.Snapshot())
}

func TestMirrorFailureDoesNotSurface(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.setErr = errors.New("disk full")
	wz := newTestWizard(t, store, nil)

	svc, prov := facialCleaning()
	assert.NotPanics(t, func() { wz.SetSelection(ctx, svc, prov) })
	assert.Equal(t, 1, wz.HighestCompletedStep(), "in-memory draft still updates")
}

func TestResetClearsDraftAndStore(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	wz := newTestWizard(t, store, nil, WithKey("booking-wizard:org:sess"))

	wz.SetClient(ctx, ClientRecord{PatientID: "pat-1"})
	wz.Advance(ctx)
	require.True(t, store.has("booking-wizard:org:sess"))

	wz.Reset(ctx)
	assert.Equal(t, EmptyDraft(), wz.Snapshot())
	assert.False(t, store.has("booking-wizard:org:sess"))
}

func TestSeparateKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	a := newTestWizard(t, store, nil, WithKey(SessionKey("org-1", "a")))
	b := newTestWizard(t, store, nil, WithKey(SessionKey("org-1", "b")))

	a.SetClient(ctx, ClientRecord{PatientID: "pat-a"})
	assert.Nil(t, b.Snapshot().Client)
	assert.Nil(t, newTestWizard(t, store, nil, WithKey(SessionKey("org-1", "b"))).Snapshot().Client)
}

func TestConcurrentSettersKeepDraftConsistent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	wz := newTestWizard(t, store, nil)
	svc, prov := facialCleaning()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(4)
		go func() { defer wg.Done(); wz.SetSelection(ctx, svc, prov) }()
		go func() { defer wg.Done(); wz.SetSchedule(ctx, "2025-03-10", TimeSlot{Start: "10:00", End: "10:30"}) }()
		go func() { defer wg.Done(); wz.Advance(ctx) }()
		go func() { defer wg.Done(); wz.Retreat(ctx) }()
	}
	wg.Wait()

	restored := newTestWizard(t, store, nil)
	assert.Equal(t, wz.Snapshot(), restored.Snapshot())
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "selection", StepSelection.String())
	assert.Equal(t, "payment", StepPayment.String())
	assert.Equal(t, "step_9", Step(9).String())
}
