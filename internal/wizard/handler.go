package wizard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/medspa-booking-wizard/internal/observability/metrics"
	"github.com/wolfman30/medspa-booking-wizard/internal/tenancy"
	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

// Handler exposes booking wizard sessions over HTTP. Each request rebuilds
// the session's wizard from the store, so any replica can serve it.
type Handler struct {
	store   Store
	creator AppointmentCreator
	logger  *logging.Logger
	metrics *metrics.WizardMetrics
	opts    []Option
}

// NewHandler creates a wizard HTTP handler. opts apply to every session wizard.
func NewHandler(store Store, creator AppointmentCreator, logger *logging.Logger, m *metrics.WizardMetrics, opts ...Option) *Handler {
	if store == nil {
		panic("wizard: store required")
	}
	if creator == nil {
		panic("wizard: appointment creator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, creator: creator, logger: logger, metrics: m, opts: opts}
}

// RegisterRoutes mounts wizard endpoints under a chi router.
// Expected to be mounted under a tenant-scoped /booking-wizard.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.StartSession)
	r.Route("/{sessionID}", func(s chi.Router) {
		s.Get("/", h.GetState)
		s.Delete("/", h.ResetSession)
		s.Put("/selection", h.PutSelection)
		s.Put("/schedule", h.PutSchedule)
		s.Put("/client", h.PutClient)
		s.Put("/payment", h.PutPayment)
		s.Post("/advance", h.Advance)
		s.Post("/retreat", h.Retreat)
		s.Post("/goto", h.GoTo)
		s.Post("/finalize", h.Finalize)
	})
}

// StateResponse is returned by every endpoint that reads or mutates a session.
type StateResponse struct {
	SessionID     string   `json:"sessionId"`
	Draft         Draft    `json:"draft"`
	Summary       *Summary `json:"summary"`
	UnlockedSteps []Step   `json:"unlockedSteps"`
}

type selectionRequest struct {
	Service  ServiceItem `json:"service"`
	Provider ProviderRef `json:"provider"`
}

type scheduleRequest struct {
	Date string   `json:"date"`
	Slot TimeSlot `json:"slot"`
}

type paymentRequest struct {
	Channel PaymentChannel `json:"channel"`
	Method  PaymentMethod  `json:"method,omitempty"`
}

type gotoRequest struct {
	Step Step `json:"step"`
}

// FinalizeResponse is returned by POST /finalize.
type FinalizeResponse struct {
	AppointmentID string   `json:"appointmentId,omitempty"`
	Error         string   `json:"error,omitempty"`
	Missing       []string `json:"missing,omitempty"`
}

// StartSession handles POST /booking-wizard
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	if _, ok := tenancy.OrgIDFromRequest(r); !ok {
		http.Error(w, "missing org context", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": uuid.NewString()})
}

// GetState handles GET /booking-wizard/{sessionID}
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	wz, sessionID, ok := h.resume(w, r)
	if !ok {
		return
	}
	h.respondState(w, http.StatusOK, sessionID, wz)
}

// ResetSession handles DELETE /booking-wizard/{sessionID}
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	wz, sessionID, ok := h.load(w, r)
	if !ok {
		return
	}
	wz.Reset(r.Context())
	h.respondState(w, http.StatusOK, sessionID, wz)
}

func (h *Handler) PutSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	wz, sessionID, ok := h.load(w, r)
	if !ok {
		return
	}
	wz.SetSelection(r.Context(), req.Service, req.Provider)
	h.respondState(w, http.StatusOK, sessionID, wz)
}

func (h *Handler) PutSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !h.decode(w, r, &req) {
		return
	}
	wz, sessionID, ok := h.load(w, r)
	if !ok {
		return
	}
	wz.SetSchedule(r.Context(), req.Date, req.Slot)
	h.respondState(w, http.StatusOK, sessionID, wz)
}

func (h *Handler) PutClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRecord
	if !h.decode(w, r, &req) {
		return
	}
	wz, sessionID, ok := h.load(w, r)
	if !ok {
		return
	}
	wz.SetClient(r.Context(), req)
	h.respondState(w, http.StatusOK, sessionID, wz)
}

func (h *Handler) PutPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Channel != PaymentOnline && req.Channel != PaymentAtLocation {
		http.Error(w, "unknown payment channel", http.StatusBadRequest)
		return
	}
	wz, sessionID, ok := h.load(w, r)
	if !ok {
		return
	}
	wz.SetPayment(r.Context(), req.Channel, req.Method)
	h.respondState(w, http.StatusOK, sessionID, wz)
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	wz, sessionID, ok := h.load(w, r)
	if !ok {
		return
	}
	wz.Advance(r.Context())
	h.respondState(w, http.StatusOK, sessionID, wz)
}

func (h *Handler) Retreat(w http.ResponseWriter, r *http.Request) {
	wz, sessionID, ok := h.load(w, r)
	if !ok {
		return
	}
	wz.Retreat(r.Context())
	h.respondState(w, http.StatusOK, sessionID, wz)
}

// GoTo handles POST /booking-wizard/{sessionID}/goto. Locked steps are refused.
func (h *Handler) GoTo(w http.ResponseWriter, r *http.Request) {
	var req gotoRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Step.Valid() {
		http.Error(w, "step must be between 1 and 4", http.StatusBadRequest)
		return
	}
	wz, sessionID, ok := h.load(w, r)
	if !ok {
		return
	}
	if !wz.IsStepUnlocked(req.Step) {
		http.Error(w, "step is locked", http.StatusConflict)
		return
	}
	wz.GoToStep(r.Context(), req.Step)
	h.respondState(w, http.StatusOK, sessionID, wz)
}

// Finalize handles POST /booking-wizard/{sessionID}/finalize
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	wz, sessionID, ok := h.load(w, r)
	if !ok {
		return
	}
	result, err := wz.Finalize(r.Context())
	if err != nil {
		var incomplete *IncompleteDraftError
		if errors.As(err, &incomplete) {
			writeJSON(w, http.StatusUnprocessableEntity, FinalizeResponse{
				Error:   "draft incomplete",
				Missing: incomplete.Missing,
			})
			return
		}
		if errors.Is(err, ErrCommitInProgress) {
			writeJSON(w, http.StatusConflict, FinalizeResponse{Error: "booking is already being submitted"})
			return
		}
		h.logger.Error("wizard handler: finalize", "error", err, "session_id", sessionID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !result.Success {
		h.logger.Warn("wizard handler: commit rejected", "error", result.Err, "session_id", sessionID)
		status := http.StatusBadGateway
		if errors.Is(result.Err, ErrInvalidSchedule) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, FinalizeResponse{Error: "appointment could not be created"})
		return
	}
	h.logger.Info("booking wizard finalized", "session_id", sessionID, "appointment_id", result.AppointmentID)
	writeJSON(w, http.StatusCreated, FinalizeResponse{AppointmentID: result.AppointmentID})
}

// load rebuilds the session's wizard from the store. Only resume, the GET that
// clients issue when picking a session back up, counts as a restore.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Wizard, string, bool) {
	return h.loadSession(w, r, false)
}

func (h *Handler) resume(w http.ResponseWriter, r *http.Request) (*Wizard, string, bool) {
	return h.loadSession(w, r, true)
}

func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request, resume bool) (*Wizard, string, bool) {
	orgID, ok := tenancy.OrgIDFromRequest(r)
	if !ok {
		http.Error(w, "missing org context", http.StatusBadRequest)
		return nil, "", false
	}
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := uuid.Parse(sessionID); err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return nil, "", false
	}

	opts := make([]Option, 0, len(h.opts)+4)
	opts = append(opts, h.opts...)
	opts = append(opts,
		WithKey(SessionKey(orgID, sessionID)),
		WithOrgID(orgID),
		WithLogger(h.logger.With("org_id", orgID, "session_id", sessionID)),
		WithMetrics(h.metrics),
	)
	if !resume {
		opts = append(opts, withQuietRestore())
	}
	return New(r.Context(), h.store, h.creator, opts...), sessionID, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) respondState(w http.ResponseWriter, status int, sessionID string, wz *Wizard) {
	writeJSON(w, status, StateResponse{
		SessionID:     sessionID,
		Draft:         wz.Snapshot(),
		Summary:       wz.Summary(),
		UnlockedSteps: wz.UnlockedSteps(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
