package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/medspa-booking-wizard/internal/tenancy"
	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

// Handler serves read access to booked appointments.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("appointments: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts appointment endpoints under a tenant-scoped /appointments.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/{appointmentID}", h.GetAppointment)
}

// GetAppointment handles GET /appointments/{appointmentID}
func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenancy.OrgIDFromRequest(r)
	if !ok {
		http.Error(w, "missing org context", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "appointmentID")
	appt, err := h.service.GetAppointment(r.Context(), orgID, id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "appointment not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load appointment", "error", err, "org_id", orgID, "appointment_id", id)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}
