package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medspa-booking-wizard/internal/tenancy"
)

func newAppointmentsRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	r.Route("/appointments", NewHandler(svc, nil).RegisterRoutes)
	return r
}

func TestHandlerGetAppointment(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil)
	appt, err := svc.CreateAppointment(context.Background(), validRequest())
	require.NoError(t, err)
	router := newAppointmentsRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/appointments/"+appt.ID, nil)
	req.Header.Set(tenancy.OrgHeader, "org-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got Appointment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, appt.ID, got.ID)
	assert.Equal(t, "prov-1", got.ProviderID)
}

func TestHandlerGetAppointmentStatuses(t *testing.T) {
	tests := []struct {
		name string
		repo Repository
		org  string
		want int
	}{
		{"missing org", NewInMemoryRepository(), "", http.StatusBadRequest},
		{"not found", NewInMemoryRepository(), "org-1", http.StatusNotFound},
		{"repository error", failingRepo{err: errors.New("db down")}, "org-1", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAppointmentsRouter(NewService(tt.repo, nil, nil))
			req := httptest.NewRequest(http.MethodGet, "/appointments/abc", nil)
			if tt.org != "" {
				req.Header.Set(tenancy.OrgHeader, tt.org)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
