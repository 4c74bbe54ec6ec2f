package appointments

import (
	"context"
	"sync"
)

// InMemoryRepository is used for development when no database is configured.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Appointment
}

var _ Repository = (*InMemoryRepository)(nil)

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[string]*Appointment)}
}

func (r *InMemoryRepository) Create(ctx context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Status == StatusBooked &&
			existing.OrgID == appt.OrgID &&
			existing.ProviderID == appt.ProviderID &&
			existing.ScheduledAt.Equal(appt.ScheduledAt) {
			return ErrSlotUnavailable
		}
	}
	copied := *appt
	r.items[appt.ID] = &copied
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, orgID, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	appt, ok := r.items[id]
	if !ok || appt.OrgID != orgID {
		return nil, ErrNotFound
	}
	copied := *appt
	return &copied, nil
}
