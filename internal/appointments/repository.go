package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfman30/medspa-booking-wizard/internal/events"
)

// Repository persists appointments.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	Get(ctx context.Context, orgID, id string) (*Appointment, error)
}

type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in Postgres and records an
// appointment.booked outbox event in the same transaction.
type PostgresRepository struct {
	db db
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository accepts a *pgxpool.Pool or any compatible querier.
func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

const uniqueViolation = "23505"

func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO appointments (
			id, org_id, patient_id, provider_id, clinic_id, procedure_id,
			scheduled_at, duration_minutes, reason, notes, price, payment_channel,
			status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = tx.Exec(ctx, query,
		appt.ID, appt.OrgID, appt.PatientID, appt.ProviderID, appt.ClinicID, appt.ProcedureID,
		appt.ScheduledAt, appt.DurationMinutes, appt.Reason, appt.Notes, appt.Price, appt.PaymentChannel,
		string(appt.Status), appt.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("appointments: insert: %w", err)
	}

	evt := bookedEvent(appt)
	if _, err := events.InsertTx(ctx, tx, appt.OrgID, events.AppointmentBookedType, evt); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("appointments: commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, orgID, id string) (*Appointment, error) {
	query := `
		SELECT id, org_id, patient_id, provider_id, clinic_id, procedure_id,
			scheduled_at, duration_minutes, reason, notes, price, payment_channel,
			status, created_at
		FROM appointments
		WHERE org_id = $1 AND id = $2
	`
	var appt Appointment
	var status string
	err := r.db.QueryRow(ctx, query, orgID, id).Scan(
		&appt.ID, &appt.OrgID, &appt.PatientID, &appt.ProviderID, &appt.ClinicID, &appt.ProcedureID,
		&appt.ScheduledAt, &appt.DurationMinutes, &appt.Reason, &appt.Notes, &appt.Price, &appt.PaymentChannel,
		&status, &appt.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: get: %w", err)
	}
	appt.Status = Status(status)
	return &appt, nil
}

func bookedEvent(appt *Appointment) events.AppointmentBookedV1 {
	return events.AppointmentBookedV1{
		EventID:         appt.ID,
		OrgID:           appt.OrgID,
		AppointmentID:   appt.ID,
		PatientID:       appt.PatientID,
		ProviderID:      appt.ProviderID,
		ClinicID:        appt.ClinicID,
		ProcedureID:     appt.ProcedureID,
		ScheduledAt:     appt.ScheduledAt.UTC(),
		DurationMinutes: appt.DurationMinutes,
		Price:           appt.Price,
		PaymentChannel:  appt.PaymentChannel,
		BookedAt:        appt.CreatedAt.UTC().Truncate(time.Millisecond),
	}
}
