package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

const (
	defaultBatchSize   = 25
	defaultInterval    = 2 * time.Second
	defaultMaxAttempts = 10
	maxBackoff         = 10 * time.Minute
)

// OutboxEntry is one undelivered event.
type OutboxEntry struct {
	ID        uuid.UUID
	OrgID     string
	Type      string
	Payload   json.RawMessage
	CreatedAt time.Time
	Attempts  int
}

// DeliveryHandler emits events to downstream transports.
type DeliveryHandler interface {
	Handle(ctx context.Context, entry OutboxEntry) error
}

// Execer is satisfied by pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type db interface {
	Execer
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OutboxStore persists events so they survive until a publisher accepts them.
type OutboxStore struct {
	db db
}

// NewOutboxStore accepts a *pgxpool.Pool or any compatible querier.
func NewOutboxStore(pool db) *OutboxStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return &OutboxStore{db: pool}
}

func (s *OutboxStore) Insert(ctx context.Context, orgID string, eventType string, payload any) (uuid.UUID, error) {
	return InsertTx(ctx, s.db, orgID, eventType, payload)
}

// InsertTx writes an outbox row through exec. Pass the open transaction of
// the state change the event describes so both commit together.
func InsertTx(ctx context.Context, exec Execer, orgID string, eventType string, payload any) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("events: marshal %s payload: %w", eventType, err)
	}
	id := uuid.New()
	const query = `
		INSERT INTO outbox (id, org_id, type, payload)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := exec.Exec(ctx, query, id, orgID, eventType, data); err != nil {
		return uuid.Nil, fmt.Errorf("events: insert outbox: %w", err)
	}
	return id, nil
}

// FetchPending returns due, undelivered events that have not exhausted maxAttempts.
func (s *OutboxStore) FetchPending(ctx context.Context, limit int32, maxAttempts int) ([]OutboxEntry, error) {
	const query = `
		SELECT id, org_id, type, payload, created_at, attempts
		FROM outbox
		WHERE delivered_at IS NULL
		  AND attempts < $2
		  AND next_attempt_at <= now()
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("events: fetch pending: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var entry OutboxEntry
		var payload []byte
		if err := rows.Scan(&entry.ID, &entry.OrgID, &entry.Type, &payload, &entry.CreatedAt, &entry.Attempts); err != nil {
			return nil, fmt.Errorf("events: scan outbox: %w", err)
		}
		entry.Payload = append([]byte(nil), payload...)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `
		UPDATE outbox
		SET delivered_at = now()
		WHERE id = $1 AND delivered_at IS NULL
	`
	ct, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("events: mark delivered: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// MarkFailed counts a failed attempt and pushes the next one back by retryIn.
func (s *OutboxStore) MarkFailed(ctx context.Context, id uuid.UUID, cause error, retryIn time.Duration) error {
	const query = `
		UPDATE outbox
		SET attempts = attempts + 1,
		    last_error = $2,
		    next_attempt_at = now() + make_interval(secs => $3)
		WHERE id = $1 AND delivered_at IS NULL
	`
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if _, err := s.db.Exec(ctx, query, id, msg, retryIn.Seconds()); err != nil {
		return fmt.Errorf("events: mark failed: %w", err)
	}
	return nil
}

type outboxSource interface {
	FetchPending(ctx context.Context, limit int32, maxAttempts int) ([]OutboxEntry, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, cause error, retryIn time.Duration) error
}

// Deliverer polls the outbox and hands each due event to the handler.
type Deliverer struct {
	store       outboxSource
	handler     DeliveryHandler
	logger      *logging.Logger
	batchSize   int32
	interval    time.Duration
	maxAttempts int
}

func NewDeliverer(store *OutboxStore, handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	d := newDeliverer(handler, logger)
	if store != nil {
		d.store = store
	}
	return d
}

func newDeliverer(handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		handler:     handler,
		logger:      logger,
		batchSize:   defaultBatchSize,
		interval:    defaultInterval,
		maxAttempts: defaultMaxAttempts,
	}
}

func (d *Deliverer) WithBatchSize(size int32) *Deliverer {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

// WithMaxAttempts caps retries; events that reach it stay in the table for inspection.
func (d *Deliverer) WithMaxAttempts(n int) *Deliverer {
	if n > 0 {
		d.maxAttempts = n
	}
	return d
}

// Start blocks, draining the outbox every interval until ctx is done.
func (d *Deliverer) Start(ctx context.Context) {
	if d.store == nil || d.handler == nil {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

func (d *Deliverer) drain(ctx context.Context) {
	entries, err := d.store.FetchPending(ctx, d.batchSize, d.maxAttempts)
	if err != nil {
		d.logger.Error("outbox fetch failed", "error", err)
		return
	}
	for _, entry := range entries {
		if err := d.handler.Handle(ctx, entry); err != nil {
			d.fail(ctx, entry, err)
			continue
		}
		if ok, err := d.store.MarkDelivered(ctx, entry.ID); err != nil {
			d.logger.Error("failed to mark outbox delivered", "error", err, "event_id", entry.ID)
		} else if ok {
			d.logger.Debug("outbox delivered", "event_id", entry.ID, "type", entry.Type)
		}
	}
}

func (d *Deliverer) fail(ctx context.Context, entry OutboxEntry, cause error) {
	attempt := entry.Attempts + 1
	retryIn := d.backoff(attempt)
	if attempt >= d.maxAttempts {
		d.logger.Error("outbox event parked after max attempts", "error", cause, "event_id", entry.ID, "type", entry.Type, "attempts", attempt)
	} else {
		d.logger.Warn("outbox delivery failed", "error", cause, "event_id", entry.ID, "type", entry.Type, "attempts", attempt, "retry_in", retryIn.String())
	}
	if err := d.store.MarkFailed(ctx, entry.ID, cause, retryIn); err != nil {
		d.logger.Error("failed to record outbox failure", "error", err, "event_id", entry.ID)
	}
}

// backoff doubles the poll interval per attempt, capped at maxBackoff.
func (d *Deliverer) backoff(attempt int) time.Duration {
	wait := d.interval
	for i := 1; i < attempt; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
