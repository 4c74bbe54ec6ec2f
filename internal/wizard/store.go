package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/wolfman30/medspa-booking-wizard/internal/observability/metrics"
	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

// DefaultKey is the store slot used when a wizard is built without WithKey.
const DefaultKey = "booking-wizard:draft"

// Store is the durable key-value slot the draft is mirrored to.
// Get reports found=false for an absent key.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// SessionKey scopes a draft slot to one tenant and wizard session.
func SessionKey(orgID, sessionID string) string {
	return fmt.Sprintf("booking-wizard:%s:%s", orgID, sessionID)
}

// bridge mirrors whole drafts to a Store under one key.
type bridge struct {
	store   Store
	key     string
	logger  *logging.Logger
	metrics *metrics.WizardMetrics
}

// restore never fails: anything other than a well-formed blob yields an empty draft.
func (b *bridge) restore(ctx context.Context) Draft {
	raw, found, err := b.store.Get(ctx, b.key)
	if err != nil {
		b.logger.Warn("wizard: draft restore failed", "error", err)
		b.metrics.ObserveRestore("error")
		return EmptyDraft()
	}
	if !found {
		b.metrics.ObserveRestore("empty")
		return EmptyDraft()
	}
	draft, err := decodeDraft([]byte(raw))
	if err != nil {
		b.logger.Warn("wizard: discarding unreadable draft", "error", err)
		b.metrics.ObserveRestore("discarded")
		return EmptyDraft()
	}
	b.metrics.ObserveRestore("restored")
	return draft
}

func (b *bridge) mirror(ctx context.Context, d Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("wizard: encode draft: %w", err)
	}
	if err := b.store.Set(ctx, b.key, string(data)); err != nil {
		return fmt.Errorf("wizard: mirror draft: %w", err)
	}
	return nil
}

func (b *bridge) clear(ctx context.Context) error {
	if err := b.store.Remove(ctx, b.key); err != nil {
		return fmt.Errorf("wizard: clear draft: %w", err)
	}
	return nil
}

// decodeDraft rejects blobs whose shape drifted from Draft.
func decodeDraft(data []byte) (Draft, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var d Draft
	if err := dec.Decode(&d); err != nil {
		return Draft{}, fmt.Errorf("wizard: decode draft: %w", err)
	}
	if dec.More() {
		return Draft{}, fmt.Errorf("wizard: decode draft: trailing data")
	}
	if !d.CurrentStep.Valid() {
		return Draft{}, fmt.Errorf("wizard: decode draft: current step %d out of range", d.CurrentStep)
	}
	if d.HighestCompletedStep < 0 || d.HighestCompletedStep > int(lastStep) {
		return Draft{}, fmt.Errorf("wizard: decode draft: completed step %d out of range", d.HighestCompletedStep)
	}
	return d, nil
}
