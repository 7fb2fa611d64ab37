package event

import (
	"context"
	"fmt"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence"
	"gorm.io/gorm"
)

// OutboxRecorder writes domain events to the outbox table of one
// transaction, so an event row exists only if its business change commits.
type OutboxRecorder struct {
	repo       *GormOutboxRepository
	serializer *EventSerializer
}

// NewOutboxRecorder binds a recorder to tx
func NewOutboxRecorder(tx *gorm.DB, serializer *EventSerializer) *OutboxRecorder {
	return &OutboxRecorder{
		repo:       NewGormOutboxRepository(tx),
		serializer: serializer,
	}
}

// Record serializes events and saves them as pending outbox entries
func (r *OutboxRecorder) Record(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := r.serializer.Serialize(event)
		if err != nil {
			return fmt.Errorf("serialize %s: %w", event.EventType(), err)
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}
	return r.repo.Save(ctx, entries...)
}

// NewRecorderFactory returns the factory the transaction scope uses to give
// every write-set its own outbox recorder
func NewRecorderFactory(serializer *EventSerializer) persistence.RecorderFactory {
	return func(tx *gorm.DB) writeset.EventRecorder {
		return NewOutboxRecorder(tx, serializer)
	}
}

// Ensure OutboxRecorder implements writeset.EventRecorder
var _ writeset.EventRecorder = (*OutboxRecorder)(nil)
