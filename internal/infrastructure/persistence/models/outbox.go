package models

import (
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
)

// OutboxDelivery is the mutable part of an outbox row. The relay writes back
// only these columns; the event itself never changes after the write-set.
type OutboxDelivery struct {
	Status      shared.OutboxStatus `gorm:"type:varchar(20);not null;index:idx_outbox_company_status,priority:2;index:idx_outbox_status_created"`
	RetryCount  int                 `gorm:"not null;default:0"`
	MaxRetries  int                 `gorm:"not null;default:5"`
	LastError   string              `gorm:"type:text"`
	NextRetryAt *time.Time          `gorm:"index:idx_outbox_next_retry"`
	ProcessedAt *time.Time
}

// Columns is the update set for the delivery state
func (d OutboxDelivery) Columns(updatedAt time.Time) map[string]any {
	return map[string]any{
		"status":        d.Status,
		"retry_count":   d.RetryCount,
		"max_retries":   d.MaxRetries,
		"last_error":    d.LastError,
		"next_retry_at": d.NextRetryAt,
		"processed_at":  d.ProcessedAt,
		"updated_at":    updatedAt,
	}
}

// DeliveryOf extracts the delivery state of an entry
func DeliveryOf(e *shared.OutboxEntry) OutboxDelivery {
	return OutboxDelivery{
		Status:      e.Status,
		RetryCount:  e.RetryCount,
		MaxRetries:  e.MaxRetries,
		LastError:   e.LastError,
		NextRetryAt: e.NextRetryAt,
		ProcessedAt: e.ProcessedAt,
	}
}

// OutboxEventModel is one domain event recorded by a committed write-set
type OutboxEventModel struct {
	BaseModel
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;index:idx_outbox_company_status,priority:1"`
	EventID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_outbox_event_id"`
	EventType     string    `gorm:"type:varchar(255);not null"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null"`
	AggregateType string    `gorm:"type:varchar(255);not null"`
	Payload       []byte    `gorm:"type:jsonb;not null"`
	OutboxDelivery
}

func (OutboxEventModel) TableName() string {
	return "outbox_events"
}

// ToDomain converts the row to a domain OutboxEntry
func (m *OutboxEventModel) ToDomain() *shared.OutboxEntry {
	return &shared.OutboxEntry{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		Payload:       m.Payload,
		Status:        m.Status,
		RetryCount:    m.RetryCount,
		MaxRetries:    m.MaxRetries,
		LastError:     m.LastError,
		NextRetryAt:   m.NextRetryAt,
		ProcessedAt:   m.ProcessedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// OutboxEventModelFromDomain builds the row for a new entry
func OutboxEventModelFromDomain(e *shared.OutboxEntry) *OutboxEventModel {
	return &OutboxEventModel{
		BaseModel:      BaseModel{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt},
		CompanyID:      e.CompanyID,
		EventID:        e.EventID,
		EventType:      e.EventType,
		AggregateID:    e.AggregateID,
		AggregateType:  e.AggregateType,
		Payload:        e.Payload,
		OutboxDelivery: DeliveryOf(e),
	}
}
