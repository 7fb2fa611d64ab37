package event

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
)

// EventSerializer maps outbox event_type names to the Go types of the
// domain events so the relay can rebuild an event from its JSON payload.
type EventSerializer struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewEventSerializer creates an empty serializer
func NewEventSerializer() *EventSerializer {
	return &EventSerializer{types: make(map[string]reflect.Type)}
}

// Register binds eventType to the concrete type of prototype. Several names
// may share a type; binding one name to two types panics.
func (s *EventSerializer) Register(eventType string, prototype shared.DomainEvent) {
	t := reflect.TypeOf(prototype)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.types[eventType]; ok && prev != t {
		panic(fmt.Sprintf("event type %s already bound to %s", eventType, prev))
	}
	s.types[eventType] = t
}

// Serialize encodes a registered, company-scoped event
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	if !s.IsRegistered(event.EventType()) {
		return nil, fmt.Errorf("unknown event type: %s", event.EventType())
	}
	if event.CompanyID() == uuid.Nil {
		return nil, fmt.Errorf("event %s %s has no company", event.EventType(), event.EventID())
	}
	return json.Marshal(event)
}

// Deserialize rebuilds the event stored under eventType. The payload must
// describe an event of that same type.
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.types[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	ptr := reflect.New(t).Interface()
	if err := json.Unmarshal(data, ptr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
	}
	event, ok := ptr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("%s does not implement DomainEvent", t)
	}
	if event.EventType() != eventType {
		return nil, fmt.Errorf("payload stored as %s carries event type %q", eventType, event.EventType())
	}
	return event, nil
}

// IsRegistered reports whether eventType has a bound type
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.types[eventType]
	return ok
}

// RegisteredTypes lists the bound names in sorted order
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.types))
}
