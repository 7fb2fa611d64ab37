package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockOutboxRepository keeps entries in memory and mimics the claim semantics
// of the GORM repository
type mockOutboxRepository struct {
	mu       sync.Mutex
	entries  map[uuid.UUID]*shared.OutboxEntry
	claimErr error
	deleted  int
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
}

func (r *mockOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *mockOutboxRepository) ClaimBatch(ctx context.Context, now time.Time, limit int) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimErr != nil {
		return nil, r.claimErr
	}
	var claimed []*shared.OutboxEntry
	for _, e := range r.sorted() {
		if len(claimed) >= limit {
			break
		}
		due := e.Status == shared.OutboxStatusFailed && e.NextRetryAt != nil && !e.NextRetryAt.After(now)
		if e.Status == shared.OutboxStatusPending || due {
			_ = e.MarkProcessing()
			claimed = append(claimed, e)
		}
	}
	return claimed, nil
}

func (r *mockOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *mockOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (r *mockOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var dead []*shared.OutboxEntry
	for _, e := range r.sorted() {
		if e.IsDead() {
			dead = append(dead, e)
		}
	}
	total := int64(len(dead))
	start := (page - 1) * pageSize
	if start >= len(dead) {
		return nil, total, nil
	}
	end := min(start+pageSize, len(dead))
	return dead[start:end], total, nil
}

func (r *mockOutboxRepository) DeleteSentBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, e := range r.entries {
		if e.Status == shared.OutboxStatusSent && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.entries, id)
			n++
		}
	}
	r.deleted += int(n)
	return n, nil
}

func (r *mockOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func (r *mockOutboxRepository) sorted() []*shared.OutboxEntry {
	list := make([]*shared.OutboxEntry, 0, len(r.entries))
	for _, e := range r.entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}

func (r *mockOutboxRepository) status(id uuid.UUID) shared.OutboxStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id].Status
}

type processorFixture struct {
	repo       *mockOutboxRepository
	bus        *InMemoryEventBus
	handler    *testHandler
	serializer *EventSerializer
	processor  *OutboxProcessor
}

func newProcessorFixture(t *testing.T) *processorFixture {
	t.Helper()
	serializer := NewEventSerializer()
	serializer.Register("TestEvent", &testEvent{})

	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)

	repo := newMockOutboxRepository()
	cfg := DefaultOutboxProcessorConfig()
	cfg.BatchSize = 10
	return &processorFixture{
		repo:       repo,
		bus:        bus,
		handler:    handler,
		serializer: serializer,
		processor:  NewOutboxProcessor(repo, bus, serializer, cfg, zap.NewNop()),
	}
}

func (f *processorFixture) enqueue(t *testing.T) *shared.OutboxEntry {
	t.Helper()
	evt := newTestEvent("TestEvent", uuid.New())
	payload, err := f.serializer.Serialize(evt)
	require.NoError(t, err)
	entry := shared.NewOutboxEntry(evt, payload)
	entry.CreatedAt = entry.CreatedAt.Add(time.Duration(len(f.repo.entries)) * time.Millisecond)
	require.NoError(t, f.repo.Save(context.Background(), entry))
	return entry
}

func TestOutboxProcessor_ProcessBatch_Delivers(t *testing.T) {
	f := newProcessorFixture(t)
	first := f.enqueue(t)
	second := f.enqueue(t)

	sent, err := f.processor.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	assert.Equal(t, shared.OutboxStatusSent, f.repo.status(first.ID))
	assert.Equal(t, shared.OutboxStatusSent, f.repo.status(second.ID))
	require.Len(t, f.handler.getHandled(), 2)
	assert.Equal(t, first.EventID, f.handler.getHandled()[0].EventID())
}

func TestOutboxProcessor_ProcessBatch_HandlerFailureSchedulesRetry(t *testing.T) {
	f := newProcessorFixture(t)
	f.handler.setError(errors.New("downstream unavailable"))
	entry := f.enqueue(t)

	sent, err := f.processor.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	stored, err := f.repo.FindByID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.OutboxStatusFailed, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Contains(t, stored.LastError, "downstream unavailable")
	require.NotNil(t, stored.NextRetryAt)
	assert.True(t, stored.NextRetryAt.After(time.Now()))

	// not due yet
	sent, err = f.processor.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, f.handler.getHandled(), 1)
}

func TestOutboxProcessor_ProcessBatch_RetryAfterBackoff(t *testing.T) {
	f := newProcessorFixture(t)
	f.handler.setError(errors.New("flaky"))
	entry := f.enqueue(t)

	_, err := f.processor.ProcessBatch(context.Background())
	require.NoError(t, err)

	past := time.Now().Add(-time.Second)
	entry.NextRetryAt = &past
	f.handler.setError(nil)

	sent, err := f.processor.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, shared.OutboxStatusSent, f.repo.status(entry.ID))
}

func TestOutboxProcessor_ProcessBatch_DeadLetter(t *testing.T) {
	f := newProcessorFixture(t)
	f.handler.setError(errors.New("permanent"))
	entry := f.enqueue(t)
	entry.MaxRetries = 1

	_, err := f.processor.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shared.OutboxStatusDead, f.repo.status(entry.ID))
}

func TestOutboxProcessor_ProcessBatch_UnknownTypeFails(t *testing.T) {
	f := newProcessorFixture(t)
	evt := newTestEvent("Unregistered", uuid.New())
	entry := shared.NewOutboxEntry(evt, []byte(`{}`))
	require.NoError(t, f.repo.Save(context.Background(), entry))

	sent, err := f.processor.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, shared.OutboxStatusFailed, f.repo.status(entry.ID))
	assert.Empty(t, f.handler.getHandled())
}

func TestOutboxProcessor_ProcessBatch_ClaimError(t *testing.T) {
	f := newProcessorFixture(t)
	f.repo.claimErr = errors.New("connection reset")

	_, err := f.processor.ProcessBatch(context.Background())
	assert.EqualError(t, err, "connection reset")
}

func TestOutboxProcessor_RetryDead(t *testing.T) {
	f := newProcessorFixture(t)
	ctx := context.Background()
	entry := f.enqueue(t)
	entry.MaxRetries = 1
	entry.MarkFailed("gave up")

	require.NoError(t, f.processor.RetryDead(ctx, entry.ID))
	assert.Equal(t, shared.OutboxStatusPending, f.repo.status(entry.ID))
	assert.Equal(t, 0, entry.RetryCount)

	err := f.processor.RetryDead(ctx, entry.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OUTBOX_NOT_DEAD", domainErr.Code)

	assert.ErrorIs(t, f.processor.RetryDead(ctx, uuid.New()), shared.ErrNotFound)
}

func TestOutboxProcessor_RetryAllDead(t *testing.T) {
	f := newProcessorFixture(t)
	f.processor.config.BatchSize = 2
	for i := 0; i < 5; i++ {
		e := f.enqueue(t)
		e.MaxRetries = 1
		e.MarkFailed("gave up")
	}
	f.enqueue(t)

	requeued, err := f.processor.RetryAllDead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, requeued)

	stats, err := f.processor.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats[shared.OutboxStatusPending])
	assert.Zero(t, stats[shared.OutboxStatusDead])
}

func TestOutboxProcessor_Cleanup(t *testing.T) {
	f := newProcessorFixture(t)
	old := f.enqueue(t)
	old.MarkSent()
	longAgo := time.Now().Add(-30 * 24 * time.Hour)
	old.ProcessedAt = &longAgo
	fresh := f.enqueue(t)
	fresh.MarkSent()

	f.processor.cleanup(context.Background())

	assert.Equal(t, 1, f.repo.deleted)
	_, err := f.repo.FindByID(context.Background(), fresh.ID)
	assert.NoError(t, err)
}

func TestOutboxProcessor_StartStop(t *testing.T) {
	f := newProcessorFixture(t)
	f.processor.config.PollInterval = 10 * time.Millisecond
	entry := f.enqueue(t)

	require.NoError(t, f.processor.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return len(f.handler.getHandled()) == 1
	}, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, f.processor.Stop(ctx))
	assert.Equal(t, shared.OutboxStatusSent, f.repo.status(entry.ID))
}
