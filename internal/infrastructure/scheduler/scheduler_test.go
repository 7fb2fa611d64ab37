package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	assetapp "github.com/erp/accounting/internal/application/asset"
	financeapp "github.com/erp/accounting/internal/application/finance"
	"github.com/erp/accounting/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDepreciation struct {
	mu      sync.Mutex
	periods []string
	results []assetapp.RunSummary
	err     error
}

func (f *fakeDepreciation) RunDue(ctx context.Context, period string) (assetapp.RunSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.periods = append(f.periods, period)
	if f.err != nil {
		return assetapp.RunSummary{}, f.err
	}
	summary := assetapp.RunSummary{Period: period}
	if len(f.results) > 0 {
		summary = f.results[0]
		f.results = f.results[1:]
	}
	return summary, nil
}

func (f *fakeDepreciation) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.periods...)
}

type fakeOverdue struct {
	mu   sync.Mutex
	asOf []time.Time
}

func (f *fakeOverdue) Sweep(ctx context.Context, asOf time.Time) (financeapp.OverdueSweepResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asOf = append(f.asOf, asOf)
	return financeapp.OverdueSweepResult{Scanned: 1, Marked: 1}, nil
}

func (f *fakeOverdue) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.asOf)
}

func testSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 1,
		JobTimeout:        time.Second,
		RetryAttempts:     2,
		RetryDelay:        time.Millisecond,
	}
}

func startScheduler(t *testing.T, executor JobExecutor) (*Scheduler, <-chan *Job) {
	t.Helper()
	s := NewScheduler(testSchedulerConfig(), executor, zap.NewNop())
	finished := make(chan *Job, 10)
	s.OnFinished(func(j *Job) { finished <- j })
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s, finished
}

func waitJob(t *testing.T, finished <-chan *Job) *Job {
	t.Helper()
	select {
	case j := <-finished:
		return j
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
		return nil
	}
}

func TestScheduler_RunsDepreciationJob(t *testing.T) {
	dep := &fakeDepreciation{}
	s, finished := startScheduler(t, NewAccountingExecutor(dep, &fakeOverdue{}, zap.NewNop()))

	require.NoError(t, s.SubmitJob(NewDepreciationJob("2026-03", 2)))

	job := waitJob(t, finished)
	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.Equal(t, []string{"2026-03"}, dep.calls())
}

func TestScheduler_RetriesFailedAssets(t *testing.T) {
	dep := &fakeDepreciation{results: []assetapp.RunSummary{
		{Period: "2026-03", Scanned: 3, Posted: 2, Failed: 1},
		{Period: "2026-03", Scanned: 1, Posted: 1},
	}}
	s, finished := startScheduler(t, NewAccountingExecutor(dep, &fakeOverdue{}, zap.NewNop()))

	require.NoError(t, s.SubmitJob(NewDepreciationJob("2026-03", 2)))

	job := waitJob(t, finished)
	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.Len(t, dep.calls(), 2)
}

func TestScheduler_GivesUpAfterRetries(t *testing.T) {
	dep := &fakeDepreciation{err: errors.New("database unavailable")}
	s, finished := startScheduler(t, NewAccountingExecutor(dep, &fakeOverdue{}, zap.NewNop()))

	require.NoError(t, s.SubmitJob(NewDepreciationJob("2026-03", 2)))

	job := waitJob(t, finished)
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "database unavailable", job.Error)
	assert.Len(t, dep.calls(), 3)
}

func TestScheduler_RunsOverdueJob(t *testing.T) {
	overdue := &fakeOverdue{}
	s, finished := startScheduler(t, NewAccountingExecutor(&fakeDepreciation{}, overdue, zap.NewNop()))
	asOf := time.Date(2026, 4, 2, 2, 0, 0, 0, time.UTC)

	require.NoError(t, s.SubmitJob(NewOverdueJob(asOf, 0)))

	assert.Equal(t, JobStatusSuccess, waitJob(t, finished).Status)
	assert.Equal(t, 1, overdue.count())
}

func TestScheduler_UnknownJobType(t *testing.T) {
	s, finished := startScheduler(t, NewAccountingExecutor(&fakeDepreciation{}, &fakeOverdue{}, zap.NewNop()))

	require.NoError(t, s.SubmitJob(&Job{Type: "REPORT", Status: JobStatusPending}))

	job := waitJob(t, finished)
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Contains(t, job.Error, ErrUnknownJobType.Error())
}

func TestScheduler_SubmitWhenStopped(t *testing.T) {
	s := NewScheduler(testSchedulerConfig(), NewAccountingExecutor(&fakeDepreciation{}, &fakeOverdue{}, zap.NewNop()), zap.NewNop())
	assert.ErrorIs(t, s.SubmitJob(NewDepreciationJob("2026-01", 0)), ErrSchedulerNotRunning)
	assert.False(t, s.IsRunning())
}

func TestSchedulerConfigFrom(t *testing.T) {
	cfg := SchedulerConfigFrom(config.SchedulerConfig{Enabled: true, RetryAttempts: 5})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, DefaultSchedulerConfig().MaxConcurrentJobs, cfg.MaxConcurrentJobs)
	assert.Equal(t, DefaultSchedulerConfig().JobTimeout, cfg.JobTimeout)
}

func TestPreviousPeriod(t *testing.T) {
	assert.Equal(t, "2026-03", PreviousPeriod(time.Date(2026, 4, 1, 1, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-12", PreviousPeriod(time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)))
}

func TestCronTrigger_FiresOncePerKey(t *testing.T) {
	dep := &fakeDepreciation{}
	overdue := &fakeOverdue{}
	s, finished := startScheduler(t, NewAccountingExecutor(dep, overdue, zap.NewNop()))

	trigger := NewCronTrigger(DefaultCronTriggerConfig(), s, zap.NewNop())
	clock := time.Date(2026, 4, 1, 1, 0, 0, 0, time.UTC)
	trigger.now = func() time.Time { return clock }

	trigger.checkAndTrigger()
	trigger.checkAndTrigger()
	waitJob(t, finished)
	assert.Equal(t, []string{"2026-03"}, dep.calls())

	clock = time.Date(2026, 4, 1, 2, 30, 0, 0, time.UTC)
	trigger.checkAndTrigger()
	trigger.checkAndTrigger()
	waitJob(t, finished)
	assert.Equal(t, 1, overdue.count())

	clock = time.Date(2026, 4, 2, 2, 0, 0, 0, time.UTC)
	trigger.checkAndTrigger()
	waitJob(t, finished)
	assert.Equal(t, 2, overdue.count())
	assert.Len(t, dep.calls(), 1)
}

func TestCronTrigger_ManualTriggers(t *testing.T) {
	dep := &fakeDepreciation{}
	s, finished := startScheduler(t, NewAccountingExecutor(dep, &fakeOverdue{}, zap.NewNop()))
	trigger := NewCronTrigger(CronTriggerConfigFrom(config.SchedulerConfig{DepreciationDay: 40}), s, zap.NewNop())

	assert.Equal(t, 1, trigger.config.DepreciationDay)
	assert.Error(t, trigger.TriggerDepreciation("March"))

	require.NoError(t, trigger.TriggerDepreciation("2026-02"))
	waitJob(t, finished)
	assert.Equal(t, []string{"2026-02"}, dep.calls())

	require.NoError(t, trigger.TriggerOverdue(time.Now()))
	assert.Equal(t, JobStatusSuccess, waitJob(t, finished).Status)
}

func TestCronTrigger_StartStop(t *testing.T) {
	s, _ := startScheduler(t, NewAccountingExecutor(&fakeDepreciation{}, &fakeOverdue{}, zap.NewNop()))
	cfg := DefaultCronTriggerConfig()
	cfg.CheckInterval = 5 * time.Millisecond
	trigger := NewCronTrigger(cfg, s, zap.NewNop())

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(ctx))
	require.NoError(t, trigger.Stop(ctx))
}
