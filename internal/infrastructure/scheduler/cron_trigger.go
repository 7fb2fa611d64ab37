package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/erp/accounting/internal/domain/asset"
	"github.com/erp/accounting/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CronTriggerConfig holds the wall-clock schedule of the periodic runs
type CronTriggerConfig struct {
	// DepreciationDay is the day of month (1-28) the previous month is booked
	DepreciationDay  int
	DepreciationHour int
	// OverdueHour is the hour the daily overdue sweep runs
	OverdueHour int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
	RetryAttempts int
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		DepreciationDay:  1,
		DepreciationHour: 1,
		OverdueHour:      2,
		CheckInterval:    time.Minute,
		RetryAttempts:    3,
	}
}

// CronTriggerConfigFrom maps the scheduler section of the application config
func CronTriggerConfigFrom(cfg config.SchedulerConfig) CronTriggerConfig {
	out := CronTriggerConfig{
		DepreciationDay:  cfg.DepreciationDay,
		DepreciationHour: cfg.DepreciationHour,
		OverdueHour:      cfg.OverdueHour,
		CheckInterval:    cfg.CheckInterval,
		RetryAttempts:    cfg.RetryAttempts,
	}
	if out.DepreciationDay < 1 || out.DepreciationDay > 28 {
		out.DepreciationDay = 1
	}
	if out.CheckInterval <= 0 {
		out.CheckInterval = time.Minute
	}
	return out
}

// CronTrigger submits the monthly depreciation run and the daily overdue
// sweep when their hour comes around. Each run fires at most once per
// calendar key, so a slow tick or restart inside the hour does not double it.
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler *Scheduler
	logger    *zap.Logger
	now       func() time.Time

	cancel           context.CancelFunc
	wg               sync.WaitGroup
	mu               sync.Mutex
	isRunning        bool
	lastDepreciation string // period last submitted
	lastOverdue      string // date last submitted
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(config CronTriggerConfig, scheduler *Scheduler, logger *zap.Logger) *CronTrigger {
	return &CronTrigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("depreciation_day", c.config.DepreciationDay),
		zap.Int("depreciation_hour", c.config.DepreciationHour),
		zap.Int("overdue_hour", c.config.OverdueHour),
		zap.Duration("check_interval", c.config.CheckInterval),
	)
	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger()
		}
	}
}

// checkAndTrigger submits whichever runs are due at the current time
func (c *CronTrigger) checkAndTrigger() {
	now := c.now()

	if now.Day() == c.config.DepreciationDay && now.Hour() == c.config.DepreciationHour {
		period := PreviousPeriod(now)
		if c.claim(&c.lastDepreciation, period) {
			c.submit(NewDepreciationJob(period, c.config.RetryAttempts))
		}
	}

	if now.Hour() == c.config.OverdueHour {
		day := now.Format(time.DateOnly)
		if c.claim(&c.lastOverdue, day) {
			c.submit(NewOverdueJob(now, c.config.RetryAttempts))
		}
	}
}

func (c *CronTrigger) claim(last *string, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if *last == key {
		return false
	}
	*last = key
	return true
}

func (c *CronTrigger) submit(job *Job) {
	if err := c.scheduler.SubmitJob(job); err != nil {
		c.logger.Error("Failed to submit scheduled job",
			zap.String("job_type", string(job.Type)),
			zap.String("period", job.Period),
			zap.Error(err),
		)
		return
	}
	c.logger.Info("Scheduled job submitted",
		zap.String("job_type", string(job.Type)),
		zap.String("period", job.Period),
	)
}

// TriggerDepreciation submits a depreciation run for period out of schedule
func (c *CronTrigger) TriggerDepreciation(period string) error {
	if _, err := asset.ParsePeriod(period); err != nil {
		return err
	}
	return c.scheduler.SubmitJob(NewDepreciationJob(period, c.config.RetryAttempts))
}

// TriggerOverdue submits an overdue sweep as of asOf out of schedule
func (c *CronTrigger) TriggerOverdue(asOf time.Time) error {
	return c.scheduler.SubmitJob(NewOverdueJob(asOf, c.config.RetryAttempts))
}

// PreviousPeriod returns the YYYY-MM period of the month before t
func PreviousPeriod(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, -1, 0).Format(asset.PeriodLayout)
}
