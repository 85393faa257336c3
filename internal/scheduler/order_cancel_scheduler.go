package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/minishop-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const defaultPollSpec = "@every 30s"

// CancellationProcessor cancels orders whose payment window has closed
type CancellationProcessor interface {
	ProcessDueCancellations(ctx context.Context, now time.Time) (int, error)
}

// OrderCancelScheduler polls the cancel job table on a cron schedule
type OrderCancelScheduler struct {
	cron      *cron.Cron
	spec      string
	processor CancellationProcessor
	now       func() time.Time
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewOrderCancelScheduler creates the scheduler. An empty spec polls every 30s.
func NewOrderCancelScheduler(processor CancellationProcessor, spec string) *OrderCancelScheduler {
	if spec == "" {
		spec = defaultPollSpec
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &OrderCancelScheduler{
		// a slow poll must not overlap the next one
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:      spec,
		processor: processor,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start registers the poll job and starts the cron loop
func (s *OrderCancelScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(s.ctx); err != nil {
			logger.Error("Scheduled order cancellation failed", err)
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for order cancellation", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Order cancel scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce processes every job due at the current time
func (s *OrderCancelScheduler) RunOnce(ctx context.Context) (int, error) {
	return s.processor.ProcessDueCancellations(ctx, s.now())
}

// Stop halts scheduling and waits for a running poll to finish
func (s *OrderCancelScheduler) Stop() {
	logger.Info("Stopping order cancel scheduler...")
	<-s.cron.Stop().Done()
	s.cancel()
	logger.Info("Order cancel scheduler stopped")
}
