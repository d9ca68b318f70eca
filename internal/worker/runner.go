package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"council-vote/internal/platform/logger"
)

// Task is one periodic job run by the Runner.
type Task struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run; zero means the interval. Either way the
	// run never outlives the lease.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Runner drives tasks on independent tickers. Each run first takes the
// task's lease so that concurrent instances do not overlap.
type Runner struct {
	lease    Lease
	leaseTTL time.Duration
	logger   *zap.Logger
}

func NewRunner(lease Lease, leaseTTL time.Duration, l *zap.Logger) *Runner {
	if lease == nil {
		lease = NewLocalLease()
	}
	if leaseTTL <= 0 {
		leaseTTL = 2 * time.Minute
	}
	return &Runner{lease: lease, leaseTTL: leaseTTL, logger: logger.OrNop(l)}
}

// Run blocks until ctx is done, running every task immediately and then on
// each tick of its interval.
func (r *Runner) Run(ctx context.Context, tasks ...Task) {
	done := make(chan struct{}, len(tasks))
	for _, t := range tasks {
		go func(t Task) {
			defer func() { done <- struct{}{} }()
			r.loop(ctx, t)
		}(t)
	}
	for range tasks {
		<-done
	}
}

func (r *Runner) loop(ctx context.Context, t Task) {
	r.logger.Info("worker task started", zap.String("task", t.Name), zap.Duration("interval", t.Interval))
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	r.runOnce(ctx, t)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("worker task stopped", zap.String("task", t.Name))
			return
		case <-ticker.C:
			r.runOnce(ctx, t)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, t Task) {
	release, ok, err := r.lease.Acquire(ctx, t.Name, r.leaseTTL)
	if err != nil {
		r.logger.Warn("worker lease error", zap.String("task", t.Name), zap.Error(err))
		return
	}
	if !ok {
		r.logger.Debug("worker lease held elsewhere", zap.String("task", t.Name))
		return
	}
	defer release()

	runCtx, cancel := context.WithTimeout(ctx, r.runTimeout(t))
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("worker task panicked", zap.String("task", t.Name), zap.Any("panic", rec))
		}
	}()
	if err := t.Run(runCtx); err != nil && ctx.Err() == nil {
		r.logger.Error("worker task failed", zap.String("task", t.Name), zap.Error(err))
	}
}

func (r *Runner) runTimeout(t Task) time.Duration {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = t.Interval
	}
	if timeout <= 0 || timeout > r.leaseTTL {
		timeout = r.leaseTTL
	}
	return timeout
}
