package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner removes expired entries from the disk layer on a schedule.
// The disk layer only drops expired rows lazily on read, so without
// pruning a long-lived database accumulates rows nothing will read
// again.
type Pruner struct {
	store    *DiskStore
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	mu       sync.Mutex
	running  bool
}

// NewPruner creates a pruner for the disk store using the given cron
// schedule expression.
func NewPruner(store *DiskStore, schedule string, logger *slog.Logger) *Pruner {
	return &Pruner{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start begins scheduled pruning. If the schedule is empty, Start does
// nothing. The pruner stops when ctx is cancelled or Stop is called.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schedule == "" {
		p.logger.Info("prune schedule not configured, skipping pruner")
		return nil
	}

	if _, err := cron.ParseStandard(p.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.schedule, err)
	}

	_, err := p.cron.AddFunc(p.schedule, func() {
		p.runPrune(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("cache pruner started", "schedule", p.schedule)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// runPrune executes one pruning cycle.
func (p *Pruner) runPrune(ctx context.Context) {
	removed, err := p.store.DeleteExpired(ctx)
	if err != nil {
		p.logger.Error("scheduled cache prune failed", "error", err)
		return
	}

	if removed > 0 {
		p.logger.Info("scheduled cache prune completed", "removed", removed)
	} else {
		p.logger.Debug("scheduled cache prune completed, nothing to remove")
	}
}

// Stop stops the scheduler and waits for a running prune to complete.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron != nil && p.running {
		ctx := p.cron.Stop()
		<-ctx.Done()
		p.running = false
		p.logger.Info("cache pruner stopped")
	}
}

// NextRun returns the next scheduled prune time, or zero when the
// pruner is not running.
func (p *Pruner) NextRun() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
