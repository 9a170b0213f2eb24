// Package scheduler drives the periodic engine passes. Each Runner is an
// ifrit.Runner so it can be supervised next to the HTTP server.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"auction-escrow/utils"

	"code.cloudfoundry.org/clock"
)

//go:generate mockgen -source=scheduler.go -destination=mock_leaser_test.go -package=scheduler

// Task is one pass of periodic work.
type Task func(ctx context.Context) error

// Leaser grants a time-boxed lease so only one instance runs a given tick.
type Leaser interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Runner calls its task every interval until signalled.
type Runner struct {
	name     string
	interval time.Duration
	clock    clock.Clock
	leaser   Leaser
	task     Task
}

// NewRunner builds a runner. A nil leaser runs every tick locally.
func NewRunner(name string, interval time.Duration, clk clock.Clock, leaser Leaser, task Task) *Runner {
	return &Runner{
		name:     name,
		interval: interval,
		clock:    clk,
		leaser:   leaser,
		task:     task,
	}
}

func (r *Runner) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	utils.Info("Scheduler started", map[string]any{"runner": r.name, "interval": r.interval.String()})
	close(ready)

	for {
		select {
		case sig := <-signals:
			utils.Info("Scheduler stopping", map[string]any{"runner": r.name, "signal": sig.String()})
			return nil
		case <-ticker.C():
			r.tick(ctx)
		}
	}
}

// leaseKey names the lease for the interval window containing now. Each
// window is granted once across instances.
func (r *Runner) leaseKey(now time.Time) string {
	return fmt.Sprintf("scheduler:%s:%d", r.name, now.UTC().Truncate(r.interval).Unix())
}

func (r *Runner) tick(ctx context.Context) {
	if r.leaser != nil {
		ok, err := r.leaser.Acquire(ctx, r.leaseKey(r.clock.Now()), r.interval)
		if err != nil {
			utils.Warn("Scheduler lease failed, skipping tick", map[string]any{"runner": r.name, "error": err.Error()})
			return
		}
		if !ok {
			utils.Debug("Scheduler lease held elsewhere, skipping tick", map[string]any{"runner": r.name})
			return
		}
	}

	started := r.clock.Now()
	if err := r.task(ctx); err != nil {
		utils.Error("Scheduled task failed", map[string]any{"runner": r.name, "error": err.Error()})
		return
	}
	utils.Debug("Scheduled task completed", map[string]any{"runner": r.name, "took": r.clock.Since(started).String()})
}
