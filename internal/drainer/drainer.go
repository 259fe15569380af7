// Package drainer runs the leader-gated background loops that execute
// pending asynchronous tasks (payment settlement, report generation). Only
// the process holding the category's lock pulls work, and at most a fixed
// number of task executions are in flight at once.
package drainer

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/iliyamo/pos-order-api/internal/repository"
)

// Task categories drained by the task runner.
const (
	CategorySettlePayment = "settlePayment"
	CategoryCreateReport  = "createReport"
)

// TaskSource supplies ready tasks and records their outcomes. PullReady
// returns nil when no task is ready.
type TaskSource interface {
	PullReady(ctx context.Context, category string) (*repository.TaskRecord, error)
	MarkExecuted(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64, cause error) error
}

// Executor runs one task against the remote domain.
type Executor interface {
	Execute(ctx context.Context, task repository.TaskRecord) error
}

// Drainer drains one task category while this process holds the category's
// lock. Two independent periodic actions drive it: lock renewal on a slow
// tick and work polling on a fast one. The intervals are exported so tests
// can shrink them; change them before calling Run, never after.
type Drainer struct {
	Category      string
	PollInterval  time.Duration
	RenewInterval time.Duration
	LockTTL       time.Duration
	MaxInFlight   int32

	lock  Lock
	tasks TaskSource
	exec  Executor

	holding  atomic.Bool
	inFlight atomic.Int32
}

// New builds a Drainer with the production intervals: 1s polling, 10s lock
// renewal, 60s lock TTL, 10 concurrent executions.
func New(category string, lock Lock, tasks TaskSource, exec Executor) *Drainer {
	return &Drainer{
		Category:      category,
		PollInterval:  time.Second,
		RenewInterval: 10 * time.Second,
		LockTTL:       time.Minute,
		MaxInFlight:   10,
		lock:          lock,
		tasks:         tasks,
		exec:          exec,
	}
}

// Run blocks until the context is canceled. Task execution failures are
// logged and never stop the loop.
func (d *Drainer) Run(ctx context.Context) {
	d.renew(ctx)

	renew := time.NewTicker(d.RenewInterval)
	defer renew.Stop()
	poll := time.NewTicker(d.PollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-renew.C:
			d.renew(ctx)
		case <-poll.C:
			d.dispatch(ctx)
		}
	}
}

// Holding reports whether this process currently believes it is leader for
// the category.
func (d *Drainer) Holding() bool { return d.holding.Load() }

// InFlight reports the number of task executions currently running.
func (d *Drainer) InFlight() int32 { return d.inFlight.Load() }

func (d *Drainer) renew(ctx context.Context) {
	granted, err := d.lock.Acquire(ctx, d.Category, d.LockTTL)
	if err != nil {
		log.Printf("task-drainer[%s]: lock acquire failed: %v", d.Category, err)
		d.holding.Store(false)
		return
	}
	d.holding.Store(granted)
}

func (d *Drainer) dispatch(ctx context.Context) {
	if !d.holding.Load() {
		return
	}
	// admit, then reserve the slot before the goroutine starts so a burst
	// of ticks cannot overshoot the limit
	if d.inFlight.Add(1) > d.MaxInFlight {
		d.inFlight.Add(-1)
		return
	}
	go d.runOne(ctx)
}

func (d *Drainer) runOne(ctx context.Context) {
	defer d.inFlight.Add(-1)

	task, err := d.tasks.PullReady(ctx, d.Category)
	if err != nil {
		log.Printf("task-drainer[%s]: pull failed: %v", d.Category, err)
		return
	}
	if task == nil {
		return
	}

	if execErr := d.exec.Execute(ctx, *task); execErr != nil {
		log.Printf("task-drainer[%s]: task %d (%s) failed: %v", d.Category, task.ID, task.Name, execErr)
		if err := d.tasks.MarkFailed(ctx, task.ID, execErr); err != nil {
			log.Printf("task-drainer[%s]: mark failed for task %d failed: %v", d.Category, task.ID, err)
		}
		return
	}
	if err := d.tasks.MarkExecuted(ctx, task.ID); err != nil {
		log.Printf("task-drainer[%s]: mark executed for task %d failed: %v", d.Category, task.ID, err)
	}
}
