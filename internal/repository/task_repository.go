// Package repository provides data access to the tasks table the remote
// domain queues asynchronous work into. The drainer is the only consumer;
// it claims one ready task at a time and records the outcome.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Task statuses. A task moves READY -> RUNNING -> EXECUTED, or back to
// READY on failure while tries remain, or to ABORTED when they run out.
const (
	TaskStatusReady    = "READY"
	TaskStatusRunning  = "RUNNING"
	TaskStatusExecuted = "EXECUTED"
	TaskStatusAborted  = "ABORTED"
)

// TaskRecord represents one row of the tasks table.
type TaskRecord struct {
	ID             uint64          // tasks.id
	Category       string          // tasks.category
	Name           string          // tasks.name
	Data           json.RawMessage // tasks.data
	Status         string          // tasks.status
	RunsAt         time.Time       // tasks.runs_at
	RemainingTries int             // tasks.remaining_tries
	LastTriedAt    *time.Time      // tasks.last_tried_at (nullable)
	ExecutedAt     *time.Time      // tasks.executed_at (nullable)
}

// TaskRepo provides data access to the tasks table.
type TaskRepo struct {
	db *sql.DB
}

// NewTaskRepo returns a TaskRepo bound to the provided database.
func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{db: db} }

// PullReady claims the oldest ready task of the given category: the row is
// locked, moved to RUNNING and its remaining tries decremented, all within
// one transaction so two drainer processes cannot claim the same row.
// Returns nil when no task is ready.
func (r *TaskRepo) PullReady(ctx context.Context, category string) (*TaskRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `SELECT id, category, name, data, status, runs_at, remaining_tries
	           FROM tasks
	           WHERE category = ? AND status = ? AND runs_at <= UTC_TIMESTAMP()
	           ORDER BY runs_at
	           LIMIT 1
	           FOR UPDATE`
	var t TaskRecord
	err = tx.QueryRowContext(ctx, q, category, TaskStatusReady).
		Scan(&t.ID, &t.Category, &t.Name, &t.Data, &t.Status, &t.RunsAt, &t.RemainingTries)
	if err == sql.ErrNoRows {
		return nil, tx.Commit()
	}
	if err != nil {
		return nil, err
	}

	const claim = `UPDATE tasks
	               SET status = ?, remaining_tries = remaining_tries - 1, last_tried_at = UTC_TIMESTAMP()
	               WHERE id = ?`
	if _, err := tx.ExecContext(ctx, claim, TaskStatusRunning, t.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	t.Status = TaskStatusRunning
	t.RemainingTries--
	return &t, nil
}

// MarkExecuted records a successful execution.
func (r *TaskRepo) MarkExecuted(ctx context.Context, id uint64) error {
	const q = `UPDATE tasks SET status = ?, executed_at = UTC_TIMESTAMP() WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, TaskStatusExecuted, id)
	return err
}

// MarkFailed records a failed execution: the task returns to READY while
// tries remain (delayed one minute to avoid hot-looping a broken task) and
// is aborted once they run out.
func (r *TaskRepo) MarkFailed(ctx context.Context, id uint64, cause error) error {
	const q = `UPDATE tasks
	           SET status = IF(remaining_tries > 0, ?, ?),
	               runs_at = UTC_TIMESTAMP() + INTERVAL 1 MINUTE,
	               last_error = ?
	           WHERE id = ?`
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	_, err := r.db.ExecContext(ctx, q, TaskStatusReady, TaskStatusAborted, message, id)
	return err
}
