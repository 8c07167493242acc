package main

import (
	"context"
	"database/sql"
	"time"

	taskservice "worktrack/internal/task/service"
	taskstore "worktrack/internal/task/store/task"
	updatestore "worktrack/internal/task/store/update"
	dErrors "worktrack/pkg/domain-errors"
)

const defaultTaskTxTimeout = 5 * time.Second

// taskPostgresTx is the transactional boundary pairing a ledger append
// with its task projection update.
type taskPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newTaskPostgresTx(db *sql.DB) *taskPostgresTx {
	return &taskPostgresTx{db: db}
}

func (t *taskPostgresTx) RunInTx(ctx context.Context, fn func(tasks taskservice.TaskStore, updates taskservice.UpdateStore) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTaskTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(taskstore.NewPostgresTx(tx), updatestore.NewPostgresTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}
