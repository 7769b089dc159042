package pgutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DBTX is the subset of database/sql used by repositories. Both *sql.DB and
// *sql.Tx satisfy it, so the same repo method serves plain reads and
// transactional writes.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxOptions bounds the waits of a transaction. AcquireTimeout caps the wait
// for a pooled connection; the other two are applied with SET LOCAL once the
// connection is held. Zero values leave the defaults in place.
type TxOptions struct {
	AcquireTimeout   time.Duration
	LockTimeout      time.Duration
	StatementTimeout time.Duration
}

// WithTx runs fn inside a transaction.
// It commits if fn returns nil, otherwise it rolls back. Store-level failures
// (pool exhaustion, lock timeout, deadlock, lost connection) come back wrapped
// with apperr.ErrStoreUnavailable; errors returned by fn are otherwise preserved.
func WithTx(ctx context.Context, db *sql.DB, opts TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	conn, err := acquire(ctx, db, opts.AcquireTimeout)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", Classify(err))
	}
	defer func() { _ = conn.Close() }()

	tx, err := conn.BeginTx(ctx, nil) // default isolation level
	if err != nil {
		return fmt.Errorf("begin tx: %w", Classify(err))
	}

	defer func() {
		p := recover()
		if p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	err = applyTimeouts(ctx, tx, opts)
	if err == nil {
		err = fn(ctx, tx)
	}

	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback after fn error: %v (fn err: %w)", rbErr, Classify(err))
		}

		return Classify(err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit tx: %w", Classify(err))
	}

	return nil
}

// acquire takes a connection out of the pool, waiting at most d. The bound
// only covers the wait: the returned connection is not tied to it.
func acquire(ctx context.Context, db *sql.DB, d time.Duration) (*sql.Conn, error) {
	if d <= 0 {
		return db.Conn(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	return db.Conn(acqCtx)
}

func applyTimeouts(ctx context.Context, tx *sql.Tx, opts TxOptions) error {
	settings := []struct {
		name string
		d    time.Duration
	}{
		{"lock_timeout", opts.LockTimeout},
		{"statement_timeout", opts.StatementTimeout},
	}

	for _, s := range settings {
		if s.d <= 0 {
			continue
		}

		// set_config(..., true) is SET LOCAL: reverts at commit/rollback.
		_, err := tx.ExecContext(ctx, `SELECT set_config($1, $2, true)`, s.name, fmt.Sprintf("%dms", s.d.Milliseconds()))
		if err != nil {
			slog.WarnContext(ctx, "failed to apply transaction timeout", "setting", s.name, "error", err)

			return fmt.Errorf("set %s: %w", s.name, err)
		}
	}

	return nil
}
