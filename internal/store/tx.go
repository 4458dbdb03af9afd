package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrTxExhausted indicates a transaction kept conflicting after the maximum
// number of attempts. The wrapped error is the last conflict observed.
var ErrTxExhausted = errors.New("store: transaction retries exhausted")

const defaultTxBackoff = 10 * time.Millisecond

// TxRunner executes closures as serializable transactions with bounded
// automatic retry on serialization failures. Callers express a plain
// read-check-write sequence; the runner owns begin/commit/rollback and the
// retry loop.
type TxRunner struct {
	pool        *pgxpool.Pool
	maxAttempts int
	backoff     time.Duration
	logger      *zap.SugaredLogger
	onRetry     func()
}

// NewTxRunner constructs a TxRunner. maxAttempts must be at least 1. onRetry,
// if non-nil, is invoked once per retried attempt (an observability hook).
func NewTxRunner(pool *pgxpool.Pool, maxAttempts int, logger *zap.SugaredLogger, onRetry func()) *TxRunner {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &TxRunner{
		pool:        pool,
		maxAttempts: maxAttempts,
		backoff:     defaultTxBackoff,
		logger:      logger,
		onRetry:     onRetry,
	}
}

// Serializable runs fn inside a serializable transaction. Errors returned by
// fn abort the transaction and surface unchanged; only serialization
// conflicts are retried. After maxAttempts conflicts the last error is
// wrapped in ErrTxExhausted.
func (r *TxRunner) Serializable(ctx context.Context, fn func(pgx.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		lastErr = err
		if attempt < r.maxAttempts {
			if r.onRetry != nil {
				r.onRetry()
			}
			r.logger.Debugw("store: retrying serializable transaction",
				"attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.backoff * time.Duration(attempt)):
			}
		}
	}
	return fmt.Errorf("%w: %w", ErrTxExhausted, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isSerializationFailure reports whether err is a Postgres serialization
// failure (40001) or deadlock (40P01), both safe to retry.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
