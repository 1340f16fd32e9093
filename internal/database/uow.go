package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrResourceUnavailable is returned when no connection could be taken
// from the pool in time, or the pool is closed. It is returned even when
// the caller's own deadline expired first.
var ErrResourceUnavailable = errors.New("database unavailable")

// DefaultAcquireTimeout bounds the wait for a pooled connection.
const DefaultAcquireTimeout = 5 * time.Second

// Pool hands out dedicated connections. *sql.DB satisfies it.
type Pool interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Session is the single live transaction a unit of work body runs on.
// Statements issued through one Session execute in order on the same
// connection and see each other's uncommitted writes.
type Session struct {
	tx *sql.Tx
}

func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.tx.ExecContext(ctx, query, args...)
}

func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.tx.QueryContext(ctx, query, args...)
}

func (s *Session) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return s.tx.QueryRowContext(ctx, query, args...)
}

// UnitOfWork runs business operations atomically, one borrowed connection
// per call.
type UnitOfWork struct {
	pool           Pool
	acquireTimeout time.Duration
	log            zerolog.Logger
}

// NewUnitOfWork binds a unit of work to pool. A non-positive
// acquireTimeout falls back to DefaultAcquireTimeout.
func NewUnitOfWork(pool Pool, acquireTimeout time.Duration, log zerolog.Logger) *UnitOfWork {
	if acquireTimeout <= 0 {
		acquireTimeout = DefaultAcquireTimeout
	}
	return &UnitOfWork{pool: pool, acquireTimeout: acquireTimeout, log: log.With().Str("component", "uow").Logger()}
}

// Do executes work exactly once inside a transaction. The transaction is
// committed when work returns nil and rolled back otherwise; the connection
// goes back to the pool on every exit path, including panics.
func (u *UnitOfWork) Do(ctx context.Context, work func(s *Session) error) error {
	conn, err := u.acquire(ctx)
	if err != nil {
		return err
	}
	defer u.release(conn)

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w: %w", ErrResourceUnavailable, err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		// work panicked
		if rbErr := tx.Rollback(); rbErr != nil {
			u.log.Error().Err(rbErr).Msg("rollback after panic failed")
		}
	}()

	if werr := work(&Session{tx: tx}); werr != nil {
		done = true
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			u.log.Error().Err(rbErr).AnErr("cause", werr).Msg("rollback failed")
			return errors.Join(werr, fmt.Errorf("rollback: %w", rbErr))
		}
		return werr
	}

	done = true
	if cerr := tx.Commit(); cerr != nil {
		return fmt.Errorf("commit: %w: %w", ErrResourceUnavailable, cerr)
	}
	return nil
}

// Within is Do for bodies that produce a value. On failure the zero value
// of T is returned.
func Within[T any](ctx context.Context, u *UnitOfWork, work func(s *Session) (T, error)) (T, error) {
	var out T
	err := u.Do(ctx, func(s *Session) error {
		v, err := work(s)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (u *UnitOfWork) acquire(ctx context.Context) (*sql.Conn, error) {
	actx, cancel := context.WithTimeout(ctx, u.acquireTimeout)
	defer cancel()
	conn, err := u.pool.Conn(actx)
	if err != nil {
		// a caller that gave up is not a pool failure; a deadline is
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("acquire connection: %w: %w", ErrResourceUnavailable, err)
	}
	return conn, nil
}

// release hands the connection back to the pool. Once the transaction has
// ended the driver is back in autocommit mode, so a failure here is logged
// and does not change the outcome.
func (u *UnitOfWork) release(conn *sql.Conn) {
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		u.log.Warn().Err(err).Msg("release connection failed")
	}
}
