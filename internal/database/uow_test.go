package database_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/testdb"
)

func insertLanguage(ctx context.Context, s *database.Session, name string) error {
	_, err := s.ExecContext(ctx, `INSERT INTO language (name) VALUES (?)`, name)
	return err
}

func TestDoCommits(t *testing.T) {
	db := testdb.Open(t)
	uow := testdb.UnitOfWork(db)
	ctx := context.Background()

	err := uow.Do(ctx, func(s *database.Session) error {
		if err := insertLanguage(ctx, s, "English"); err != nil {
			return err
		}
		// the second statement sees the first one's write
		var n int
		if err := s.QueryRowContext(ctx, `SELECT COUNT(*) FROM language`).Scan(&n); err != nil {
			return err
		}
		assert.Equal(t, 1, n)
		return insertLanguage(ctx, s, "Italian")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, testdb.Count(t, db, "language"))
	assert.Zero(t, db.Stats().InUse)
}

func TestDoRollsBackOnError(t *testing.T) {
	db := testdb.Open(t)
	uow := testdb.UnitOfWork(db)
	ctx := context.Background()
	boom := errors.New("boom")

	calls := 0
	err := uow.Do(ctx, func(s *database.Session) error {
		calls++
		require.NoError(t, insertLanguage(ctx, s, "English"))
		return boom
	})
	assert.Same(t, boom, err)
	assert.Equal(t, 1, calls)
	assert.Zero(t, testdb.Count(t, db, "language"))
	assert.Zero(t, db.Stats().InUse)
}

func TestDoRollsBackOnPanic(t *testing.T) {
	db := testdb.Open(t)
	uow := testdb.UnitOfWork(db)
	ctx := context.Background()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = uow.Do(ctx, func(s *database.Session) error {
			require.NoError(t, insertLanguage(ctx, s, "English"))
			panic("kaboom")
		})
	})
	assert.Zero(t, testdb.Count(t, db, "language"))
	assert.Zero(t, db.Stats().InUse)

	// the pool is still usable
	require.NoError(t, uow.Do(ctx, func(s *database.Session) error {
		return insertLanguage(ctx, s, "German")
	}))
}

func TestDoTimesOutWaitingForConnection(t *testing.T) {
	db := testdb.Open(t)
	db.SetMaxOpenConns(1)
	held, err := db.Conn(context.Background())
	require.NoError(t, err)

	uow := database.NewUnitOfWork(db, 50*time.Millisecond, zerolog.Nop())
	ran := false
	err = uow.Do(context.Background(), func(*database.Session) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, database.ErrResourceUnavailable)
	assert.False(t, ran)

	require.NoError(t, held.Close())
	assert.NoError(t, uow.Do(context.Background(), func(*database.Session) error { return nil }))
}

func TestDoHonoursCancelledContext(t *testing.T) {
	db := testdb.Open(t)
	db.SetMaxOpenConns(1)
	held, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer held.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = testdb.UnitOfWork(db).Do(ctx, func(*database.Session) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, database.ErrResourceUnavailable)
}

func TestDoReportsCallerDeadlineAsUnavailable(t *testing.T) {
	db := testdb.Open(t)
	db.SetMaxOpenConns(1)
	held, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer held.Close()

	// the caller's deadline expires before the acquire timeout does
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	uow := database.NewUnitOfWork(db, database.DefaultAcquireTimeout, zerolog.Nop())
	err = uow.Do(ctx, func(*database.Session) error { return nil })
	assert.ErrorIs(t, err, database.ErrResourceUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoOnClosedPool(t *testing.T) {
	db := testdb.Open(t)
	require.NoError(t, db.Close())

	err := testdb.UnitOfWork(db).Do(context.Background(), func(*database.Session) error { return nil })
	assert.ErrorIs(t, err, database.ErrResourceUnavailable)
}

func TestWithinReturnsZeroOnFailure(t *testing.T) {
	db := testdb.Open(t)
	uow := testdb.UnitOfWork(db)
	ctx := context.Background()

	n, err := database.Within(ctx, uow, func(s *database.Session) (int, error) {
		return 7, errors.New("nope")
	})
	assert.Error(t, err)
	assert.Zero(t, n)

	n, err = database.Within(ctx, uow, func(s *database.Session) (int, error) {
		var c int
		err := s.QueryRowContext(ctx, `SELECT COUNT(*) FROM store`).Scan(&c)
		return c + 7, err
	})
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestDSN(t *testing.T) {
	dsn := database.Options{User: "app", Pass: "secret", Host: "db", Port: "3306", Name: "sakila"}.DSN()
	assert.Contains(t, dsn, "app:secret@tcp(db:3306)/sakila")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "clientFoundRows=true")
}

// faultyConnector opens sqlite connections whose transactions fail on
// commit or rollback after really rolling back.
type faultyConnector struct {
	dsn         string
	commitErr   error
	rollbackErr error
}

func (c *faultyConnector) Connect(context.Context) (driver.Conn, error) {
	conn, err := c.Driver().Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &faultyConn{Conn: conn, c: c}, nil
}

func (c *faultyConnector) Driver() driver.Driver { return &sqlite3.SQLiteDriver{} }

type faultyConn struct {
	driver.Conn
	c *faultyConnector
}

func (fc *faultyConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	tx, err := fc.Conn.(driver.ConnBeginTx).BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &faultyTx{Tx: tx, c: fc.c}, nil
}

type faultyTx struct {
	driver.Tx
	c *faultyConnector
}

func (tx *faultyTx) Commit() error {
	if tx.c.commitErr != nil {
		_ = tx.Tx.Rollback()
		return tx.c.commitErr
	}
	return tx.Tx.Commit()
}

func (tx *faultyTx) Rollback() error {
	err := tx.Tx.Rollback()
	if tx.c.rollbackErr != nil {
		return tx.c.rollbackErr
	}
	return err
}

func openFaulty(t *testing.T, c *faultyConnector) *sql.DB {
	t.Helper()
	c.dsn = "file:" + filepath.Join(t.TempDir(), "faulty.db") + "?_busy_timeout=5000"
	db := sql.OpenDB(c)
	t.Cleanup(func() { _ = db.Close() })
	_, err := db.Exec(`CREATE TABLE note (body TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func countNotes(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM note`).Scan(&n))
	return n
}

func TestDoKeepsCauseWhenRollbackFails(t *testing.T) {
	rbErr := errors.New("rollback lost")
	db := openFaulty(t, &faultyConnector{rollbackErr: rbErr})
	uow := database.NewUnitOfWork(db, time.Second, zerolog.Nop())
	ctx := context.Background()
	cause := errors.New("constraint broke")

	err := uow.Do(ctx, func(s *database.Session) error {
		_, err := s.ExecContext(ctx, `INSERT INTO note (body) VALUES ('draft')`)
		require.NoError(t, err)
		return cause
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, rbErr)
	assert.Zero(t, countNotes(t, db))
	assert.Zero(t, db.Stats().InUse)
}

func TestDoReportsCommitFailure(t *testing.T) {
	commitErr := errors.New("disk full")
	db := openFaulty(t, &faultyConnector{commitErr: commitErr})
	uow := database.NewUnitOfWork(db, time.Second, zerolog.Nop())
	ctx := context.Background()

	err := uow.Do(ctx, func(s *database.Session) error {
		_, err := s.ExecContext(ctx, `INSERT INTO note (body) VALUES ('kept?')`)
		return err
	})
	assert.ErrorIs(t, err, commitErr)
	assert.ErrorIs(t, err, database.ErrResourceUnavailable)
	assert.Zero(t, countNotes(t, db))
	assert.Zero(t, db.Stats().InUse)
}

func TestDoCommitsThroughWrappedDriver(t *testing.T) {
	db := openFaulty(t, &faultyConnector{})
	uow := database.NewUnitOfWork(db, time.Second, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, uow.Do(ctx, func(s *database.Session) error {
		_, err := s.ExecContext(ctx, `INSERT INTO note (body) VALUES ('kept')`)
		return err
	}))
	assert.Equal(t, 1, countNotes(t, db))
}
