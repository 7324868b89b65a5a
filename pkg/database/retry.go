package database

import (
	"context"
	"database/sql/driver"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	lockWaitBaseDelay = 50 * time.Millisecond
	lockWaitMaxDelay  = 2 * time.Second
)

// lockWaitConnector hands out connections that wait out SQLite lock
// contention (SQLITE_BUSY / SQLITE_LOCKED) for a bounded number of attempts.
// Only the lock acquisition is repeated: a statement that failed for any
// other reason is returned to the caller untouched.
type lockWaitConnector struct {
	connector driver.Connector
	attempts  int
}

func newLockWaitConnector(connector driver.Connector, maxRetries int) *lockWaitConnector {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &lockWaitConnector{connector: connector, attempts: maxRetries}
}

func (lc *lockWaitConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := lc.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &lockWaitConn{Conn: conn, attempts: lc.attempts}, nil
}

func (lc *lockWaitConnector) Driver() driver.Driver {
	return lc.connector.Driver()
}

const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// sqliteCoder is implemented by the pure-Go driver's error type.
type sqliteCoder interface {
	Code() int
}

// isBusyError reports whether err is a SQLite lock error. The pure-Go driver's
// error is matched by its result code (extended codes keep the primary code in
// the low byte). The cgo driver's error is matched by its fixed messages.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	var coder sqliteCoder
	if errors.As(err, &coder) {
		code := coder.Code() & 0xff
		return code == sqliteBusy || code == sqliteLocked
	}
	msg := err.Error()
	for _, needle := range []string{
		"database is locked",
		"database table is locked",
		"SQLITE_BUSY",
		"SQLITE_LOCKED",
	} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// lockWaitDelay returns the exponential backoff for the given attempt with up
// to 25% jitter, capped at lockWaitMaxDelay.
func lockWaitDelay(attempt int) time.Duration {
	delay := lockWaitBaseDelay << attempt
	if delay <= 0 || delay > lockWaitMaxDelay {
		return lockWaitMaxDelay
	}
	delay += rand.N(delay/4 + 1)
	return min(delay, lockWaitMaxDelay)
}

// waitForLock runs fn until it succeeds, fails with a non-lock error, or the
// attempts are used up.
func waitForLock(ctx context.Context, attempts int, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !isBusyError(err) || attempt >= attempts {
			return err
		}

		timer := time.NewTimer(lockWaitDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// lockWaitConn embeds the driver connection so Prepare and Close pass straight
// through. Lock acquisition happens on BEGIN and on the first statement that
// touches the database, which are the calls wrapped below.
type lockWaitConn struct {
	driver.Conn
	attempts int
}

func (c *lockWaitConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	var tx driver.Tx
	err := waitForLock(ctx, c.attempts, func() error {
		var err error
		if b, ok := c.Conn.(driver.ConnBeginTx); ok {
			tx, err = b.BeginTx(ctx, opts)
			return err
		}
		tx, err = c.Conn.Begin() //nolint:staticcheck // fallback for drivers without BeginTx
		return err
	})
	return tx, err
}

func (c *lockWaitConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if p, ok := c.Conn.(driver.ConnPrepareContext); ok {
		return p.PrepareContext(ctx, query)
	}
	return c.Conn.Prepare(query)
}

func (c *lockWaitConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	execer, ok := c.Conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	var res driver.Result
	err := waitForLock(ctx, c.attempts, func() error {
		var err error
		res, err = execer.ExecContext(ctx, query, args)
		return err
	})
	return res, err
}

func (c *lockWaitConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	queryer, ok := c.Conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	var rows driver.Rows
	err := waitForLock(ctx, c.attempts, func() error {
		var err error
		rows, err = queryer.QueryContext(ctx, query, args)
		return err
	})
	return rows, err
}

func (c *lockWaitConn) Ping(ctx context.Context) error {
	if p, ok := c.Conn.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *lockWaitConn) ResetSession(ctx context.Context) error {
	if r, ok := c.Conn.(driver.SessionResetter); ok {
		return r.ResetSession(ctx)
	}
	return nil
}

func (c *lockWaitConn) IsValid() bool {
	if v, ok := c.Conn.(driver.Validator); ok {
		return v.IsValid()
	}
	return true
}
