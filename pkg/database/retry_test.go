package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedError struct {
	code int
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() int     { return e.code }

func TestIsBusyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"database is locked", errors.New("database is locked"), true},
		{"database table is locked", errors.New("database table is locked"), true},
		{"SQLITE_BUSY", errors.New("SQLITE_BUSY"), true},
		{"SQLITE_LOCKED", errors.New("SQLITE_LOCKED"), true},
		{"busy result code", &codedError{code: 5, msg: "database is locked (5) (SQLITE_BUSY)"}, true},
		{"locked result code", &codedError{code: 6, msg: "database table is locked (6)"}, true},
		{"extended busy code", fmt.Errorf("exec: %w", &codedError{code: 517, msg: "busy snapshot"}), true},
		{"other result code", &codedError{code: 19, msg: "constraint failed (19)"}, false},
		{"parenthesized digits", errors.New("value too long for type character varying(6)"), false},
		{"parenthesized five", errors.New("no such column: x (5)"), false},
		{"unique constraint", errors.New("UNIQUE constraint failed: members.email"), false},
		{"check constraint", errors.New("CHECK constraint failed: available >= 0"), false},
		{"no rows", errors.New("sql: no rows in result set"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isBusyError(tt.err))
		})
	}
}

func TestLockWaitDelay(t *testing.T) {
	t.Parallel()

	first := lockWaitDelay(0)
	assert.GreaterOrEqual(t, first, lockWaitBaseDelay)
	assert.LessOrEqual(t, first, lockWaitBaseDelay+lockWaitBaseDelay/4)

	assert.Equal(t, lockWaitMaxDelay, lockWaitDelay(10))
	assert.Equal(t, lockWaitMaxDelay, lockWaitDelay(80))
}

func TestWaitForLock(t *testing.T) {
	t.Parallel()

	t.Run("succeeds on first attempt", func(t *testing.T) {
		attempts := 0
		err := waitForLock(context.Background(), 5, func() error {
			attempts++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("waits out a lock and succeeds", func(t *testing.T) {
		attempts := 0
		err := waitForLock(context.Background(), 5, func() error {
			attempts++
			if attempts < 3 {
				return errors.New("database is locked")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("never repeats a failed statement", func(t *testing.T) {
		attempts := 0
		err := waitForLock(context.Background(), 5, func() error {
			attempts++
			return errors.New("UNIQUE constraint failed: members.email")
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		attempts := 0
		err := waitForLock(context.Background(), 2, func() error {
			attempts++
			return errors.New("database is locked")
		})
		require.Error(t, err)
		assert.Equal(t, 3, attempts)
		assert.Contains(t, err.Error(), "database is locked")
	})

	t.Run("zero retries means one attempt", func(t *testing.T) {
		attempts := 0
		err := waitForLock(context.Background(), 0, func() error {
			attempts++
			return errors.New("SQLITE_BUSY")
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		attempts := 0
		err := waitForLock(ctx, 10, func() error {
			attempts++
			return errors.New("database is locked")
		})
		require.ErrorIs(t, err, context.Canceled)
		assert.GreaterOrEqual(t, attempts, 1)
		assert.Less(t, attempts, 11)
	})
}
