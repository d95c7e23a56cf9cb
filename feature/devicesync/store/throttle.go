package store

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
)

// ErrThrottled marks an error as a throttling signal. Tests and fakes wrap
// it; real MySQL errors are classified by number.
var ErrThrottled = errors.New("store throttled")

// Saturation-class MySQL error numbers treated as throttling: the write is
// sound and will succeed once the store has capacity again.
const (
	mysqlErrTooManyConnections = 1040
	mysqlErrLockWaitTimeout    = 1205
	mysqlErrDeadlock           = 1213
)

// Throttled reports whether err is a throughput rejection that is worth
// retrying with backoff.
func Throttled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrThrottled) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrTooManyConnections, mysqlErrLockWaitTimeout, mysqlErrDeadlock:
			return true
		}
	}

	return false
}

// mysqlErrDuplicateEntry is a key conflict; rare under upsert semantics and
// never retried.
const mysqlErrDuplicateEntry = 1062

// conflict reports whether err is a key conflict.
func conflict(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry
}

// sleepFunc is a cancellation-aware delay primitive. The store's default
// implementation waits on a timer or the context, whichever fires first.
type sleepFunc func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
