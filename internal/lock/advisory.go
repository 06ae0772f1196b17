// Package lock prevents two processes from running the same integration at
// once using MySQL advisory locks.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrLockHeld is returned when another process holds the lock.
var ErrLockHeld = errors.New("lock is held by another process")

// Acquisition timeouts in seconds.
const (
	TimeoutImmediate = 0
	TimeoutShort     = 1
	TimeoutInfinite  = -1
)

// maxNameLength is MySQL's limit for GET_LOCK names.
const maxNameLength = 64

// AdvisoryLock is a named GET_LOCK held on one pinned connection, since
// MySQL ties advisory locks to the session that took them.
type AdvisoryLock struct {
	db   *sql.DB
	name string
	conn *sql.Conn
}

// New creates a lock named name. Nothing is acquired yet.
func New(db *sql.DB, name string) *AdvisoryLock {
	return &AdvisoryLock{db: db, name: name}
}

// IntegrationLockName returns the lock name for an integration, e.g.
// "cdosync:integration:membership".
func IntegrationLockName(integration string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, integration)

	name := "cdosync:integration:" + sanitized
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return name
}

// ForIntegration creates the lock guarding one integration.
func ForIntegration(db *sql.DB, integration string) *AdvisoryLock {
	return New(db, IntegrationLockName(integration))
}

// Name returns the lock name.
func (a *AdvisoryLock) Name() string {
	return a.name
}

// Held reports whether this instance holds the lock.
func (a *AdvisoryLock) Held() bool {
	return a.conn != nil
}

// Acquire tries to take the lock, waiting up to timeoutSeconds. It returns
// false without error when another session holds it.
//
// GET_LOCK returns 1 on success, 0 on timeout, and NULL on error.
func (a *AdvisoryLock) Acquire(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.conn != nil {
		return true, nil
	}

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to reserve connection for lock %q: %w", a.name, err)
	}

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.name, timeoutSeconds).Scan(&result); err != nil {
		_ = conn.Close()
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}
	if !result.Valid {
		_ = conn.Close()
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q", a.name)
	}

	switch result.Int64 {
	case 1:
		a.conn = conn
		return true, nil
	case 0:
		_ = conn.Close()
		return false, nil
	default:
		_ = conn.Close()
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

// Release gives the lock back and returns the pinned connection to the pool.
// Releasing a lock that is not held is a no-op.
func (a *AdvisoryLock) Release(ctx context.Context) error {
	if a.conn == nil {
		return nil
	}
	conn := a.conn
	a.conn = nil

	var result sql.NullInt64
	err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.name).Scan(&result)
	closeErr := conn.Close()
	if err != nil {
		return fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}
	if !result.Valid || result.Int64 != 1 {
		return fmt.Errorf("lock %q was not held by this session", a.name)
	}
	return closeErr
}

// WithLock runs fn while holding the integration's lock. ErrLockHeld is
// returned when the lock is taken. The lock is released even if fn panics.
func WithLock(ctx context.Context, db *sql.DB, integration string, timeoutSeconds int, fn func(context.Context) error) (err error) {
	l := ForIntegration(db, integration)
	acquired, err := l.Acquire(ctx, timeoutSeconds)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrLockHeld, l.Name())
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if relErr := l.Release(releaseCtx); relErr != nil && err == nil {
			err = relErr
		}
	}()

	return fn(ctx)
}
