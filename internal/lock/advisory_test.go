package lock

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	getLock     = regexp.QuoteMeta("SELECT GET_LOCK(?, ?)")
	releaseLock = regexp.QuoteMeta("SELECT RELEASE_LOCK(?)")
)

func lockRow(v interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"result"}).AddRow(v)
}

func TestIntegrationLockName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"membership", "cdosync:integration:membership"},
		{"ticket-activity_2", "cdosync:integration:ticket-activity_2"},
		{"acme tickets/daily", "cdosync:integration:acme_tickets_daily"},
		{"x'; DO SLEEP(5)", "cdosync:integration:x___DO_SLEEP_5_"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IntegrationLockName(tt.input))
		})
	}

	long := IntegrationLockName(strings.Repeat("a", 100))
	assert.Len(t, long, maxNameLength)
	assert.True(t, strings.HasPrefix(long, "cdosync:integration:aaa"))
}

func TestAcquireAndRelease(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(getLock).WithArgs("cdosync:integration:membership", TimeoutShort).WillReturnRows(lockRow(1))
	mock.ExpectQuery(releaseLock).WithArgs("cdosync:integration:membership").WillReturnRows(lockRow(1))

	l := ForIntegration(db, "membership")
	assert.False(t, l.Held())

	ok, err := l.Acquire(context.Background(), TimeoutShort)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, l.Held())

	ok, err = l.Acquire(context.Background(), TimeoutShort)
	require.NoError(t, err)
	assert.True(t, ok, "re-acquiring a held lock is a no-op")

	require.NoError(t, l.Release(context.Background()))
	assert.False(t, l.Held())
	require.NoError(t, l.Release(context.Background()), "releasing twice is a no-op")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquire_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		row      interface{}
		queryErr error
		acquired bool
		errMsg   string
	}{
		{name: "held elsewhere", row: 0},
		{name: "null result", row: nil, errMsg: "returned NULL"},
		{name: "unexpected value", row: 7, errMsg: "unexpected GET_LOCK return value: 7"},
		{name: "query error", queryErr: errors.New("connection reset"), errMsg: "connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			q := mock.ExpectQuery(getLock)
			if tt.queryErr != nil {
				q.WillReturnError(tt.queryErr)
			} else {
				q.WillReturnRows(lockRow(tt.row))
			}

			l := New(db, "test-lock")
			ok, err := l.Acquire(context.Background(), TimeoutImmediate)
			assert.Equal(t, tt.acquired, ok)
			assert.False(t, l.Held())
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRelease_NotOwned(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(getLock).WillReturnRows(lockRow(1))
	mock.ExpectQuery(releaseLock).WillReturnRows(lockRow(0))

	l := New(db, "test-lock")
	_, err = l.Acquire(context.Background(), TimeoutShort)
	require.NoError(t, err)

	err = l.Release(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not held")
	assert.False(t, l.Held())
}

func TestWithLock(t *testing.T) {
	t.Run("runs and releases", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(getLock).WithArgs("cdosync:integration:tickets", TimeoutShort).WillReturnRows(lockRow(1))
		mock.ExpectQuery(releaseLock).WillReturnRows(lockRow(1))

		called := false
		err = WithLock(context.Background(), db, "tickets", TimeoutShort, func(context.Context) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("held elsewhere", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(getLock).WillReturnRows(lockRow(0))

		err = WithLock(context.Background(), db, "tickets", TimeoutShort, func(context.Context) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.ErrorIs(t, err, ErrLockHeld)
	})

	t.Run("fn error wins over release", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(getLock).WillReturnRows(lockRow(1))
		mock.ExpectQuery(releaseLock).WillReturnRows(lockRow(0))

		boom := errors.New("boom")
		err = WithLock(context.Background(), db, "tickets", TimeoutShort, func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("releases on panic", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(getLock).WillReturnRows(lockRow(1))
		mock.ExpectQuery(releaseLock).WillReturnRows(lockRow(1))

		assert.Panics(t, func() {
			_ = WithLock(context.Background(), db, "tickets", TimeoutShort, func(context.Context) error { panic("oops") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
