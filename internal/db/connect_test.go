package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMem(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	h, err := Open(ctx, DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestParseDriver(t *testing.T) {
	for in, want := range map[string]Driver{
		"":           DriverSQLite,
		"sqlite3":    DriverSQLite,
		"PG":         DriverPostgres,
		"postgresql": DriverPostgres,
		"pgx":        DriverPostgres,
	} {
		got, err := ParseDriver(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDriver("oracle")
	assert.Error(t, err)
}

func TestOpenMigratesIdempotently(t *testing.T) {
	h := openMem(t)
	require.NoError(t, Migrate(context.Background(), h, DriverSQLite))

	var n int
	require.NoError(t, h.QueryRow(`SELECT COUNT(*) FROM sequences`).Scan(&n))
	assert.Equal(t, 2, n, "seed rows are inserted once")
}

func TestWithTxRollsBackOnError(t *testing.T) {
	h := openMem(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, h, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE sequences SET value = 41 WHERE name = 'batch_number'`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var v int
	require.NoError(t, h.QueryRow(`SELECT value FROM sequences WHERE name = 'batch_number'`).Scan(&v))
	assert.Equal(t, 0, v)
}

func TestWithRetryTxStopsOnNonConflict(t *testing.T) {
	h := openMem(t)
	calls := 0
	err := WithRetryTx(context.Background(), h, nil, 3, func(*sql.Tx) error {
		calls++
		return errors.New("plain failure")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestUniqueViolationDetected(t *testing.T) {
	h := openMem(t)
	ctx := context.Background()
	_, err := h.ExecContext(ctx, `INSERT INTO users (username, role, register_date) VALUES ('a@x.io', 'student', 1)`)
	require.NoError(t, err)
	_, err = h.ExecContext(ctx, `INSERT INTO users (username, role, register_date) VALUES ('a@x.io', 'student', 2)`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}
