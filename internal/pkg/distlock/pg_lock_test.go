package distlock

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGAdvisoryLockAcquireRelease(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT pg_try_advisory_lock").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectExec("SELECT pg_advisory_unlock").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	lock := NewPGAdvisoryLock(db, "catalog-sync:run")

	acquired, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, acquired)
	// the lock is session-scoped: between Acquire and Release it must
	// hold on to the connection the lock was taken on
	require.NotNil(t, lock.conn)

	require.NoError(t, lock.Release(context.Background()))
	assert.Nil(t, lock.conn)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGAdvisoryLockContended(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT pg_try_advisory_lock").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	lock := NewPGAdvisoryLock(db, "catalog-sync:run")

	acquired, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, acquired)
	assert.Nil(t, lock.conn)

	// Release without ownership must not issue an unlock
	require.NoError(t, lock.Release(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGAdvisoryLockSameKeySameID(t *testing.T) {
	a := NewPGAdvisoryLock(nil, "catalog-sync:run")
	b := NewPGAdvisoryLock(nil, "catalog-sync:run")
	c := NewPGAdvisoryLock(nil, "other")
	assert.Equal(t, a.lockID, b.lockID)
	assert.NotEqual(t, a.lockID, c.lockID)
}
