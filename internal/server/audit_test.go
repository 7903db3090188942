package server

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogRecordInsertsRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS query_audit").WillReturnResult(sqlmock.NewResult(0, 0))
	log := NewAuditLogFromDB(db, "sqlite3")
	require.NoError(t, log.migrate(context.Background()))

	rec := AuditRecord{
		ClientID:    "client-a",
		Query:       "@ | count",
		Succeeded:   true,
		Duration:    12 * time.Millisecond,
		EvaluatedAt: time.Unix(0, 0).UTC(),
	}
	mock.ExpectExec("INSERT INTO query_audit").
		WithArgs(sqlmock.AnyArg(), rec.ClientID, rec.Query, rec.Succeeded, rec.Error, rec.Duration.Milliseconds(), rec.EvaluatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, log.Record(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRecordGeneratesIDWhenMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS query_audit").WillReturnResult(sqlmock.NewResult(0, 0))
	log := NewAuditLogFromDB(db, "pgx")
	require.NoError(t, log.migrate(context.Background()))

	mock.ExpectExec("INSERT INTO query_audit").
		WithArgs(sqlmock.AnyArg(), "client-b", "@", false, "boom", int64(5), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = log.Record(context.Background(), AuditRecord{
		ClientID:    "client-b",
		Query:       "@",
		Succeeded:   false,
		Error:       "boom",
		Duration:    5 * time.Millisecond,
		EvaluatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogCloseReleasesConnection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	log := NewAuditLogFromDB(db, "sqlite3")
	require.NoError(t, log.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
