package server

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// AuditLog persists a record of every evaluated query, the way an
// operations team would want to trace who ran what against a production
// data set.
type AuditLog struct {
	db     *sql.DB
	driver string
}

// AuditRecord is one logged query evaluation.
type AuditRecord struct {
	ID          string
	ClientID    string
	Query       string
	Succeeded   bool
	Error       string
	Duration    time.Duration
	EvaluatedAt time.Time
}

// OpenAuditLog opens the audit database named by url, choosing the pgx or
// sqlite3 driver by scheme ("postgres://...", "sqlite://...") and ensuring
// its table exists.
func OpenAuditLog(url string) (*AuditLog, error) {
	driver, dsn := "sqlite3", strings.TrimPrefix(url, "sqlite://")
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		driver, dsn = "pgx", url
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	log := &AuditLog{db: db, driver: driver}
	if err := log.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return log, nil
}

// NewAuditLogFromDB wraps an already-open *sql.DB, used by tests that
// inject a go-sqlmock connection instead of a real database.
func NewAuditLogFromDB(db *sql.DB, driver string) *AuditLog {
	return &AuditLog{db: db, driver: driver}
}

func (a *AuditLog) migrate(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS query_audit (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			query TEXT NOT NULL,
			succeeded BOOLEAN NOT NULL,
			error TEXT NOT NULL,
			duration_ms BIGINT NOT NULL,
			evaluated_at TIMESTAMP NOT NULL
		)`)
	return err
}

// Record inserts a single audit row for one query evaluation.
func (a *AuditLog) Record(ctx context.Context, rec AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	placeholders := "?, ?, ?, ?, ?, ?, ?"
	if a.driver == "pgx" {
		placeholders = "$1, $2, $3, $4, $5, $6, $7"
	}
	query := fmt.Sprintf(
		`INSERT INTO query_audit (id, client_id, query, succeeded, error, duration_ms, evaluated_at)
		 VALUES (%s)`, placeholders)
	_, err := a.db.ExecContext(ctx, query,
		rec.ID, rec.ClientID, rec.Query, rec.Succeeded, rec.Error, rec.Duration.Milliseconds(), rec.EvaluatedAt,
	)
	return err
}

// Close releases the underlying database connection.
func (a *AuditLog) Close() error {
	return a.db.Close()
}
