package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// exclusion_violation, raised by the reservas time-range constraint.
const (
	exclusionViolation = "23P01"
	uniqueViolation    = "23505"
)

func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func RunMigrations(db *sqlx.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", absPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func Exists(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, query, args...)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return exists, err
}

// IsExclusionViolation reports whether err comes from an EXCLUDE constraint.
func IsExclusionViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == exclusionViolation
	}
	return false
}

// IsUniqueViolation reports whether err comes from a UNIQUE constraint or index.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// VenueTxRunner runs fn inside a transaction that holds the advisory lock of
// one venue. Every booking write for that venue goes through it, so a conflict
// check and the insert that follows it cannot interleave with another writer.
type VenueTxRunner interface {
	InVenueTx(ctx context.Context, venueID int64, fn func(ctx context.Context, tx *sqlx.Tx) error) error
}

type venueTx struct {
	db *sqlx.DB
}

func NewVenueTxRunner(db *sqlx.DB) VenueTxRunner {
	return &venueTx{db: db}
}

func (v *venueTx) InVenueTx(ctx context.Context, venueID int64, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	tx, err := v.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, venueID); err != nil {
		return fmt.Errorf("lock venue %d: %w", venueID, err)
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit()
}
