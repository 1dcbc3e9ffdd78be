// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface using the pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqlstore"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// Dialect describes PostgreSQL to the shared SQL store. Transactions run
// SERIALIZABLE and pair reads take row locks with FOR UPDATE.
var Dialect = sqlstore.Dialect{
	Name:              "postgres",
	Positional:        true,
	LockClause:        " FOR UPDATE",
	TxOptions:         &sql.TxOptions{Isolation: sql.LevelSerializable},
	IsConflict:        isConflict,
	IsUniqueViolation: isUniqueViolation,
}

// PostgresStore implements storage.Store using PostgreSQL.
type PostgresStore struct {
	*sqlstore.Store
}

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// New opens a pool for dsn, verifies connectivity and applies the schema.
func New(ctx context.Context, dsn string, opts Options) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres: empty dsn")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{Store: sqlstore.New(db, Dialect)}, nil
}

func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
