package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is an interface that both pgxpool.Pool and pgx.Tx satisfy.
// This allows Repository methods to work with either a connection pool
// or a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides database access for users, sessions, and watchlists
type Repository struct {
	pool *pgxpool.Pool
	db   DBTX // The actual executor (pool or transaction)
}

// NewRepository creates a new Repository with a PostgreSQL connection pool.
// The initial ping is retried with backoff so a briefly unavailable database
// at startup does not kill the process.
func NewRepository(ctx context.Context, connString string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := WithRetry(ctx, DefaultRetryConfig, func() error {
		return pool.Ping(ctx)
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Repository{pool: pool, db: pool}, nil
}

// WithTx returns a new Repository that uses the given transaction
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{pool: r.pool, db: tx}
}

// Close closes the database connection pool
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Health checks if the database connection is healthy
func (r *Repository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Pool returns the underlying connection pool for advanced operations.
// This is primarily intended for testing and cleanup operations.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// The process-wide repository. Initialization is guarded so concurrent
// callers share one pool, and Teardown exists so tests can reset the state
// instead of leaking a global across cases.
var (
	globalMu   sync.Mutex
	globalRepo *Repository
)

// Connect returns the process-wide repository, initializing it on first use.
// Subsequent calls return the already-initialized instance regardless of the
// connection string. A failed initialization leaves the global unset so the
// next call retries; there is no silent in-memory fallback.
func Connect(ctx context.Context, connString string) (*Repository, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalRepo != nil {
		return globalRepo, nil
	}

	repo, err := NewRepository(ctx, connString)
	if err != nil {
		return nil, err
	}

	globalRepo = repo
	return globalRepo, nil
}

// Teardown closes and clears the process-wide repository
func Teardown() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalRepo != nil {
		globalRepo.Close()
		globalRepo = nil
	}
}
