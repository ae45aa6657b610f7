package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NorousS/anime-reviews/internal/store"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateTitle indicates the anime title unique constraint was violated.
	ErrDuplicateTitle = errors.New("repository: anime with this title already exists")
	// ErrReferentialViolation indicates a review referenced an anime that does not exist.
	ErrReferentialViolation = errors.New("repository: referenced anime does not exist")
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository aggregates all domain-specific repositories.
type Repository struct {
	db      DBTX
	Anime   *AnimeRepository
	Reviews *ReviewsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return newWithDB(pool)
}

func newWithDB(db DBTX) *Repository {
	return &Repository{
		db:      db,
		Anime:   &AnimeRepository{db: db},
		Reviews: &ReviewsRepository{db: db},
	}
}

// InTx runs fn against a Repository bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise; its
// connection goes back to the pool on every path.
func (r *Repository) InTx(ctx context.Context, fn func(tx *Repository) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(newWithDB(tx))
	})
}

// InSnapshot is InTx with a read-only, repeatable-read transaction, so every
// query fn issues sees the same snapshot.
func (r *Repository) InSnapshot(ctx context.Context, fn func(tx *Repository) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SET TRANSACTION ISOLATION LEVEL REPEATABLE READ, READ ONLY`); err != nil {
			return fmt.Errorf("begin snapshot: %w", err)
		}
		return fn(newWithDB(tx))
	})
}
