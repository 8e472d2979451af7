// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"scorebot/internal/model"
)

// Common errors for repository operations.
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerExists   = errors.New("player already registered")
	ErrMatchNotFound  = errors.New("match not found")
)

// uniqueViolation is the PostgreSQL error code for a unique constraint.
const uniqueViolation = "23505"

// Querier is the subset of pgx shared by a pool and a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Players is the player stats store.
type Players interface {
	Create(ctx context.Context, externalID, name string, rating float64) (*model.Player, error)
	GetByName(ctx context.Context, name string) (*model.Player, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Player, error)
	List(ctx context.Context) ([]*model.Player, error)
	Top(ctx context.Context, minGames, limit int) ([]*model.Player, error)
	Update(ctx context.Context, p *model.Player) error
	AdjustRating(ctx context.Context, name string, delta float64) (*model.Player, error)
}

// Matches is the match history store.
type Matches interface {
	Create(ctx context.Context, m *model.Match) (*model.Match, error)
	GetByID(ctx context.Context, id int64) (*model.Match, error)
	Delete(ctx context.Context, id int64) error
	ListOrdered(ctx context.Context) ([]*model.Match, error)
	ListForPlayer(ctx context.Context, name string, limit int) ([]*model.Match, error)
	LatestTimestamp(ctx context.Context) (int64, error)
	UpdateSnapshot(ctx context.Context, id int64, before [model.PlayersPerMatch]float64, delta float64) error
}

// Store groups the repositories and runs work atomically.
type Store interface {
	Players() Players
	Matches() Matches
	// InTx runs fn against a store bound to one transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(Store) error) error
}

// PostgresStore is the Store backed by PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	q    Querier
	inTx bool
}

// NewPostgresStore creates a store on the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, q: pool}
}

// Players returns the player repository bound to this store's connection.
func (s *PostgresStore) Players() Players {
	return NewPlayerRepository(s.q)
}

// Matches returns the match repository bound to this store's connection.
func (s *PostgresStore) Matches() Matches {
	return NewMatchRepository(s.q)
}

// InTx runs fn in a transaction. Nested calls reuse the outer transaction.
func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&PostgresStore{pool: s.pool, q: tx, inTx: true})
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
