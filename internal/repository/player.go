package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"scorebot/internal/model"
)

// PlayerRepository handles player stats persistence.
type PlayerRepository struct {
	q Querier
}

// NewPlayerRepository creates a new PlayerRepository instance.
func NewPlayerRepository(q Querier) *PlayerRepository {
	return &PlayerRepository{q: q}
}

const playerColumns = `id, COALESCE(external_id, ''), name, rating, games, wins, losses, points, sinks, created_at, updated_at`

func scanPlayer(row pgx.Row) (*model.Player, error) {
	var p model.Player
	err := row.Scan(
		&p.ID,
		&p.ExternalID,
		&p.Name,
		&p.Rating,
		&p.Games,
		&p.Wins,
		&p.Losses,
		&p.Points,
		&p.Sinks,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create registers a player with a fresh record at the given rating.
// Returns ErrPlayerExists if the name or external id is taken.
func (r *PlayerRepository) Create(ctx context.Context, externalID, name string, rating float64) (*model.Player, error) {
	query := `
		INSERT INTO players (external_id, name, rating, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + playerColumns

	p, err := scanPlayer(r.q.QueryRow(ctx, query, nullable(externalID), name, rating))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPlayerExists
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return p, nil
}

// GetByName retrieves a player by canonical name.
// Returns ErrPlayerNotFound if the player does not exist.
func (r *PlayerRepository) GetByName(ctx context.Context, name string) (*model.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE name = $1`

	p, err := scanPlayer(r.q.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// GetByExternalID retrieves a player by GroupMe user id.
// Returns ErrPlayerNotFound if no player carries the id.
func (r *PlayerRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE external_id = $1`

	p, err := scanPlayer(r.q.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by external id: %w", err)
	}
	return p, nil
}

func (r *PlayerRepository) list(ctx context.Context, query string, args ...any) ([]*model.Player, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []*model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return players, nil
}

// List returns every registered player ordered by name.
func (r *PlayerRepository) List(ctx context.Context) ([]*model.Player, error) {
	return r.list(ctx, `SELECT `+playerColumns+` FROM players ORDER BY name`)
}

// Top returns the highest rated players with more than minGames games.
func (r *PlayerRepository) Top(ctx context.Context, minGames, limit int) ([]*model.Player, error) {
	return r.list(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE games > $1
		ORDER BY rating DESC, name
		LIMIT $2
	`, minGames, limit)
}

// Update writes a player's rating and counters.
func (r *PlayerRepository) Update(ctx context.Context, p *model.Player) error {
	const query = `
		UPDATE players
		SET rating = $2, games = $3, wins = $4, losses = $5, points = $6, sinks = $7, updated_at = NOW()
		WHERE name = $1
	`

	result, err := r.q.Exec(ctx, query, p.Name, p.Rating, p.Games, p.Wins, p.Losses, p.Points, p.Sinks)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// AdjustRating adds delta to a player's rating and returns the updated player.
func (r *PlayerRepository) AdjustRating(ctx context.Context, name string, delta float64) (*model.Player, error) {
	query := `
		UPDATE players
		SET rating = rating + $2, updated_at = NOW()
		WHERE name = $1
		RETURNING ` + playerColumns

	p, err := scanPlayer(r.q.QueryRow(ctx, query, name, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to adjust rating: %w", err)
	}
	return p, nil
}
