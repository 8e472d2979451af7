package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"scorebot/internal/model"
)

// MatchRepository handles match history persistence.
type MatchRepository struct {
	q Querier
}

// NewMatchRepository creates a new MatchRepository instance.
func NewMatchRepository(q Querier) *MatchRepository {
	return &MatchRepository{q: q}
}

const matchColumns = `id, player_a1, player_a2, player_b1, player_b2, score_a, score_b,
	points, sinks, "timestamp", ratings_before, rating_delta, created_at`

func scanMatch(row pgx.Row) (*model.Match, error) {
	var (
		m       model.Match
		points  []int
		sinks   []int
		ratings []float64
	)
	err := row.Scan(
		&m.ID,
		&m.Players[0],
		&m.Players[1],
		&m.Players[2],
		&m.Players[3],
		&m.ScoreA,
		&m.ScoreB,
		&points,
		&sinks,
		&m.Timestamp,
		&ratings,
		&m.RatingDelta,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	copy(m.Points[:], points)
	copy(m.Sinks[:], sinks)
	copy(m.RatingsBefore[:], ratings)
	return &m, nil
}

// Create inserts a match and returns it with its id and creation time.
func (r *MatchRepository) Create(ctx context.Context, m *model.Match) (*model.Match, error) {
	query := `
		INSERT INTO matches (player_a1, player_a2, player_b1, player_b2, score_a, score_b,
			points, sinks, "timestamp", ratings_before, rating_delta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING ` + matchColumns

	created, err := scanMatch(r.q.QueryRow(ctx, query,
		m.Players[0], m.Players[1], m.Players[2], m.Players[3],
		m.ScoreA, m.ScoreB,
		m.Points[:], m.Sinks[:],
		m.Timestamp,
		m.RatingsBefore[:], m.RatingDelta,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return created, nil
}

// GetByID retrieves a match.
// Returns ErrMatchNotFound if the match does not exist.
func (r *MatchRepository) GetByID(ctx context.Context, id int64) (*model.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// Delete removes a match. Player records are left as they are until a replay.
func (r *MatchRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func (r *MatchRepository) list(ctx context.Context, query string, args ...any) ([]*model.Match, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}

// ListOrdered returns the whole history in replay order.
func (r *MatchRepository) ListOrdered(ctx context.Context) ([]*model.Match, error) {
	return r.list(ctx, `SELECT `+matchColumns+` FROM matches ORDER BY "timestamp", id`)
}

// ListForPlayer returns a player's most recent matches, newest first.
func (r *MatchRepository) ListForPlayer(ctx context.Context, name string, limit int) ([]*model.Match, error) {
	return r.list(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE $1 IN (player_a1, player_a2, player_b1, player_b2)
		ORDER BY "timestamp" DESC, id DESC
		LIMIT $2
	`, name, limit)
}

// LatestTimestamp returns the newest match time, or 0 with no matches.
func (r *MatchRepository) LatestTimestamp(ctx context.Context) (int64, error) {
	var ts int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX("timestamp"), 0) FROM matches`).Scan(&ts)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest match time: %w", err)
	}
	return ts, nil
}

// UpdateSnapshot rewrites a match's pre-match ratings and delta.
func (r *MatchRepository) UpdateSnapshot(ctx context.Context, id int64, before [model.PlayersPerMatch]float64, delta float64) error {
	const query = `UPDATE matches SET ratings_before = $2, rating_delta = $3 WHERE id = $1`

	result, err := r.q.Exec(ctx, query, id, before[:], delta)
	if err != nil {
		return fmt.Errorf("failed to update match snapshot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMatchNotFound
	}
	return nil
}
