package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"scorebot/internal/pkg/lock"
	"scorebot/internal/rating"
	"scorebot/internal/repository"
)

// ReplayService rebuilds every rating from the match history.
type ReplayService struct {
	store    repository.Store
	ledger   *lock.Ledger
	engine   *rating.Engine
	seed     map[string]float64
	baseline float64
}

// NewReplayService creates a new ReplayService instance.
func NewReplayService(
	store repository.Store,
	ledger *lock.Ledger,
	engine *rating.Engine,
	seed map[string]float64,
	baseline float64,
) *ReplayService {
	return &ReplayService{
		store:    store,
		ledger:   ledger,
		engine:   engine,
		seed:     seed,
		baseline: baseline,
	}
}

// Refresh replays the full history and stores the result in one transaction.
// It returns lock.ErrBusy without waiting when a replay or a live write is in
// progress. Manual rating adjustments are not part of the history and are lost.
func (s *ReplayService) Refresh(ctx context.Context) (*rating.ReplayResult, error) {
	var result *rating.ReplayResult
	start := time.Now()

	err := s.ledger.Exclusive(func() error {
		return s.store.InTx(ctx, func(tx repository.Store) error {
			players, err := tx.Players().List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list players: %w", err)
			}
			matches, err := tx.Matches().ListOrdered(ctx)
			if err != nil {
				return fmt.Errorf("failed to list matches: %w", err)
			}

			result, err = s.engine.Replay(matches, players, s.seed, s.baseline)
			if err != nil {
				return err
			}

			for _, p := range result.Players {
				if err := tx.Players().Update(ctx, p); err != nil {
					return fmt.Errorf("failed to update %s: %w", p.Name, err)
				}
			}
			for _, m := range result.Matches {
				if err := tx.Matches().UpdateSnapshot(ctx, m.ID, m.RatingsBefore, m.RatingDelta); err != nil {
					return fmt.Errorf("failed to update match %d: %w", m.ID, err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("players", len(result.Players)).
		Int("matches", len(result.Matches)).
		Dur("took", time.Since(start)).
		Msg("Ratings replayed")
	return result, nil
}
