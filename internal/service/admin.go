package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"scorebot/internal/model"
	"scorebot/internal/pkg/lock"
	"scorebot/internal/repository"
)

// AdminService handles roster changes and manual corrections.
type AdminService struct {
	store        repository.Store
	ledger       *lock.Ledger
	baseline     float64
	botchPenalty float64
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(store repository.Store, ledger *lock.Ledger, baseline, botchPenalty float64) *AdminService {
	return &AdminService{
		store:        store,
		ledger:       ledger,
		baseline:     baseline,
		botchPenalty: botchPenalty,
	}
}

// AddPlayer registers a GroupMe user under a display name at the baseline
// rating. It returns repository.ErrPlayerExists when either is taken.
func (s *AdminService) AddPlayer(ctx context.Context, externalID, name string) (*model.Player, error) {
	if _, err := s.store.Players().GetByExternalID(ctx, externalID); err == nil {
		return nil, fmt.Errorf("%w: user %s", repository.ErrPlayerExists, externalID)
	} else if !errors.Is(err, repository.ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}

	p, err := s.store.Players().Create(ctx, externalID, name, s.baseline)
	if err != nil {
		return nil, fmt.Errorf("failed to add player: %w", err)
	}
	log.Info().Str("name", name).Str("external_id", externalID).Msg("Player added")
	return p, nil
}

// Penalty returns the rating a botch costs.
func (s *AdminService) Penalty() float64 {
	return s.botchPenalty
}

// Botch docks the botch penalty from a player's rating.
func (s *AdminService) Botch(ctx context.Context, name string) (*model.Player, error) {
	return s.adjust(ctx, name, -s.botchPenalty)
}

// Unbotch gives the botch penalty back.
func (s *AdminService) Unbotch(ctx context.Context, name string) (*model.Player, error) {
	return s.adjust(ctx, name, s.botchPenalty)
}

func (s *AdminService) adjust(ctx context.Context, name string, delta float64) (*model.Player, error) {
	var p *model.Player
	err := s.ledger.WithPlayers(ctx, []string{name}, func() error {
		var err error
		p, err = s.store.Players().AdjustRating(ctx, name, delta)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to adjust %s: %w", name, err)
	}
	log.Info().Str("name", name).Float64("delta", delta).Float64("rating", p.Rating).Msg("Rating adjusted")
	return p, nil
}

// Strike deletes a match and returns it. Player records keep the match's
// effect until the next replay.
func (s *AdminService) Strike(ctx context.Context, id int64) (*model.Match, error) {
	m, err := s.store.Matches().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}

	err = s.ledger.WithPlayers(ctx, m.Players[:], func() error {
		return s.store.Matches().Delete(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to strike match %d: %w", id, err)
	}
	log.Info().Int64("match_id", id).Strs("players", m.Players[:]).Msg("Match struck")
	return m, nil
}
