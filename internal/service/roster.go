package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"scorebot/internal/repository"
	"scorebot/internal/roster"
)

// RosterService maps GroupMe users to registered players.
type RosterService struct {
	store    repository.Store
	static   roster.Table
	baseline float64
}

// NewRosterService creates a RosterService over the configured id%name table.
func NewRosterService(store repository.Store, static roster.Table, baseline float64) *RosterService {
	if static == nil {
		static = roster.Table{}
	}
	return &RosterService{
		store:    store,
		static:   static,
		baseline: baseline,
	}
}

// Table returns the configured table with registered players layered over it.
func (s *RosterService) Table(ctx context.Context) (roster.Table, error) {
	players, err := s.store.Players().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return s.static.Merge(roster.FromPlayers(players)), nil
}

// Sync creates a stats row for every configured roster entry that lacks one.
// It returns the number of players created.
func (s *RosterService) Sync(ctx context.Context) (int, error) {
	created := 0
	for id, name := range s.static {
		_, err := s.store.Players().GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrPlayerNotFound) {
			return created, fmt.Errorf("failed to look up %s: %w", name, err)
		}

		if _, err := s.store.Players().Create(ctx, id, name, s.baseline); err != nil {
			if errors.Is(err, repository.ErrPlayerExists) {
				log.Warn().Str("external_id", id).Str("name", name).
					Msg("Roster id already registered under another name")
				continue
			}
			return created, fmt.Errorf("failed to create %s: %w", name, err)
		}
		created++
	}
	return created, nil
}
