package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"scorebot/internal/model"
	"scorebot/internal/repository"
)

// maxSuggestions caps the "did you mean" list of Lookup.
const maxSuggestions = 3

// LeaderboardService answers read-only questions about player records.
type LeaderboardService struct {
	store    repository.Store
	minGames int
	display  int
}

// NewLeaderboardService creates a new LeaderboardService instance.
func NewLeaderboardService(store repository.Store, minGames, display int) *LeaderboardService {
	if display <= 0 {
		display = 10
	}
	return &LeaderboardService{
		store:    store,
		minGames: minGames,
		display:  display,
	}
}

// Top returns the highest-rated players with more than the minimum games.
func (s *LeaderboardService) Top(ctx context.Context) ([]*model.Player, error) {
	players, err := s.store.Players().Top(ctx, s.minGames, s.display)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return players, nil
}

// Scoreboard returns the records of the named players in the given order.
// Repeated names are returned once.
func (s *LeaderboardService) Scoreboard(ctx context.Context, names []string) ([]*model.Player, error) {
	seen := make(map[string]bool, len(names))
	out := make([]*model.Player, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		p, err := s.store.Players().GetByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Lookup finds a player by name, ignoring case. When there is no exact match
// it returns repository.ErrPlayerNotFound with the closest names as suggestions.
func (s *LeaderboardService) Lookup(ctx context.Context, query string) (*model.Player, []string, error) {
	query = strings.TrimSpace(query)
	players, err := s.store.Players().List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list players: %w", err)
	}

	names := make([]string, len(players))
	for i, p := range players {
		if strings.EqualFold(p.Name, query) {
			return p, nil, nil
		}
		names[i] = p.Name
	}

	return nil, Suggest(query, names), repository.ErrPlayerNotFound
}

// Suggest ranks names by fuzzy distance to query and returns the closest few.
func Suggest(query string, names []string) []string {
	if query == "" {
		return nil
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	var out []string
	for _, r := range ranks {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, r.Target)
	}
	return out
}

// IsNotFound reports whether err means a player or match does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrPlayerNotFound) || errors.Is(err, repository.ErrMatchNotFound)
}
