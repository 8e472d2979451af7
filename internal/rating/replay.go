package rating

import (
	"errors"
	"fmt"
	"sort"

	"scorebot/internal/model"
)

// ErrUnknownPlayer means a match references a player with no stats row. It
// indicates corrupted data and aborts the replay.
var ErrUnknownPlayer = errors.New("match references unknown player")

// ReplayResult holds recomputed copies of every player and match.
type ReplayResult struct {
	// Players in input order.
	Players []*model.Player
	// Matches in replay order, with RatingsBefore and RatingDelta rewritten.
	Matches []*model.Match
}

// Replay recomputes every player's record from scratch by rating all matches
// in (timestamp, id) order. Each player starts at seed[name] when present and
// at baseline otherwise. Inputs are not modified, so replaying the same
// history twice yields the same result.
func (e *Engine) Replay(matches []*model.Match, players []*model.Player, seed map[string]float64, baseline float64) (*ReplayResult, error) {
	res := &ReplayResult{
		Players: make([]*model.Player, len(players)),
		Matches: make([]*model.Match, len(matches)),
	}

	byName := make(map[string]*model.Player, len(players))
	for i, p := range players {
		cp := *p
		start := baseline
		if r, ok := seed[p.Name]; ok {
			start = r
		}
		cp.Reset(start)
		res.Players[i] = &cp
		byName[cp.Name] = &cp
	}

	for i, m := range matches {
		cp := *m
		res.Matches[i] = &cp
	}
	sort.SliceStable(res.Matches, func(i, j int) bool {
		a, b := res.Matches[i], res.Matches[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return a.ID < b.ID
	})

	for _, m := range res.Matches {
		var current [model.PlayersPerMatch]model.Player
		for slot, name := range m.Players {
			p, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("%w: %q in match %d", ErrUnknownPlayer, name, m.ID)
			}
			current[slot] = *p
		}

		out := e.Apply(m, current)
		m.RatingsBefore = out.RatingsBefore
		m.RatingDelta = out.Delta
		for slot, p := range out.Players {
			*byName[m.Players[slot]] = p
		}
	}
	return res, nil
}
