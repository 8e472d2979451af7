package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"scorebot/internal/model"
	"scorebot/internal/parse"
	"scorebot/internal/pkg/lock"
	"scorebot/internal/rating"
	"scorebot/internal/repository"
	"scorebot/internal/roster"
	"scorebot/internal/rules"
)

// ScoreInput is a parsed score report plus the message it came from.
type ScoreInput struct {
	Command   *parse.ScoreCommand
	SenderID  string
	TaggedIDs []string
	// Timestamp is the message time in unix seconds. Zero means now.
	Timestamp int64
}

// ScoreResult is the outcome of reporting a match.
type ScoreResult struct {
	Verdict rules.Verdict
	// Match is the stored match when Recorded, otherwise the rejected report.
	Match *model.Match
	// Players are the updated records in slot order. Zero when not recorded.
	Players  [model.PlayersPerMatch]model.Player
	Recorded bool
}

// ScoreService records live match reports.
type ScoreService struct {
	store  repository.Store
	roster *RosterService
	ledger *lock.Ledger
	engine *rating.Engine
	rules  rules.Rules
}

// NewScoreService creates a new ScoreService instance.
func NewScoreService(
	store repository.Store,
	rosterSvc *RosterService,
	ledger *lock.Ledger,
	engine *rating.Engine,
	r rules.Rules,
) *ScoreService {
	return &ScoreService{
		store:  store,
		roster: rosterSvc,
		ledger: ledger,
		engine: engine,
		rules:  r,
	}
}

// Record resolves, validates and rates a score report. A rejected report is
// returned with Recorded false and a nil error. Resolution failures wrap
// roster.ErrResolution.
func (s *ScoreService) Record(ctx context.Context, in ScoreInput) (*ScoreResult, error) {
	table, err := s.roster.Table(ctx)
	if err != nil {
		return nil, err
	}
	names, err := roster.Resolve(in.Command.Mentions, in.SenderID, in.TaggedIDs, table)
	if err != nil {
		return nil, err
	}
	m, err := buildMatch(in, names)
	if err != nil {
		return nil, err
	}

	res := &ScoreResult{Verdict: s.rules.Validate(m), Match: m}
	if !res.Verdict.OK() {
		return res, nil
	}

	err = s.ledger.WithPlayers(ctx, names, func() error {
		return s.store.InTx(ctx, func(tx repository.Store) error {
			var current [model.PlayersPerMatch]model.Player
			for i, name := range m.Players {
				p, err := tx.Players().GetByName(ctx, name)
				if errors.Is(err, repository.ErrPlayerNotFound) {
					return fmt.Errorf("%w: %s", ErrMissingStats, name)
				}
				if err != nil {
					return fmt.Errorf("failed to load %s: %w", name, err)
				}
				current[i] = *p
			}

			out := s.engine.Apply(m, current)
			m.RatingsBefore = out.RatingsBefore
			m.RatingDelta = out.Delta

			stored, err := tx.Matches().Create(ctx, m)
			if err != nil {
				return fmt.Errorf("failed to save match: %w", err)
			}
			for i := range out.Players {
				if err := tx.Players().Update(ctx, &out.Players[i]); err != nil {
					return fmt.Errorf("failed to update %s: %w", out.Players[i].Name, err)
				}
			}
			res.Match = stored
			res.Players = out.Players
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	res.Recorded = true
	log.Info().
		Int64("match_id", res.Match.ID).
		Strs("players", names).
		Int("score_a", m.ScoreA).
		Int("score_b", m.ScoreB).
		Float64("delta", m.RatingDelta).
		Msg("Match recorded")
	return res, nil
}

func buildMatch(in ScoreInput, names []string) (*model.Match, error) {
	if len(names) != model.PlayersPerMatch {
		return nil, fmt.Errorf("%w: got %d", ErrPlayerCount, len(names))
	}
	m := &model.Match{
		ScoreA:    in.Command.ScoreA,
		ScoreB:    in.Command.ScoreB,
		Timestamp: in.Timestamp,
	}
	if m.Timestamp == 0 {
		m.Timestamp = time.Now().Unix()
	}

	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, name)
		}
		seen[name] = true
		m.Players[i] = name
		m.Points[i] = in.Command.Mentions[i].Points
		m.Sinks[i] = in.Command.Mentions[i].Sinks
	}
	return m, nil
}
