package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"scorebot/internal/groupme"
	"scorebot/internal/parse"
	"scorebot/internal/repository"
)

// MessageSource reads group history.
type MessageSource interface {
	MessagesBefore(ctx context.Context, beforeID string, limit int) ([]groupme.Message, error)
}

// Verified is one approved score message and what recording it produced.
type Verified struct {
	Message groupme.Message
	Result  *ScoreResult
	Err     error
}

// VerifyService records score reports that an admin approved by liking them.
type VerifyService struct {
	source  MessageSource
	scores  *ScoreService
	store   repository.Store
	grammar *parse.Grammar
	admins  []string
	limit   int
}

// NewVerifyService creates a new VerifyService instance.
func NewVerifyService(
	source MessageSource,
	scores *ScoreService,
	store repository.Store,
	grammar *parse.Grammar,
	admins []string,
	limit int,
) *VerifyService {
	if limit <= 0 {
		limit = 10
	}
	return &VerifyService{
		source:  source,
		scores:  scores,
		store:   store,
		grammar: grammar,
		admins:  admins,
		limit:   limit,
	}
}

// Check scans the messages before beforeID for score reports liked by an
// admin and newer than the latest recorded match, and records them oldest
// first. Per-message failures are reported in the result, not as an error.
func (s *VerifyService) Check(ctx context.Context, beforeID string) ([]Verified, error) {
	msgs, err := s.source.MessagesBefore(ctx, beforeID, s.limit)
	if err != nil {
		return nil, err
	}
	latest, err := s.store.Matches().LatestTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest match time: %w", err)
	}

	var pending []groupme.Message
	for _, m := range msgs {
		if m.FromBot() || m.CreatedAt <= latest || !m.FavoritedByAny(s.admins) {
			continue
		}
		if kw, ok := parse.Keyword(m.Text); !ok || kw != s.grammar.ScoreKeyword {
			continue
		}
		pending = append(pending, m)
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt < pending[j].CreatedAt
	})

	out := make([]Verified, 0, len(pending))
	for _, m := range pending {
		v := Verified{Message: m}
		cmd, err := s.grammar.ParseScore(m.Text)
		if err == nil {
			v.Result, err = s.scores.Record(ctx, ScoreInput{
				Command:   cmd,
				SenderID:  m.SenderID,
				TaggedIDs: m.MentionIDs(),
				Timestamp: m.CreatedAt,
			})
		}
		if err != nil {
			log.Warn().Err(err).Str("message_id", m.ID).Msg("Approved score not recorded")
			v.Err = err
		}
		out = append(out, v)
	}
	return out, nil
}
