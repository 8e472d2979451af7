package service

import (
	"context"
	"fmt"

	"scorebot/internal/model"
	"scorebot/internal/repository"
)

// PartnerRecord is how two players have done as teammates.
type PartnerRecord struct {
	Wins   int
	Losses int
	// Delta is the summed rating change each partner got from these matches.
	Delta float64
}

// HistoryEntry is one match from a player's point of view.
type HistoryEntry struct {
	Match  *model.Match
	Slot   int
	Before float64
	After  float64
	Won    bool
}

// HistoryService answers questions about past matches.
type HistoryService struct {
	store repository.Store
	limit int
}

// NewHistoryService creates a new HistoryService instance.
func NewHistoryService(store repository.Store, limit int) *HistoryService {
	if limit <= 0 {
		limit = 5
	}
	return &HistoryService{store: store, limit: limit}
}

// Partner returns the record of a and b playing on the same team.
func (s *HistoryService) Partner(ctx context.Context, a, b string) (*PartnerRecord, error) {
	matches, err := s.store.Matches().ListOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	rec := &PartnerRecord{}
	for _, m := range matches {
		sa, sb := m.Slot(a), m.Slot(b)
		if sa < 0 || sb < 0 || model.OnTeamA(sa) != model.OnTeamA(sb) {
			continue
		}
		if m.Won(sa) {
			rec.Wins++
		} else {
			rec.Losses++
		}
		rec.Delta += m.DeltaFor(sa)
	}
	return rec, nil
}

// History returns the player's most recent matches, newest first.
func (s *HistoryService) History(ctx context.Context, name string) ([]HistoryEntry, error) {
	matches, err := s.store.Matches().ListForPlayer(ctx, name, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for %s: %w", name, err)
	}

	out := make([]HistoryEntry, 0, len(matches))
	for _, m := range matches {
		slot := m.Slot(name)
		before := m.RatingsBefore[slot]
		out = append(out, HistoryEntry{
			Match:  m,
			Slot:   slot,
			Before: before,
			After:  before + m.DeltaFor(slot),
			Won:    m.Won(slot),
		})
	}
	return out, nil
}
