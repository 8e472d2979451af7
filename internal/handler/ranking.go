package handler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"scorebot/internal/command"
	"scorebot/internal/roster"
	"scorebot/internal/service"
)

// LeaderboardHandler shows the top of the ladder.
type LeaderboardHandler struct {
	board *service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(board *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

func (h *LeaderboardHandler) Name() string        { return "leaderboard" }
func (h *LeaderboardHandler) Aliases() []string   { return []string{"lb"} }
func (h *LeaderboardHandler) Description() string { return "show the leaderboard" }
func (h *LeaderboardHandler) Usage() string       { return "`/leaderboard` or `/lb`" }
func (h *LeaderboardHandler) AdminOnly() bool     { return false }

func (h *LeaderboardHandler) Handle(ctx context.Context, req *command.Request) (string, error) {
	top, err := h.board.Top(ctx)
	if err != nil {
		return "", err
	}
	return FormatLeaderboard(top), nil
}

// ScoreboardHandler shows the records of the tagged players and the sender.
type ScoreboardHandler struct {
	board  *service.LeaderboardService
	roster *service.RosterService
}

// NewScoreboardHandler creates a new ScoreboardHandler.
func NewScoreboardHandler(board *service.LeaderboardService, rs *service.RosterService) *ScoreboardHandler {
	return &ScoreboardHandler{board: board, roster: rs}
}

func (h *ScoreboardHandler) Name() string        { return "scoreboard" }
func (h *ScoreboardHandler) Aliases() []string   { return nil }
func (h *ScoreboardHandler) Description() string { return "compare your record with the tagged players" }
func (h *ScoreboardHandler) Usage() string       { return "`/scoreboard @A @B`" }
func (h *ScoreboardHandler) AdminOnly() bool     { return false }

func (h *ScoreboardHandler) Handle(ctx context.Context, req *command.Request) (string, error) {
	tagged := req.TaggedIDs()
	if len(tagged) == 0 {
		return "Must tag 1 other person.", nil
	}
	found, err := names(ctx, h.roster, append(slices.Clone(tagged), req.SenderID())...)
	if errors.Is(err, roster.ErrUnregistered) {
		return "One of the tagged is not in the system.", nil
	}
	if err != nil {
		return "", err
	}

	players, err := h.board.Scoreboard(ctx, found)
	if service.IsNotFound(err) {
		return "One of the tagged is not in the system.", nil
	}
	if err != nil {
		return "", err
	}

	lines := make([]string, len(players))
	for i, p := range players {
		lines[i] = fmt.Sprintf("%s: (%d - %d) ELO of %.0f", p.Name, p.Wins, p.Losses, p.Rating)
	}
	return strings.Join(lines, "\n"), nil
}

// PartnerHandler shows how the sender and one tagged player do as a team.
type PartnerHandler struct {
	history *service.HistoryService
	roster  *service.RosterService
}

// NewPartnerHandler creates a new PartnerHandler.
func NewPartnerHandler(history *service.HistoryService, rs *service.RosterService) *PartnerHandler {
	return &PartnerHandler{history: history, roster: rs}
}

func (h *PartnerHandler) Name() string        { return "partner" }
func (h *PartnerHandler) Aliases() []string   { return nil }
func (h *PartnerHandler) Description() string { return "your record as a team with the tagged player" }
func (h *PartnerHandler) Usage() string       { return "`/partner @A`" }
func (h *PartnerHandler) AdminOnly() bool     { return false }

func (h *PartnerHandler) Handle(ctx context.Context, req *command.Request) (string, error) {
	tagged := req.TaggedIDs()
	if len(tagged) != 1 {
		return "Tag one and only one person.", nil
	}
	found, err := names(ctx, h.roster, req.SenderID(), tagged[0])
	if errors.Is(err, roster.ErrUnregistered) {
		return "One of you is not in the system.", nil
	}
	if err != nil {
		return "", err
	}

	rec, err := h.history.Partner(ctx, found[0], found[1])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s, %s\nW-L: (%d - %d), ELO: %s",
		found[0], found[1], rec.Wins, rec.Losses, signed(rec.Delta)), nil
}

// HistoryHandler lists recent rating changes for the sender or a tagged player.
type HistoryHandler struct {
	history *service.HistoryService
	roster  *service.RosterService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history *service.HistoryService, rs *service.RosterService) *HistoryHandler {
	return &HistoryHandler{history: history, roster: rs}
}

func (h *HistoryHandler) Name() string        { return "history" }
func (h *HistoryHandler) Aliases() []string   { return nil }
func (h *HistoryHandler) Description() string { return "recent matches and rating changes" }
func (h *HistoryHandler) Usage() string       { return "`/history` or `/history @A`" }
func (h *HistoryHandler) AdminOnly() bool     { return false }

func (h *HistoryHandler) Handle(ctx context.Context, req *command.Request) (string, error) {
	id := req.SenderID()
	if tagged := req.TaggedIDs(); len(tagged) > 0 {
		id = tagged[0]
	}
	found, err := names(ctx, h.roster, id)
	if errors.Is(err, roster.ErrUnregistered) {
		return "That player is not in the system.", nil
	}
	if err != nil {
		return "", err
	}

	entries, err := h.history.History(ctx, found[0])
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return found[0] + " hasn't played yet.", nil
	}

	var b strings.Builder
	b.WriteString(found[0] + "\n" + rule + "\n")
	for _, e := range entries {
		result := "L"
		if e.Won {
			result = "W"
		}
		fmt.Fprintf(&b, "#%d %s %d - %d: %.0f -> %.0f (%s)\n",
			e.Match.ID, result, e.Match.ScoreA, e.Match.ScoreB, e.Before, e.After, signed(e.After-e.Before))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// StatsHandler looks a player up by name.
type StatsHandler struct {
	board *service.LeaderboardService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(board *service.LeaderboardService) *StatsHandler {
	return &StatsHandler{board: board}
}

func (h *StatsHandler) Name() string        { return "stats" }
func (h *StatsHandler) Aliases() []string   { return nil }
func (h *StatsHandler) Description() string { return "one player's career record by name" }
func (h *StatsHandler) Usage() string       { return "`/stats NAME`" }
func (h *StatsHandler) AdminOnly() bool     { return false }

func (h *StatsHandler) Handle(ctx context.Context, req *command.Request) (string, error) {
	query := argsOf(req).Text
	if query == "" {
		return h.Usage(), nil
	}

	p, suggestions, err := h.board.Lookup(ctx, query)
	if service.IsNotFound(err) {
		msg := fmt.Sprintf("No player named %s.", query)
		if len(suggestions) > 0 {
			msg += " Did you mean " + strings.Join(suggestions, ", ") + "?"
		}
		return msg, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: ELO of %.0f, (%d - %d) in %d games, %d points, %d sinks",
		p.Name, p.Rating, p.Wins, p.Losses, p.Games, p.Points, p.Sinks), nil
}
