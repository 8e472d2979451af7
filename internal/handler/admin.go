package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"scorebot/internal/command"
	"scorebot/internal/parse"
	"scorebot/internal/pkg/lock"
	"scorebot/internal/repository"
	"scorebot/internal/roster"
	"scorebot/internal/service"
)

// AddHandler registers a tagged user under a display name.
type AddHandler struct {
	keyword string
	admin   *service.AdminService
}

// NewAddHandler creates a new AddHandler.
func NewAddHandler(keyword string, admin *service.AdminService) *AddHandler {
	return &AddHandler{keyword: keyword, admin: admin}
}

func (h *AddHandler) Name() string        { return h.keyword }
func (h *AddHandler) Aliases() []string   { return nil }
func (h *AddHandler) Description() string { return "register a player" }
func (h *AddHandler) Usage() string       { return fmt.Sprintf("Must be `/%s @A, Full Name`", h.keyword) }
func (h *AddHandler) AdminOnly() bool     { return true }

func (h *AddHandler) Handle(ctx context.Context, req *command.Request) (string, error) {
	cmd, ok := req.Command.(*parse.AddPlayerCommand)
	if !ok {
		return h.Usage(), nil
	}
	tagged := req.TaggedIDs()
	if len(tagged) == 0 {
		return msgNoTags, nil
	}

	p, err := h.admin.AddPlayer(ctx, tagged[0], cmd.FullName)
	if errors.Is(err, repository.ErrPlayerExists) {
		return "User already added.", nil
	}
	if err != nil {
		return "", err
	}

	log.Info().
		Str("admin_id", req.SenderID()).
		Str("target_id", tagged[0]).
		Str("operation", "add").
		Msg("Admin operation executed")
	return fmt.Sprintf("User %s added.", p.Name), nil
}

// BotchHandler docks or restores the botch penalty for a tagged player.
type BotchHandler struct {
	admin   *service.AdminService
	roster  *service.RosterService
	unbotch bool
}

// NewBotchHandler creates a BotchHandler. With unbotch set it gives the
// penalty back.
func NewBotchHandler(admin *service.AdminService, rs *service.RosterService, unbotch bool) *BotchHandler {
	return &BotchHandler{admin: admin, roster: rs, unbotch: unbotch}
}

func (h *BotchHandler) Name() string {
	if h.unbotch {
		return "unbotch"
	}
	return "botch"
}

func (h *BotchHandler) Aliases() []string { return nil }
func (h *BotchHandler) AdminOnly() bool   { return true }

func (h *BotchHandler) Description() string {
	if h.unbotch {
		return "give a botch penalty back"
	}
	return "dock a player for a botched game"
}

func (h *BotchHandler) Usage() string {
	return fmt.Sprintf("Must be `/%s @A, reason`", h.Name())
}

func (h *BotchHandler) Handle(ctx context.Context, req *command.Request) (string, error) {
	tagged := req.TaggedIDs()
	if len(tagged) == 0 {
		return msgNoTags, nil
	}
	found, err := names(ctx, h.roster, tagged[0])
	if errors.Is(err, roster.ErrUnregistered) {
		return "Must add user before botching.", nil
	}
	if err != nil {
		return "", err
	}
	reason := argsOf(req).Text
	if reason == "" {
		return "Must include reason for botching.", nil
	}

	adjust, label := h.admin.Botch, "BOTCH"
	if h.unbotch {
		adjust, label = h.admin.Unbotch, "UNBOTCH"
	}
	p, err := adjust(ctx, found[0])
	switch {
	case errors.Is(err, repository.ErrPlayerNotFound):
		return "Must add user before botching.", nil
	case errors.Is(err, lock.ErrLockTimeout):
		return msgBusy, nil
	case err != nil:
		return "", err
	}

	before := p.Rating + h.admin.Penalty()
	if h.unbotch {
		before = p.Rating - h.admin.Penalty()
	}
	return fmt.Sprintf("%s %s (%.0f -> %.0f) for:\n\n%s.", label, p.Name, before, p.Rating, reason), nil
}

// StrikeHandler deletes a match by id.
type StrikeHandler struct {
	admin *service.AdminService
}

// NewStrikeHandler creates a new StrikeHandler.
func NewStrikeHandler(admin *service.AdminService) *StrikeHandler {
	return &StrikeHandler{admin: admin}
}

func (h *StrikeHandler) Name() string        { return "strike" }
func (h *StrikeHandler) Aliases() []string   { return nil }
func (h *StrikeHandler) Description() string { return "delete a match by id" }
func (h *StrikeHandler) Usage() string       { return "Must be `/strike MATCH_ID`" }
func (h *StrikeHandler) AdminOnly() bool     { return true }

func (h *StrikeHandler) Handle(ctx context.Context, req *command.Request) (string, error) {
	args := argsOf(req).Args()
	if len(args) == 0 {
		return h.Usage(), nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return h.Usage(), nil
	}

	m, err := h.admin.Strike(ctx, id)
	switch {
	case errors.Is(err, repository.ErrMatchNotFound):
		return "That match doesn't exist in the database.", nil
	case errors.Is(err, lock.ErrLockTimeout):
		return msgBusy, nil
	case err != nil:
		return "", err
	}
	return fmt.Sprintf("Match %d deleted.\n%s\nRun /refresh to rebuild ratings.", id, FormatTeams(m)), nil
}

// RefreshHandler replays the whole history and shows the new leaderboard.
type RefreshHandler struct {
	replay *service.ReplayService
	board  *service.LeaderboardService
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(replay *service.ReplayService, board *service.LeaderboardService) *RefreshHandler {
	return &RefreshHandler{replay: replay, board: board}
}

func (h *RefreshHandler) Name() string        { return "refresh" }
func (h *RefreshHandler) Aliases() []string   { return nil }
func (h *RefreshHandler) Description() string { return "recompute every rating from the match history" }
func (h *RefreshHandler) Usage() string       { return "`/refresh`" }
func (h *RefreshHandler) AdminOnly() bool     { return true }

func (h *RefreshHandler) Handle(ctx context.Context, req *command.Request) (string, error) {
	if _, err := h.replay.Refresh(ctx); err != nil {
		if errors.Is(err, lock.ErrBusy) {
			return "A refresh is already running, hang tight.", nil
		}
		return "", err
	}
	top, err := h.board.Top(ctx)
	if err != nil {
		return "", err
	}
	return "Leaderboard refreshed.\n\n" + FormatLeaderboard(top), nil
}
