// Package bot receives GroupMe callbacks and routes them to command handlers.
package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"scorebot/internal/command"
	"scorebot/internal/config"
	"scorebot/internal/groupme"
	"scorebot/internal/handler"
	"scorebot/internal/parse"
)

const (
	msgNotAdmin = "Only an admin can use /%s."
	msgFailed   = "Something went wrong on my end. Try again later."
)

// Poster sends a reply to the group.
type Poster interface {
	Post(ctx context.Context, text string) error
}

// Pinger checks a backing dependency for the health endpoint.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds everything the bot needs to answer messages.
type Dependencies struct {
	Config   *config.Config
	Grammar  *parse.Grammar
	Registry *command.Registry
	Poster   Poster
	Taunter  *handler.Taunter
	// Health is optional. Without it /healthz always reports ok.
	Health Pinger
}

// Bot turns GroupMe messages into command replies.
type Bot struct {
	cfg      *config.Config
	grammar  *parse.Grammar
	registry *command.Registry
	poster   Poster
	taunter  *handler.Taunter
	health   Pinger
}

// New creates a new Bot with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	switch {
	case deps.Config == nil:
		return nil, errors.New("config is required")
	case deps.Registry == nil:
		return nil, errors.New("command registry is required")
	case deps.Poster == nil:
		return nil, errors.New("poster is required")
	}

	grammar := deps.Grammar
	if grammar == nil {
		grammar = parse.DefaultGrammar()
	}
	return &Bot{
		cfg:      deps.Config,
		grammar:  grammar,
		registry: deps.Registry,
		poster:   deps.Poster,
		taunter:  deps.Taunter,
		health:   deps.Health,
	}, nil
}

// Dispatch returns the reply to one message. An empty reply means the bot
// stays quiet.
func (b *Bot) Dispatch(ctx context.Context, msg *groupme.Message) string {
	logger := zerolog.Ctx(ctx)
	if msg.FromBot() || msg.System {
		return ""
	}

	kw, ok := parse.Keyword(msg.Text)
	if !ok {
		if b.taunter != nil && b.taunter.Mentioned(msg.Text) {
			return b.taunter.Reply(msg.Text)
		}
		return ""
	}

	h, ok := b.registry.Get(kw)
	if !ok {
		logger.Debug().Str("command", kw).Msg("Unknown command")
		return ""
	}

	admin := b.cfg.IsAdmin(msg.SenderID)
	if h.AdminOnly() && !admin {
		logger.Warn().
			Str("user_id", msg.SenderID).
			Str("command", kw).
			Msg("Non-admin attempted admin command")
		return fmt.Sprintf(msgNotAdmin, kw)
	}

	cmd, err := b.grammar.Parse(msg.Text)
	if err != nil {
		logger.Debug().Err(err).Str("command", kw).Msg("Command did not parse")
		return h.Usage()
	}

	reply, err := h.Handle(ctx, &command.Request{Message: msg, Command: cmd, Admin: admin})
	if err != nil {
		logger.Error().
			Err(err).
			Str("command", kw).
			Str("user_id", msg.SenderID).
			Msg("Command failed")
		return msgFailed
	}
	return reply
}
