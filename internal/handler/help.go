package handler

import (
	"context"
	"fmt"
	"strings"

	"scorebot/internal/command"
	"scorebot/internal/rules"
)

// HelpHandler explains how to use the bot.
type HelpHandler struct {
	registry     *command.Registry
	rules        rules.Rules
	scoreKeyword string
	verbose      bool
}

// NewHelpHandler creates a HelpHandler. The verbose form also lists every
// registered command.
func NewHelpHandler(registry *command.Registry, r rules.Rules, scoreKeyword string, verbose bool) *HelpHandler {
	return &HelpHandler{registry: registry, rules: r, scoreKeyword: scoreKeyword, verbose: verbose}
}

func (h *HelpHandler) Name() string {
	if h.verbose {
		return "helpv"
	}
	return "help"
}

func (h *HelpHandler) Aliases() []string { return nil }
func (h *HelpHandler) Usage() string     { return "`/help` or `/helpv`" }
func (h *HelpHandler) AdminOnly() bool   { return false }

func (h *HelpHandler) Description() string {
	if h.verbose {
		return "this message"
	}
	return "how to score a match"
}

func (h *HelpHandler) Handle(ctx context.Context, req *command.Request) (string, error) {
	var b strings.Builder
	if h.verbose {
		b.WriteString("Sup. It's ScoreBot. Here's the lowdown.\n\n" +
			"Anyone can send a score, but an admin has to like the message and send " +
			"`/check` before I officially record the match. Admins don't need approval.\n\n")
	}

	fmt.Fprintf(&b, "To score a match:\n"+
		"`/%[1]s @A @B @C @D, SCORE_AB - SCORE_CD` or\n"+
		"`/%[1]s @A (p1 s1) @B (p2 s2) @C (p3 s3) @D (p4 s4), SCORE_AB - SCORE_CD`\n"+
		"Leave yourself out and tag three to play as the first player.\n\n"+
		"Points and sinks are optional. If you log points, log them for both people on the team.\n\n"+
		"To see the leaderboard: `/leaderboard` or `/lb`\n"+
		"To get help: `/help` or `/helpv` for verbose help.\n\n",
		h.scoreKeyword)

	if h.verbose {
		b.WriteString("Commands:\n")
		for _, c := range h.registry.List() {
			admin := ""
			if c.AdminOnly() {
				admin = " (admin)"
			}
			fmt.Fprintf(&b, "/%s - %s%s\n", c.Name(), c.Description(), admin)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Games must be to %d, win by %d, no questions. Let's toss some dye.",
		h.rules.MinWinningScore, h.rules.WinBy)
	return b.String(), nil
}
