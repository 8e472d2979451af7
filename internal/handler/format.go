// Package handler implements the chat commands and formats their replies.
package handler

import (
	"fmt"
	"strings"

	"scorebot/internal/model"
	"scorebot/internal/service"
)

const rule = "-------------------------"

// Replies shared by several commands.
const (
	msgUnresolved = "Couldn't match the tags to registered players. " +
		"Check the formatting and that everyone has been added."
	msgBusy   = "Scorebot's busy, try again in a sec."
	msgFailed = "Something went wrong on my end. Try again later."
	msgNoTags = "No tags detected, try again."
)

// signed formats a rating change with four significant digits and a sign.
func signed(d float64) string {
	if d >= 0 {
		return fmt.Sprintf("+%.4g", d)
	}
	return fmt.Sprintf("%.4g", d)
}

// FormatMatch renders a recorded match with each team's rating change.
func FormatMatch(res *service.ScoreResult) string {
	m := res.Match
	tag := func(slot int) string {
		if m.Won(slot) {
			return "W: " + signed(m.DeltaFor(slot))
		}
		return "L: " + signed(m.DeltaFor(slot))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Match %d recorded, score of %d - %d.\n", m.ID, m.ScoreA, m.ScoreB)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%s  %s, %s\n", tag(0), m.Players[0], m.Players[1])
	fmt.Fprintf(&b, "%s  %s, %s\n", tag(2), m.Players[2], m.Players[3])
	b.WriteString(rule + "\n")
	if res.Verdict.Note != "" {
		b.WriteString(res.Verdict.Note)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatLeaderboard renders players as "rating - name (W - L)" rows.
func FormatLeaderboard(players []*model.Player) string {
	var b strings.Builder
	b.WriteString("LEADERBOARD\n")
	b.WriteString(rule + "\n")
	if len(players) == 0 {
		b.WriteString("Nobody has played enough games yet.")
		return b.String()
	}
	for _, p := range players {
		fmt.Fprintf(&b, "%4.0f   -   %s   (%d - %d)\n", p.Rating, p.Name, p.Wins, p.Losses)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatTeams renders "a and b v. c and d, x - y".
func FormatTeams(m *model.Match) string {
	return fmt.Sprintf("%s and %s v. %s and %s, %d - %d",
		m.Players[0], m.Players[1], m.Players[2], m.Players[3], m.ScoreA, m.ScoreB)
}
