// Package rules decides whether a reported match may be recorded.
package rules

import (
	"fmt"

	"scorebot/internal/model"
)

// Rules holds the match acceptance thresholds.
type Rules struct {
	MinWinningScore int
	WinBy           int
	MercyThreshold  int
}

// Default returns the house rules: games to 7, win by 2, mercy above 4.
func Default() Rules {
	return Rules{MinWinningScore: 7, WinBy: 2, MercyThreshold: 4}
}

// Outcome classifies a verdict.
type Outcome int

const (
	Accepted Outcome = iota
	// Advisory is accepted but carries a note worth showing.
	Advisory
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Advisory:
		return "advisory"
	default:
		return "rejected"
	}
}

// Verdict is the result of validating one match.
type Verdict struct {
	Outcome Outcome
	// Note is the last message produced while validating, empty when clean.
	Note string
}

// OK reports whether the match may be recorded.
func (v Verdict) OK() bool {
	return v.Outcome != Rejected
}

// Validate applies the rules to a match. Only the minimum score and the win-by
// margin reject; every other finding is advisory, and the note from the last
// check that fired is the one returned.
func (r Rules) Validate(m *model.Match) Verdict {
	hi, lo := m.ScoreA, m.ScoreB
	if lo > hi {
		hi, lo = lo, hi
	}
	diff := hi - lo

	v := Verdict{Outcome: Accepted}
	reject := func(note string) {
		v.Outcome = Rejected
		v.Note = note
	}
	advise := func(note string) {
		v.Outcome = Advisory
		v.Note = note
	}

	if hi < r.MinWinningScore {
		reject(fmt.Sprintf("Games to less than %d are for the weak. Disregarded.", r.MinWinningScore))
	}
	if diff < r.WinBy {
		reject(fmt.Sprintf("It's win by %d, numbnut.", r.WinBy))
	}
	if v.Outcome == Rejected {
		return v
	}

	teams := [2]struct {
		label string
		slots [2]int
		total int
	}{
		{"First", [2]int{0, 1}, m.ScoreA},
		{"Second", [2]int{2, 3}, m.ScoreB},
	}
	totalSinks := 0
	for _, team := range teams {
		points := 0
		for _, s := range team.slots {
			points += m.Points[s]
			totalSinks += m.Sinks[s]
		}
		if points != 0 && points != team.total {
			advise(fmt.Sprintf("Your individual points don't add up to your total. *cough* %s team. *cough*", team.label))
		}
	}
	if totalSinks > m.ScoreA+m.ScoreB {
		advise("More sinks than total points? Nice.")
	}
	for i, name := range m.Players {
		if m.Points[i] < m.Sinks[i] {
			advise(fmt.Sprintf("I don't know how %s sunk more times than scored, but I'm impressed.", name))
		}
	}

	if diff > r.MercyThreshold {
		advise("I smell a naked lap coming.")
	}
	return v
}
