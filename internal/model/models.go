// Package model defines the data models for the scorebot.
package model

import "time"

// Default rating values for newly registered players.
const (
	DefaultRating   = 1000.0
	PlayersPerMatch = 4
)

// Player holds one registered player's rating and career record.
// Name is the canonical key; ExternalID is the GroupMe user id used to resolve mentions.
type Player struct {
	ID         int64     `db:"id"`
	ExternalID string    `db:"external_id"`
	Name       string    `db:"name"`
	Rating     float64   `db:"rating"`
	Games      int       `db:"games"`
	Wins       int       `db:"wins"`
	Losses     int       `db:"losses"`
	Points     int       `db:"points"`
	Sinks      int       `db:"sinks"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Reset puts the player back to a clean record at the given rating.
func (p *Player) Reset(rating float64) {
	p.Rating = rating
	p.Games = 0
	p.Wins = 0
	p.Losses = 0
	p.Points = 0
	p.Sinks = 0
}

// Match is one recorded game between two teams of two.
// Players[0] and Players[1] form team A, Players[2] and Players[3] team B.
type Match struct {
	ID            int64                    `db:"id"`
	Players       [PlayersPerMatch]string  `db:"-"`
	ScoreA        int                      `db:"score_a"`
	ScoreB        int                      `db:"score_b"`
	Points        [PlayersPerMatch]int     `db:"-"`
	Sinks         [PlayersPerMatch]int     `db:"-"`
	Timestamp     int64                    `db:"timestamp"`
	RatingsBefore [PlayersPerMatch]float64 `db:"-"`
	RatingDelta   float64                  `db:"rating_delta"`
	CreatedAt     time.Time                `db:"created_at"`
}

// TeamAWon reports whether team A won. A tie counts as a team B win so that
// every player's wins+losses stays equal to games.
func (m *Match) TeamAWon() bool {
	return m.ScoreA > m.ScoreB
}

// Slot returns the position of the named player in the match, or -1.
func (m *Match) Slot(name string) int {
	for i, p := range m.Players {
		if p == name {
			return i
		}
	}
	return -1
}

// OnTeamA reports whether the slot belongs to team A.
func OnTeamA(slot int) bool {
	return slot == 0 || slot == 1
}

// DeltaFor returns the rating change the player in the given slot received.
func (m *Match) DeltaFor(slot int) float64 {
	if OnTeamA(slot) {
		return m.RatingDelta
	}
	return -m.RatingDelta
}

// Won reports whether the player in the given slot won the match.
func (m *Match) Won(slot int) bool {
	return OnTeamA(slot) == m.TeamAWon()
}
