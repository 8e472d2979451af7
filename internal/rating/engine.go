// Package rating implements the team Elo rating used for every recorded match.
//
// A match is rated as a single game between two pseudo-players whose rating
// is the mean of their members. The observed result is the share of points
// team A scored rather than a win/loss bit, so margin matters. Two multipliers
// shape the K-factor: a margin bucket and a damping term that keeps results
// involving brand-new players from swinging ratings too hard.
package rating

import (
	"math"

	"scorebot/internal/model"
)

// Engine computes rating changes. The zero value is not usable; use New or Default.
type Engine struct {
	K               float64
	MinWinningScore int
	MaturityGames   float64
}

// Default returns the engine with K=32, games to 7 and maturity after 20 games.
func Default() *Engine {
	return New(32, 7, 20)
}

// New returns an engine with the given constants.
func New(k float64, minWinningScore int, maturityGames float64) *Engine {
	return &Engine{K: k, MinWinningScore: minWinningScore, MaturityGames: maturityGames}
}

// Expected returns team A's expected score against team B.
func Expected(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// Share returns the fraction of points scored by team A, 0.5 when nobody scored.
func Share(scoreA, scoreB int) float64 {
	total := scoreA + scoreB
	if total == 0 {
		return 0.5
	}
	return float64(scoreA) / float64(total)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Margin returns the K multiplier for a score and the scores with the losing
// side clamped for that bucket.
func (e *Engine) Margin(scoreA, scoreB int) (mult float64, clampedA, clampedB int) {
	hi, d := scoreA, scoreA-scoreB
	if scoreB > scoreA {
		hi, d = scoreB, scoreB-scoreA
	}

	loserCap := -1
	switch {
	case d >= 2 && d <= 4 && hi > e.MinWinningScore:
		mult, loserCap = 1.25, 5
	case d >= 5 && d <= 6:
		mult, loserCap = 1.75, 2
	case d == 7:
		mult = 2.0
	default:
		mult = 1.0
	}

	clampedA, clampedB = scoreA, scoreB
	if loserCap >= 0 {
		if scoreA < scoreB {
			clampedA = min(scoreA, loserCap)
		} else {
			clampedB = min(scoreB, loserCap)
		}
	}
	return mult, clampedA, clampedB
}

// Damping returns the experience multiplier for two teams' average games played.
func (e *Engine) Damping(avgGamesA, avgGamesB float64) float64 {
	if avgGamesA >= e.MaturityGames && avgGamesB >= e.MaturityGames {
		return 1.0
	}
	lo, hi := math.Min(avgGamesA, avgGamesB), math.Max(avgGamesA, avgGamesB)
	return sigmoid(lo / math.Max(1, hi))
}

// Delta returns team A's rating change. Team B changes by the negation.
func (e *Engine) Delta(ratingsA, ratingsB [2]float64, gamesA, gamesB [2]int, scoreA, scoreB int) float64 {
	teamA := (ratingsA[0] + ratingsA[1]) / 2
	teamB := (ratingsB[0] + ratingsB[1]) / 2
	expected := Expected(teamA, teamB)

	mult, a, b := e.Margin(scoreA, scoreB)
	share := Share(a, b)

	avgA := float64(gamesA[0]+gamesA[1]) / 2
	avgB := float64(gamesB[0]+gamesB[1]) / 2
	damping := e.Damping(avgA, avgB)

	return damping * mult * e.K * (share - expected)
}

// Outcome is the result of rating one match.
type Outcome struct {
	// Players are updated copies in match slot order.
	Players       [model.PlayersPerMatch]model.Player
	RatingsBefore [model.PlayersPerMatch]float64
	Delta         float64
}

// Apply rates a match against the players' current records. players must be
// in the match's slot order. Inputs are not modified.
func (e *Engine) Apply(m *model.Match, players [model.PlayersPerMatch]model.Player) Outcome {
	var out Outcome
	for i, p := range players {
		out.RatingsBefore[i] = p.Rating
	}

	out.Delta = e.Delta(
		[2]float64{players[0].Rating, players[1].Rating},
		[2]float64{players[2].Rating, players[3].Rating},
		[2]int{players[0].Games, players[1].Games},
		[2]int{players[2].Games, players[3].Games},
		m.ScoreA, m.ScoreB,
	)

	for i, p := range players {
		if model.OnTeamA(i) {
			p.Rating += out.Delta
		} else {
			p.Rating -= out.Delta
		}
		p.Games++
		if m.Won(i) {
			p.Wins++
		} else {
			p.Losses++
		}
		p.Points += m.Points[i]
		p.Sinks += m.Sinks[i]
		out.Players[i] = p
	}
	return out
}
