package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"scorebot/internal/model"
)

func fresh(names ...string) [model.PlayersPerMatch]model.Player {
	var ps [model.PlayersPerMatch]model.Player
	for i, n := range names {
		ps[i] = model.Player{Name: n, Rating: model.DefaultRating}
	}
	return ps
}

func TestDeltaFreshPlayersSevenTwo(t *testing.T) {
	e := Default()
	d := e.Delta([2]float64{1000, 1000}, [2]float64{1000, 1000}, [2]int{}, [2]int{}, 7, 2)

	want := 0.5 * 1.75 * 32 * (7.0/9.0 - 0.5)
	assert.InDelta(t, want, d, 1e-9)
	assert.InDelta(t, 7.7778, d, 1e-4)
}

func TestMargin(t *testing.T) {
	e := Default()

	tests := []struct {
		a, b           int
		mult           float64
		clampA, clampB int
	}{
		{7, 5, 1.0, 7, 5},
		{9, 7, 1.25, 9, 5},
		{6, 10, 1.25, 5, 10},
		{7, 2, 1.75, 7, 2},
		{7, 1, 1.75, 7, 1},
		{8, 2, 1.75, 8, 2},
		{7, 0, 2.0, 7, 0},
		{12, 1, 1.0, 12, 1},
		{7, 6, 1.0, 7, 6},
	}
	for _, tt := range tests {
		mult, a, b := e.Margin(tt.a, tt.b)
		assert.Equal(t, tt.mult, mult, "%d-%d", tt.a, tt.b)
		assert.Equal(t, tt.clampA, a, "%d-%d", tt.a, tt.b)
		assert.Equal(t, tt.clampB, b, "%d-%d", tt.a, tt.b)
	}
}

func TestDamping(t *testing.T) {
	e := Default()
	assert.Equal(t, 0.5, e.Damping(0, 0))
	assert.Equal(t, 1.0, e.Damping(20, 35))
	assert.InDelta(t, 1/(1+math.Exp(-0.5)), e.Damping(10, 20), 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(-19.0/20.0)), e.Damping(19, 20), 1e-12)
}

func TestShareZeroZero(t *testing.T) {
	assert.Equal(t, 0.5, Share(0, 0))
	d := Default().Delta([2]float64{1000, 1000}, [2]float64{1000, 1000}, [2]int{}, [2]int{}, 0, 0)
	assert.Equal(t, 0.0, d)
}

func TestApply(t *testing.T) {
	e := Default()
	m := &model.Match{
		Players: [4]string{"a", "b", "c", "d"},
		ScoreA:  2,
		ScoreB:  7,
		Points:  [4]int{1, 1, 4, 3},
		Sinks:   [4]int{0, 1, 1, 0},
	}
	players := fresh("a", "b", "c", "d")
	out := e.Apply(m, players)

	require.Less(t, out.Delta, 0.0)
	assert.Equal(t, [4]float64{1000, 1000, 1000, 1000}, out.RatingsBefore)
	for i, p := range out.Players {
		assert.Equal(t, 1, p.Games)
		assert.Equal(t, p.Games, p.Wins+p.Losses)
		assert.Equal(t, m.Points[i], p.Points)
		assert.Equal(t, m.Sinks[i], p.Sinks)
	}
	assert.Equal(t, 0, out.Players[0].Wins)
	assert.Equal(t, 1, out.Players[2].Wins)
	assert.InDelta(t, 1000+out.Delta, out.Players[0].Rating, 1e-9)
	assert.InDelta(t, 1000-out.Delta, out.Players[3].Rating, 1e-9)
	assert.Equal(t, model.DefaultRating, players[0].Rating, "input must not change")
}

// Swapping the teams and the score negates the delta.
func TestDeltaSymmetryProperty(t *testing.T) {
	e := Default()
	rapid.Check(t, func(t *rapid.T) {
		ra := [2]float64{
			rapid.Float64Range(600, 1600).Draw(t, "ra0"),
			rapid.Float64Range(600, 1600).Draw(t, "ra1"),
		}
		rb := [2]float64{
			rapid.Float64Range(600, 1600).Draw(t, "rb0"),
			rapid.Float64Range(600, 1600).Draw(t, "rb1"),
		}
		ga := [2]int{rapid.IntRange(0, 60).Draw(t, "ga0"), rapid.IntRange(0, 60).Draw(t, "ga1")}
		gb := [2]int{rapid.IntRange(0, 60).Draw(t, "gb0"), rapid.IntRange(0, 60).Draw(t, "gb1")}
		sa := rapid.IntRange(0, 21).Draw(t, "sa")
		sb := rapid.IntRange(0, 21).Draw(t, "sb")

		forward := e.Delta(ra, rb, ga, gb, sa, sb)
		backward := e.Delta(rb, ra, gb, ga, sb, sa)
		if math.Abs(forward+backward) > 1e-9 {
			t.Fatalf("delta not antisymmetric: %v vs %v", forward, backward)
		}
	})
}

// The four ratings always sum to the same total before and after a match.
func TestApplyConservationProperty(t *testing.T) {
	e := Default()
	rapid.Check(t, func(t *rapid.T) {
		var players [4]model.Player
		before := 0.0
		for i := range players {
			players[i] = model.Player{
				Rating: rapid.Float64Range(500, 1800).Draw(t, "rating"),
				Games:  rapid.IntRange(0, 100).Draw(t, "games"),
			}
			before += players[i].Rating
		}
		m := &model.Match{
			ScoreA: rapid.IntRange(0, 21).Draw(t, "a"),
			ScoreB: rapid.IntRange(0, 21).Draw(t, "b"),
		}

		out := e.Apply(m, players)
		after := 0.0
		for _, p := range out.Players {
			after += p.Rating
			if p.Wins+p.Losses != p.Games {
				t.Fatalf("wins %d + losses %d != games %d", p.Wins, p.Losses, p.Games)
			}
		}
		if math.Abs(after-before) > 1e-6 {
			t.Fatalf("rating total changed: %v -> %v", before, after)
		}
	})
}
