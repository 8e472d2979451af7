package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scorebot/internal/model"
)

func match(a, b int) *model.Match {
	return &model.Match{
		Players: [4]string{"a", "b", "c", "d"},
		ScoreA:  a,
		ScoreB:  b,
	}
}

func TestValidateBoundaries(t *testing.T) {
	r := Default()

	tests := []struct {
		name    string
		a, b    int
		outcome Outcome
		note    string
	}{
		{"one point margin", 7, 6, Rejected, "It's win by 2, numbnut."},
		{"two point margin", 7, 5, Accepted, ""},
		{"four point margin", 7, 3, Accepted, ""},
		{"mercy", 7, 0, Advisory, "I smell a naked lap coming."},
		{"mercy for team b", 2, 7, Advisory, "I smell a naked lap coming."},
		{"below minimum", 6, 3, Rejected, "Games to less than 7 are for the weak. Disregarded."},
		{"both rejections keep the last note", 6, 5, Rejected, "It's win by 2, numbnut."},
		{"tie", 9, 9, Rejected, "It's win by 2, numbnut."},
		{"overtime", 12, 10, Accepted, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := r.Validate(match(tt.a, tt.b))
			assert.Equal(t, tt.outcome, v.Outcome)
			assert.Equal(t, tt.note, v.Note)
			assert.Equal(t, tt.outcome != Rejected, v.OK())
		})
	}
}

func TestValidateSubscoresWarnOnly(t *testing.T) {
	r := Default()

	m := match(7, 3)
	m.Points = [4]int{3, 3, 2, 1}
	v := r.Validate(m)
	assert.Equal(t, Advisory, v.Outcome)
	assert.Equal(t, "Your individual points don't add up to your total. *cough* First team. *cough*", v.Note)

	m = match(7, 3)
	m.Points = [4]int{4, 3, 2, 1}
	m.Sinks = [4]int{1, 4, 0, 0}
	v = r.Validate(m)
	assert.Equal(t, Advisory, v.Outcome)
	assert.Equal(t, "I don't know how b sunk more times than scored, but I'm impressed.", v.Note)

	m = match(7, 5)
	m.Sinks = [4]int{4, 4, 2, 3}
	v = r.Validate(m)
	assert.Equal(t, Advisory, v.Outcome)
	assert.Contains(t, v.Note, "sunk more times than scored")

	m = match(7, 3)
	m.Points = [4]int{4, 3, 2, 1}
	m.Sinks = [4]int{1, 1, 0, 1}
	v = r.Validate(m)
	assert.Equal(t, Accepted, v.Outcome)
	assert.Empty(t, v.Note)
}

func TestValidateMercyNoteWinsOverWarnings(t *testing.T) {
	m := match(7, 0)
	m.Points = [4]int{1, 1, 0, 0}
	v := Default().Validate(m)
	assert.Equal(t, Advisory, v.Outcome)
	assert.Equal(t, "I smell a naked lap coming.", v.Note)
}

func TestValidateCustomRules(t *testing.T) {
	r := Rules{MinWinningScore: 11, WinBy: 2, MercyThreshold: 8}
	assert.False(t, r.Validate(match(7, 3)).OK())
	assert.True(t, r.Validate(match(11, 9)).OK())
	assert.Equal(t, Advisory, r.Validate(match(11, 2)).Outcome)
}
