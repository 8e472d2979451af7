package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorebot/internal/command"
	"scorebot/internal/groupme"
	"scorebot/internal/model"
	"scorebot/internal/parse"
	"scorebot/internal/pkg/lock"
	"scorebot/internal/rating"
	"scorebot/internal/repository/repotest"
	"scorebot/internal/rules"
	"scorebot/internal/service"
)

type env struct {
	store    *repotest.MemoryStore
	ledger   *lock.Ledger
	roster   *service.RosterService
	scores   *service.ScoreService
	admin    *service.AdminService
	board    *service.LeaderboardService
	history  *service.HistoryService
	replay   *service.ReplayService
	registry *command.Registry
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := repotest.NewMemoryStore()
	for _, p := range []struct{ id, name string }{
		{"1", "alice"}, {"2", "bob"}, {"3", "carol"}, {"4", "dave"},
	} {
		store.AddPlayer(model.Player{ExternalID: p.id, Name: p.name})
	}
	ledger := lock.NewLedger(time.Second)
	engine := rating.Default()
	rs := service.NewRosterService(store, nil, model.DefaultRating)
	e := &env{
		store:   store,
		ledger:  ledger,
		roster:  rs,
		scores:  service.NewScoreService(store, rs, ledger, engine, rules.Default()),
		admin:   service.NewAdminService(store, ledger, model.DefaultRating, 10),
		board:   service.NewLeaderboardService(store, 0, 10),
		history: service.NewHistoryService(store, 5),
		replay:  service.NewReplayService(store, ledger, engine, nil, model.DefaultRating),
	}
	e.registry = command.NewRegistry()
	e.registry.MustRegister(
		NewScoreHandler("score", e.scores),
		NewAddHandler("add", e.admin),
		NewBotchHandler(e.admin, rs, false),
		NewBotchHandler(e.admin, rs, true),
		NewStrikeHandler(e.admin),
		NewRefreshHandler(e.replay, e.board),
		NewLeaderboardHandler(e.board),
		NewScoreboardHandler(e.board, rs),
		NewPartnerHandler(e.history, rs),
		NewHistoryHandler(e.history, rs),
		NewStatsHandler(e.board),
		NewHelpHandler(e.registry, rules.Default(), "score", false),
		NewHelpHandler(e.registry, rules.Default(), "score", true),
	)
	return e
}

// run parses text as if sent by sender with the given tags and runs it.
func (e *env) run(t *testing.T, text, sender string, admin bool, tagged ...string) string {
	t.Helper()
	kw, ok := parse.Keyword(text)
	require.True(t, ok)
	h, ok := e.registry.Get(kw)
	require.True(t, ok, "no handler for /%s", kw)

	cmd, err := parse.DefaultGrammar().Parse(text)
	require.NoError(t, err)

	msg := &groupme.Message{ID: "m1", Name: "Alice", SenderID: sender, Text: text, CreatedAt: time.Now().Unix()}
	if len(tagged) > 0 {
		msg.Attachments = []groupme.Attachment{{Type: "mentions", UserIDs: tagged}}
	}
	reply, err := h.Handle(context.Background(), &command.Request{Message: msg, Command: cmd, Admin: admin})
	require.NoError(t, err)
	return reply
}

func TestFormatMatch(t *testing.T) {
	res := &service.ScoreResult{
		Recorded: true,
		Verdict:  rules.Verdict{Outcome: rules.Advisory, Note: "I smell a naked lap coming."},
		Match: &model.Match{
			ID:          12,
			Players:     [4]string{"alice", "bob", "carol", "dave"},
			ScoreA:      2,
			ScoreB:      7,
			RatingDelta: -7.77777,
		},
	}
	want := "Match 12 recorded, score of 2 - 7.\n" +
		"-------------------------\n" +
		"L: -7.778  alice, bob\n" +
		"W: +7.778  carol, dave\n" +
		"-------------------------\n" +
		"I smell a naked lap coming."
	assert.Equal(t, want, FormatMatch(res))
}

func TestFormatLeaderboard(t *testing.T) {
	out := FormatLeaderboard([]*model.Player{
		{Name: "alice", Rating: 1007.78, Wins: 1},
		{Name: "dave", Rating: 992.2, Losses: 1},
	})
	assert.Equal(t, "LEADERBOARD\n-------------------------\n"+
		"1008   -   alice   (1 - 0)\n"+
		" 992   -   dave   (0 - 1)", out)
	assert.Contains(t, FormatLeaderboard(nil), "Nobody")
}

func TestScoreHandler(t *testing.T) {
	e := newEnv(t)

	reply := e.run(t, "/score @me @bob @carol @dave 7 2", "2", false, "2", "3", "4")
	assert.Equal(t, "Waiting for approval.", reply)
	assert.Zero(t, e.store.MatchCount())

	reply = e.run(t, "/score @me @bob @carol @dave 7 2", "1", true, "2", "3", "4")
	assert.Contains(t, reply, "Match 1 recorded, score of 7 - 2.")
	assert.Contains(t, reply, "W: +7.778  alice, bob")
	assert.Contains(t, reply, "L: -7.778  carol, dave")

	reply = e.run(t, "/score @me @bob @carol @dave 6 3", "1", true, "2", "3", "4")
	assert.Equal(t, "Games to less than 7 are for the weak. Disregarded.", reply)

	reply = e.run(t, "/score @me @bob @carol @erin 7 3", "1", true, "2", "3", "9")
	assert.Equal(t, msgUnresolved, reply)

	reply = e.run(t, "/score @me @bob @bob @dave 7 3", "1", true, "2", "2", "4")
	assert.Contains(t, reply, "both sides")
	assert.Equal(t, 1, e.store.MatchCount())
}

func TestAdminHandlers(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, "User Erin Example added.", e.run(t, "/add @erin, Erin Example", "1", true, "5"))
	assert.Equal(t, "User already added.", e.run(t, "/add @erin, Erin Again", "1", true, "5"))
	assert.Equal(t, msgNoTags, e.run(t, "/add @erin, Erin Example", "1", true))

	assert.Equal(t, "BOTCH bob (1000 -> 990) for:\n\nspilled the cup.",
		e.run(t, "/botch @bob, spilled the cup", "1", true, "2"))
	assert.Equal(t, "UNBOTCH bob (990 -> 1000) for:\n\nit was windy.",
		e.run(t, "/unbotch @bob, it was windy", "1", true, "2"))
	assert.Equal(t, "Must include reason for botching.", e.run(t, "/botch @bob", "1", true, "2"))
	assert.Equal(t, "Must add user before botching.", e.run(t, "/botch @zed, reasons", "1", true, "9"))

	e.run(t, "/score @me @bob @carol @dave 7 3", "1", true, "2", "3", "4")
	reply := e.run(t, "/strike 1", "1", true)
	assert.Contains(t, reply, "Match 1 deleted.\nalice and bob v. carol and dave, 7 - 3")
	assert.Equal(t, "That match doesn't exist in the database.", e.run(t, "/strike 1", "1", true))
	assert.Equal(t, "Must be `/strike MATCH_ID`", e.run(t, "/strike one", "1", true))

	reply = e.run(t, "/refresh", "1", true)
	assert.Contains(t, reply, "Leaderboard refreshed.")
	assert.Equal(t, model.DefaultRating, e.store.Player("alice").Rating)
	assert.Equal(t, 0, e.store.Player("alice").Games)
}

func TestRefreshBusy(t *testing.T) {
	e := newEnv(t)
	var reply string
	err := e.ledger.Exclusive(func() error {
		reply = e.run(t, "/refresh", "1", true)
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, reply, "already running")
}

func TestReadOnlyHandlers(t *testing.T) {
	e := newEnv(t)
	e.run(t, "/score @me @bob @carol @dave 7 2", "1", true, "2", "3", "4")
	e.run(t, "/score @me @bob @carol @dave 5 7", "1", true, "2", "3", "4")

	lb := e.run(t, "/lb", "3", false)
	assert.Contains(t, lb, "LEADERBOARD")
	assert.Contains(t, lb, "alice")

	partner := e.run(t, "/partner @bob", "1", false, "2")
	assert.Contains(t, partner, "alice, bob\nW-L: (1 - 1), ELO: ")
	assert.Equal(t, "Tag one and only one person.", e.run(t, "/partner", "1", false))
	assert.Equal(t, "One of you is not in the system.", e.run(t, "/partner @zed", "1", false, "9"))

	board := e.run(t, "/scoreboard @carol", "1", false, "3")
	assert.Contains(t, board, "carol: (1 - 1) ELO of ")
	assert.Contains(t, board, "alice: (1 - 1) ELO of ")
	assert.Equal(t, "Must tag 1 other person.", e.run(t, "/scoreboard", "1", false))

	hist := e.run(t, "/history @dave", "1", false, "4")
	assert.Contains(t, hist, "dave\n")
	assert.Contains(t, hist, "#2 W 5 - 7")
	assert.Contains(t, hist, "#1 L 7 - 2")

	stats := e.run(t, "/stats Carol", "1", false)
	assert.Contains(t, stats, "carol: ELO of ")
	assert.Contains(t, stats, "in 2 games")
	assert.Equal(t, "No player named crl. Did you mean carol?", e.run(t, "/stats crl", "1", false))
}

func TestHelp(t *testing.T) {
	e := newEnv(t)

	short := e.run(t, "/help", "1", false)
	assert.Contains(t, short, "/score @A @B @C @D")
	assert.Contains(t, short, "Games must be to 7, win by 2")
	assert.NotContains(t, short, "Commands:")

	verbose := e.run(t, "/helpv", "1", false)
	assert.Contains(t, verbose, "/check")
	assert.Contains(t, verbose, "/strike - delete a match by id (admin)")
	assert.Contains(t, verbose, "/leaderboard - show the leaderboard")
}

func TestTaunt(t *testing.T) {
	assert.Equal(t, Good, Classify("scorebot you're the best, love it"))
	assert.Equal(t, Bad, Classify("Scorebot is TRASH and rigged"))
	assert.Equal(t, Neutral, Classify("scorebot what's up"))
	assert.Equal(t, Neutral, Classify("great but terrible"))

	tr := NewTaunter("ScoreBot")
	tr.pick = func(int) int { return 0 }
	assert.True(t, tr.Mentioned("hey scorebot"))
	assert.False(t, tr.Mentioned("hey score bot"))
	assert.Equal(t, responses[Bad][0], tr.Reply("scorebot sucks"))
	assert.False(t, NewTaunter("").Mentioned("anything"))
}
