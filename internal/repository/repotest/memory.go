// Package repotest provides an in-memory repository.Store for tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"scorebot/internal/model"
	"scorebot/internal/repository"
)

type state struct {
	players map[string]*model.Player
	matches map[int64]*model.Match
	nextPID int64
	nextMID int64
}

func (s *state) clone() *state {
	out := &state{
		players: make(map[string]*model.Player, len(s.players)),
		matches: make(map[int64]*model.Match, len(s.matches)),
		nextPID: s.nextPID,
		nextMID: s.nextMID,
	}
	for k, p := range s.players {
		cp := *p
		out.players[k] = &cp
	}
	for k, m := range s.matches {
		cp := *m
		out.matches[k] = &cp
	}
	return out
}

// MemoryStore is a repository.Store kept in maps. Transactions snapshot the
// whole state and restore it when the callback fails.
type MemoryStore struct {
	mu   *sync.Mutex
	st   **state
	inTx bool
	// FailWrites makes every write return this error when set.
	FailWrites error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	st := &state{
		players: map[string]*model.Player{},
		matches: map[int64]*model.Match{},
	}
	return &MemoryStore{mu: &sync.Mutex{}, st: &st}
}

func (m *MemoryStore) Players() repository.Players { return &players{m} }
func (m *MemoryStore) Matches() repository.Matches { return &matches{m} }

// InTx runs fn and rolls back every change if it returns an error.
func (m *MemoryStore) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	snapshot := (*m.st).clone()
	m.mu.Unlock()

	tx := &MemoryStore{mu: m.mu, st: m.st, inTx: true, FailWrites: m.FailWrites}
	if err := fn(tx); err != nil {
		m.mu.Lock()
		*m.st = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// AddPlayer inserts a player directly, for test setup.
func (m *MemoryStore) AddPlayer(p model.Player) *model.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := *m.st
	st.nextPID++
	p.ID = st.nextPID
	if p.Rating == 0 {
		p.Rating = model.DefaultRating
	}
	cp := p
	st.players[p.Name] = &cp
	out := cp
	return &out
}

// Player returns a copy of a stored player, or nil.
func (m *MemoryStore) Player(name string) *model.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := (*m.st).players[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// MatchCount returns the number of stored matches.
func (m *MemoryStore) MatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len((*m.st).matches)
}

type players struct{ m *MemoryStore }

func (r *players) Create(ctx context.Context, externalID, name string, rating float64) (*model.Player, error) {
	if r.m.FailWrites != nil {
		return nil, r.m.FailWrites
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := *r.m.st
	if _, ok := st.players[name]; ok {
		return nil, repository.ErrPlayerExists
	}
	if externalID != "" {
		for _, p := range st.players {
			if p.ExternalID == externalID {
				return nil, repository.ErrPlayerExists
			}
		}
	}
	st.nextPID++
	now := time.Now()
	p := &model.Player{ID: st.nextPID, ExternalID: externalID, Name: name, Rating: rating, CreatedAt: now, UpdatedAt: now}
	st.players[name] = p
	cp := *p
	return &cp, nil
}

func (r *players) GetByName(ctx context.Context, name string) (*model.Player, error) {
	if p := r.m.Player(name); p != nil {
		return p, nil
	}
	return nil, repository.ErrPlayerNotFound
}

func (r *players) GetByExternalID(ctx context.Context, externalID string) (*model.Player, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range (*r.m.st).players {
		if externalID != "" && p.ExternalID == externalID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrPlayerNotFound
}

func (r *players) all() []*model.Player {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*model.Player, 0, len((*r.m.st).players))
	for _, p := range (*r.m.st).players {
		cp := *p
		out = append(out, &cp)
	}
	return out
}

func (r *players) List(ctx context.Context) ([]*model.Player, error) {
	out := r.all()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *players) Top(ctx context.Context, minGames, limit int) ([]*model.Player, error) {
	var out []*model.Player
	for _, p := range r.all() {
		if p.Games > minGames {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *players) Update(ctx context.Context, p *model.Player) error {
	if r.m.FailWrites != nil {
		return r.m.FailWrites
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := (*r.m.st).players[p.Name]
	if !ok {
		return repository.ErrPlayerNotFound
	}
	cur.Rating, cur.Games, cur.Wins, cur.Losses = p.Rating, p.Games, p.Wins, p.Losses
	cur.Points, cur.Sinks = p.Points, p.Sinks
	cur.UpdatedAt = time.Now()
	return nil
}

func (r *players) AdjustRating(ctx context.Context, name string, delta float64) (*model.Player, error) {
	if r.m.FailWrites != nil {
		return nil, r.m.FailWrites
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := (*r.m.st).players[name]
	if !ok {
		return nil, repository.ErrPlayerNotFound
	}
	cur.Rating += delta
	cp := *cur
	return &cp, nil
}

type matches struct{ m *MemoryStore }

func (r *matches) Create(ctx context.Context, in *model.Match) (*model.Match, error) {
	if r.m.FailWrites != nil {
		return nil, r.m.FailWrites
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := *r.m.st
	st.nextMID++
	cp := *in
	cp.ID = st.nextMID
	cp.CreatedAt = time.Now()
	st.matches[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *matches) GetByID(ctx context.Context, id int64) (*model.Match, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	m, ok := (*r.m.st).matches[id]
	if !ok {
		return nil, repository.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *matches) Delete(ctx context.Context, id int64) error {
	if r.m.FailWrites != nil {
		return r.m.FailWrites
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := (*r.m.st).matches[id]; !ok {
		return repository.ErrMatchNotFound
	}
	delete((*r.m.st).matches, id)
	return nil
}

func (r *matches) ordered() []*model.Match {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*model.Match, 0, len((*r.m.st).matches))
	for _, m := range (*r.m.st).matches {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *matches) ListOrdered(ctx context.Context) ([]*model.Match, error) {
	return r.ordered(), nil
}

func (r *matches) ListForPlayer(ctx context.Context, name string, limit int) ([]*model.Match, error) {
	all := r.ordered()
	var out []*model.Match
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if all[i].Slot(name) >= 0 {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (r *matches) LatestTimestamp(ctx context.Context) (int64, error) {
	all := r.ordered()
	if len(all) == 0 {
		return 0, nil
	}
	return all[len(all)-1].Timestamp, nil
}

func (r *matches) UpdateSnapshot(ctx context.Context, id int64, before [model.PlayersPerMatch]float64, delta float64) error {
	if r.m.FailWrites != nil {
		return r.m.FailWrites
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	m, ok := (*r.m.st).matches[id]
	if !ok {
		return repository.ErrMatchNotFound
	}
	m.RatingsBefore = before
	m.RatingDelta = delta
	return nil
}
