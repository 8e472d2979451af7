package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	name    string
	aliases []string
}

func (s *stubHandler) Name() string        { return s.name }
func (s *stubHandler) Aliases() []string   { return s.aliases }
func (s *stubHandler) Description() string { return "stub" }
func (s *stubHandler) Usage() string       { return "/" + s.name }
func (s *stubHandler) AdminOnly() bool     { return false }

func (s *stubHandler) Handle(ctx context.Context, req *Request) (string, error) {
	return s.name, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	lb := &stubHandler{name: "leaderboard", aliases: []string{"lb"}}
	require.NoError(t, r.Register(lb))
	require.NoError(t, r.Register(&stubHandler{name: "help"}))

	h, ok := r.Get("lb")
	require.True(t, ok)
	assert.Same(t, lb, h)

	_, ok = r.Get("nope")
	assert.False(t, ok)

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, []string{"help", "lb", "leaderboard"}, r.Commands())
	assert.Equal(t, "help", r.List()[0].Name())
}

func TestRegistryRejects(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&stubHandler{}))

	require.NoError(t, r.Register(&stubHandler{name: "score"}))
	assert.Error(t, r.Register(&stubHandler{name: "points", aliases: []string{"score"}}))
	_, ok := r.Get("points")
	assert.False(t, ok, "failed registration must not leave partial keywords")

	assert.Panics(t, func() { r.MustRegister(&stubHandler{name: "score"}) })
}
