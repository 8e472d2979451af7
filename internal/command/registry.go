package command

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps command keywords to handlers.
type Registry struct {
	handlers map[string]Handler
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler under its name and aliases. A keyword that is
// already taken is an error.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("cannot register nil handler")
	}
	if h.Name() == "" {
		return fmt.Errorf("command name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{h.Name()}, h.Aliases()...)
	for _, k := range keys {
		if _, ok := r.handlers[k]; ok {
			return fmt.Errorf("command /%s already registered", k)
		}
	}
	for _, k := range keys {
		r.handlers[k] = h
	}
	return nil
}

// MustRegister registers every handler and panics on a conflict.
func (r *Registry) MustRegister(hs ...Handler) {
	for _, h := range hs {
		if err := r.Register(h); err != nil {
			panic(err)
		}
	}
}

// Get looks a handler up by keyword.
func (r *Registry) Get(keyword string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[keyword]
	return h, ok
}

// List returns each registered handler once, sorted by name.
func (r *Registry) List() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(r.handlers))
	list := make([]Handler, 0, len(r.handlers))
	for _, h := range r.handlers {
		if seen[h.Name()] {
			continue
		}
		seen[h.Name()] = true
		list = append(list, h)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// Commands returns every registered keyword, aliases included, sorted.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		commands = append(commands, k)
	}
	sort.Strings(commands)
	return commands
}

// Count returns the number of distinct handlers.
func (r *Registry) Count() int {
	return len(r.List())
}
