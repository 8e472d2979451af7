// Package roster maps GroupMe user ids to canonical player names and resolves
// the mentions of a parsed command into players.
package roster

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"scorebot/internal/model"
	"scorebot/internal/parse"
)

var (
	// ErrResolution is matched by every mention resolution failure.
	ErrResolution = errors.New("cannot resolve mentions")
	// ErrMentionMismatch means the number of mentions does not match the tagged ids.
	ErrMentionMismatch = fmt.Errorf("%w: mention count does not match tagged users", ErrResolution)
	// ErrUnregistered means a tagged or sending user has no registered name.
	ErrUnregistered = fmt.Errorf("%w: user is not registered", ErrResolution)
	// ErrBadEntry is returned by ParseTable for a malformed id%name pair.
	ErrBadEntry = errors.New("malformed roster entry")
)

// Table maps GroupMe user ids to canonical player names.
type Table map[string]string

// ParseTable reads the legacy "id%name:id%name" roster format. Empty entries
// are skipped.
func ParseTable(raw string) (Table, error) {
	t := make(Table)
	for _, entry := range strings.Split(raw, ":") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, name, ok := strings.Cut(entry, "%")
		id, name = strings.TrimSpace(id), strings.TrimSpace(name)
		if !ok || id == "" || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadEntry, entry)
		}
		t[id] = name
	}
	return t, nil
}

// FromPlayers builds a table from registered players that carry an external id.
func FromPlayers(players []*model.Player) Table {
	t := make(Table, len(players))
	for _, p := range players {
		if p.ExternalID != "" {
			t[p.ExternalID] = p.Name
		}
	}
	return t
}

// Merge returns a new table with other's entries layered over t.
func (t Table) Merge(other Table) Table {
	out := make(Table, len(t)+len(other))
	for id, name := range t {
		out[id] = name
	}
	for id, name := range other {
		out[id] = name
	}
	return out
}

// Name looks up the player registered under a user id.
func (t Table) Name(id string) (string, bool) {
	name, ok := t[id]
	return name, ok
}

// String renders the table back into the legacy format, sorted by id.
func (t Table) String() string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id + "%" + t[id]
	}
	return strings.Join(parts, ":")
}

// Resolve turns a score command's mentions into canonical player names.
//
// A "me" mention is the sender. Every other mention consumes the next tagged
// id in order, so pairing relies on the client listing user_ids in the same
// order as the mentions appear in the text.
func Resolve(mentions []parse.Mention, senderID string, taggedIDs []string, table Table) ([]string, error) {
	ids, err := mentionIDs(mentions, senderID, taggedIDs)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		name, ok := table[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %s (mention %q)", ErrUnregistered, id, mentions[i].Name)
		}
		names[i] = name
	}
	return names, nil
}

func mentionIDs(mentions []parse.Mention, senderID string, taggedIDs []string) ([]string, error) {
	tagged := 0
	for _, m := range mentions {
		if !m.IsSelf() {
			tagged++
		}
	}
	if tagged != len(taggedIDs) {
		return nil, fmt.Errorf("%w: %d mentions, %d tagged users", ErrMentionMismatch, tagged, len(taggedIDs))
	}

	ids := make([]string, len(mentions))
	next := 0
	for i, m := range mentions {
		if m.IsSelf() {
			ids[i] = senderID
			continue
		}
		ids[i] = taggedIDs[next]
		next++
	}
	return ids, nil
}

// ResolveOne resolves a single tagged user, used by commands that target one player.
func ResolveOne(taggedIDs []string, table Table) (string, error) {
	if len(taggedIDs) != 1 {
		return "", fmt.Errorf("%w: expected one tagged user, got %d", ErrMentionMismatch, len(taggedIDs))
	}
	name, ok := table[taggedIDs[0]]
	if !ok {
		return "", fmt.Errorf("%w: id %s", ErrUnregistered, taggedIDs[0])
	}
	return name, nil
}
