// Package service provides business logic implementations.
package service

import "errors"

// Service errors.
var (
	// ErrDuplicatePlayer means one player fills two slots of a match.
	ErrDuplicatePlayer = errors.New("player appears more than once in the match")
	// ErrMissingStats means a resolved player has no stats row. It signals a
	// roster that is out of sync with the players table.
	ErrMissingStats = errors.New("player has no stats row")
	// ErrPlayerCount means resolution did not produce a full match.
	ErrPlayerCount = errors.New("wrong number of players for a match")
)
