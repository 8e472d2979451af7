// Package parse implements the bot's chat command grammar.
//
// A message is a slash keyword followed by a body whose shape depends on the
// keyword. The score body is
//
//	/score @A [p s] @B [p s] @C [p s] @D [p s] [sep] SCORE_AB [-,|] SCORE_CD
//
// where each bracket is optional and may use [] or (). The add-player body is
// "@mention, Full Name". Every other keyword takes optional mentions and free text.
package parse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is matched by every grammar failure.
var ErrSyntax = errors.New("invalid command syntax")

// SyntaxError describes where a command stopped matching the grammar.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", ErrSyntax, e.Pos, e.Msg)
}

// Is lets errors.Is(err, ErrSyntax) match any SyntaxError.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

func syntaxErr(pos int, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Command is a parsed chat command. Concrete types are *ScoreCommand,
// *AddPlayerCommand and *ArgsCommand.
type Command interface {
	// Keyword returns the lower-cased command name without the slash.
	Keyword() string
	command()
}

// Self is the mention text that refers to the message sender.
const Self = "me"

// Mention is one tagged player in a score command.
type Mention struct {
	// Name is the mention's words, lower-cased and joined by single spaces.
	Name string
	// Points and Sinks are the optional bracketed sub-scores, zero when omitted.
	Points int
	Sinks  int
	// HasSubscores is set when the bracket was present.
	HasSubscores bool
	// Implicit marks the sender inserted for the three-mention shorthand.
	Implicit bool
}

// IsSelf reports whether the mention refers to the sender.
func (m Mention) IsSelf() bool {
	return m.Name == Self
}

// ScoreCommand is a match report.
type ScoreCommand struct {
	keyword  string
	Mentions []Mention
	ScoreA   int
	ScoreB   int
}

func (c *ScoreCommand) Keyword() string { return c.keyword }
func (*ScoreCommand) command()          {}

// Names returns the mention names in order.
func (c *ScoreCommand) Names() []string {
	names := make([]string, len(c.Mentions))
	for i, m := range c.Mentions {
		names[i] = m.Name
	}
	return names
}

// AddPlayerCommand registers the tagged user under a full name.
type AddPlayerCommand struct {
	keyword  string
	Mention  string
	FullName string
}

func (c *AddPlayerCommand) Keyword() string { return c.keyword }
func (*AddPlayerCommand) command()          {}

// ArgsCommand is any other command: optional mentions, then free text.
type ArgsCommand struct {
	keyword  string
	Mentions []string
	// Text is the raw argument text after the mentions and separator.
	Text string
}

func (c *ArgsCommand) Keyword() string { return c.keyword }
func (*ArgsCommand) command()          {}

// Args splits Text into whitespace separated words.
func (c *ArgsCommand) Args() []string {
	return strings.Fields(c.Text)
}
