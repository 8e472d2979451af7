package handler

import (
	"math/rand/v2"
	"strings"
	"unicode"
)

// Sentiment is the rough mood of a message aimed at the bot.
type Sentiment int

const (
	Bad Sentiment = iota - 1
	Neutral
	Good
)

var (
	goodWords = wordSet("good great love nice thanks thank awesome best cool amazing " +
		"legend goat beautiful perfect king queen hero sweet")
	badWords = wordSet("bad hate stupid dumb trash garbage worst suck sucks broken " +
		"useless idiot terrible awful rigged wrong lame")
)

func wordSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

var responses = map[Sentiment][]string{
	Good: {
		"Finally, someone with taste.",
		"I know. Tell your friends.",
		"Flattery won't get you rating points. Sinks will.",
	},
	Neutral: {
		"You rang?",
		"I'm just here to count. Go play a game.",
		"Talk is cheap. Post a score.",
	},
	Bad: {
		"Bold words from someone with your record.",
		"Take it up with the leaderboard.",
		"I'm not the one who dropped 7-0 last week.",
	},
}

// Classify scores text by counting positive and negative words. A clear
// majority either way decides the mood.
func Classify(text string) Sentiment {
	score := 0
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	for _, w := range words {
		switch {
		case goodWords[w]:
			score++
		case badWords[w]:
			score--
		}
	}
	switch {
	case score > 0:
		return Good
	case score < 0:
		return Bad
	}
	return Neutral
}

// Taunter answers messages that mention the bot by name.
type Taunter struct {
	name string
	pick func(n int) int
}

// NewTaunter creates a Taunter that reacts to name, matched case-insensitively.
func NewTaunter(name string) *Taunter {
	return &Taunter{name: strings.ToLower(name), pick: rand.IntN}
}

// Mentioned reports whether text names the bot.
func (t *Taunter) Mentioned(text string) bool {
	return t.name != "" && strings.Contains(strings.ToLower(text), t.name)
}

// Reply picks a canned response matching the message's mood.
func (t *Taunter) Reply(text string) string {
	options := responses[Classify(text)]
	return options[t.pick(len(options))]
}
