package parse

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Grammar holds the configurable parts of the command language.
type Grammar struct {
	ScoreKeyword    string
	AddKeyword      string
	MentionCounts   []int
	PlayersPerMatch int
}

// DefaultGrammar returns the grammar used when nothing is configured.
func DefaultGrammar() *Grammar {
	return &Grammar{
		ScoreKeyword:    "score",
		AddKeyword:      "add",
		MentionCounts:   []int{4, 3},
		PlayersPerMatch: 4,
	}
}

// Keyword extracts the lower-cased command name from a message. ok is false
// when the message is not a command.
func Keyword(text string) (keyword string, ok bool) {
	kw, _, _, ok := splitKeyword(text)
	return kw, ok
}

// splitKeyword returns the keyword, the body after it and the body's offset.
func splitKeyword(text string) (string, string, int, bool) {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	lead := len(text) - len(trimmed)
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", 0, false
	}
	end := 1
	for end < len(trimmed) {
		r := rune(trimmed[end])
		if r >= 0x80 || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			break
		}
		end++
	}
	if end == 1 {
		return "", "", 0, false
	}
	return strings.ToLower(trimmed[1:end]), trimmed[end:], lead + end, true
}

// Parse classifies a message into a typed command.
func (g *Grammar) Parse(text string) (Command, error) {
	kw, body, _, ok := splitKeyword(text)
	if !ok {
		return nil, syntaxErr(0, "message does not start with a command")
	}
	switch kw {
	case g.ScoreKeyword:
		return g.parseScore(kw, body)
	case g.AddKeyword:
		return parseAddPlayer(kw, body)
	default:
		return parseArgs(kw, body), nil
	}
}

// ParseScore parses a message that must be a score report.
func (g *Grammar) ParseScore(text string) (*ScoreCommand, error) {
	kw, body, _, ok := splitKeyword(text)
	if !ok || kw != g.ScoreKeyword {
		return nil, syntaxErr(0, "expected /%s", g.ScoreKeyword)
	}
	return g.parseScore(kw, body)
}

func scoreValue(t token) (int, bool) {
	if t.kind != tokNumber || len(t.text) > 2 {
		return 0, false
	}
	n, err := strconv.Atoi(t.text)
	return n, err == nil
}

func (g *Grammar) parseScore(kw, body string) (*ScoreCommand, error) {
	toks := lex(body)
	for _, t := range toks {
		if t.kind == tokInvalid {
			return nil, syntaxErr(t.pos, "unexpected %q", t.text)
		}
	}

	// The total score is read from the end so that trailing numbers never
	// become part of the last mention's name.
	i := len(toks) - 1
	if i < 0 {
		return nil, syntaxErr(len(body), "missing players and score")
	}
	scoreB, ok := scoreValue(toks[i])
	if !ok {
		return nil, syntaxErr(toks[i].pos, "expected final score, got %s %q", toks[i].kind, toks[i].text)
	}
	i--
	if i >= 0 && toks[i].kind == tokPunct && onlyChars(toks[i].text, delimiterChars) {
		i--
	}
	if i < 0 {
		return nil, syntaxErr(0, "expected two score numbers")
	}
	scoreA, ok := scoreValue(toks[i])
	if !ok {
		return nil, syntaxErr(toks[i].pos, "expected two score numbers, got %s %q", toks[i].kind, toks[i].text)
	}
	i--
	if i >= 0 && toks[i].kind == tokPunct && onlyChars(toks[i].text, separatorChars) {
		i--
	}

	mentions, err := parseMentionGroups(toks[:i+1])
	if err != nil {
		return nil, err
	}
	if !slices.Contains(g.MentionCounts, len(mentions)) {
		return nil, syntaxErr(0, "expected %v players, got %d", g.MentionCounts, len(mentions))
	}
	if len(mentions) == g.PlayersPerMatch-1 {
		mentions = append([]Mention{{Name: Self, Implicit: true}}, mentions...)
	}

	return &ScoreCommand{
		keyword:  kw,
		Mentions: mentions,
		ScoreA:   scoreA,
		ScoreB:   scoreB,
	}, nil
}

func parseMentionGroups(toks []token) ([]Mention, error) {
	var mentions []Mention
	i := 0
	for i < len(toks) {
		if toks[i].kind != tokAt {
			return nil, syntaxErr(toks[i].pos, "expected '@', got %s %q", toks[i].kind, toks[i].text)
		}
		at := toks[i].pos
		i++

		var words []string
		for i < len(toks) && (toks[i].kind == tokWord || toks[i].kind == tokNumber) {
			words = append(words, strings.ToLower(toks[i].text))
			i++
		}
		if len(words) == 0 {
			return nil, syntaxErr(at, "empty mention")
		}
		m := Mention{Name: strings.Join(words, " ")}

		if i < len(toks) && toks[i].kind == tokOpen {
			var err error
			i, err = parseSubscores(toks, i+1, &m)
			if err != nil {
				return nil, err
			}
		}
		mentions = append(mentions, m)
	}
	if len(mentions) == 0 {
		return nil, syntaxErr(0, "no players mentioned")
	}
	return mentions, nil
}

// parseSubscores reads "[points delim sinks]" starting after the opening
// bracket and returns the index after the closing bracket.
func parseSubscores(toks []token, i int, m *Mention) (int, error) {
	m.HasSubscores = true
	if i < len(toks) && toks[i].kind == tokNumber {
		v, ok := scoreValue(toks[i])
		if !ok {
			return 0, syntaxErr(toks[i].pos, "sub-score %q has more than two digits", toks[i].text)
		}
		m.Points = v
		i++
	}
	if i < len(toks) && toks[i].kind == tokPunct && onlyChars(toks[i].text, delimiterChars) {
		i++
	}
	if i < len(toks) && toks[i].kind == tokNumber {
		v, ok := scoreValue(toks[i])
		if !ok {
			return 0, syntaxErr(toks[i].pos, "sub-score %q has more than two digits", toks[i].text)
		}
		m.Sinks = v
		i++
	}
	if i >= len(toks) || toks[i].kind != tokClose {
		pos := 0
		if i < len(toks) {
			pos = toks[i].pos
		} else if len(toks) > 0 {
			pos = toks[len(toks)-1].pos
		}
		return 0, syntaxErr(pos, "unterminated sub-score bracket")
	}
	return i + 1, nil
}

func parseAddPlayer(kw, body string) (*AddPlayerCommand, error) {
	toks := lex(body)
	if len(toks) == 0 || toks[0].kind != tokAt {
		return nil, syntaxErr(0, "expected '@mention, Full Name'")
	}
	i := 1
	var mention []string
	for i < len(toks) && (toks[i].kind == tokWord || toks[i].kind == tokNumber) {
		mention = append(mention, strings.ToLower(toks[i].text))
		i++
	}
	if len(mention) == 0 {
		return nil, syntaxErr(toks[0].pos, "empty mention")
	}
	if i >= len(toks) || toks[i].kind != tokPunct || toks[i].text != "," {
		pos := len(body)
		if i < len(toks) {
			pos = toks[i].pos
		}
		return nil, syntaxErr(pos, "expected ',' before the full name")
	}
	i++

	var name []string
	for ; i < len(toks); i++ {
		if toks[i].kind != tokWord && toks[i].kind != tokNumber {
			return nil, syntaxErr(toks[i].pos, "unexpected %q in full name", toks[i].text)
		}
		name = append(name, toks[i].text)
	}
	if len(name) == 0 {
		return nil, syntaxErr(len(body), "missing full name")
	}
	return &AddPlayerCommand{
		keyword:  kw,
		Mention:  strings.Join(mention, " "),
		FullName: strings.Join(name, " "),
	}, nil
}

// parseArgs never fails: whatever follows the mentions is kept as raw text.
func parseArgs(kw, body string) *ArgsCommand {
	toks := lex(body)
	cmd := &ArgsCommand{keyword: kw}
	i := 0
	for i < len(toks) && toks[i].kind == tokAt {
		j := i + 1
		var words []string
		for j < len(toks) && (toks[j].kind == tokWord || toks[j].kind == tokNumber) {
			words = append(words, strings.ToLower(toks[j].text))
			j++
		}
		if len(words) == 0 {
			break
		}
		cmd.Mentions = append(cmd.Mentions, strings.Join(words, " "))
		i = j
	}
	if i < len(toks) && len(cmd.Mentions) > 0 && toks[i].kind == tokPunct && toks[i].text == "," {
		i++
	}
	if i < len(toks) {
		cmd.Text = strings.TrimSpace(body[toks[i].pos:])
	}
	return cmd
}
