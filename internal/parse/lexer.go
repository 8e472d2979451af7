package parse

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokAt tokenKind = iota
	tokWord
	tokNumber
	tokOpen
	tokClose
	tokPunct
	tokInvalid
)

func (k tokenKind) String() string {
	switch k {
	case tokAt:
		return "'@'"
	case tokWord:
		return "word"
	case tokNumber:
		return "number"
	case tokOpen:
		return "opening bracket"
	case tokClose:
		return "closing bracket"
	case tokPunct:
		return "punctuation"
	default:
		return "invalid character"
	}
}

// token is one lexeme of a command body. pos is the byte offset in the body.
type token struct {
	kind tokenKind
	text string
	pos  int
}

const (
	// separators allowed between the last mention and the total score
	separatorChars = ",|.;/"
	// delimiters allowed between the two numbers of a score pair
	delimiterChars = ",-|"
	punctChars     = separatorChars + "-"
)

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-'
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// lex splits a command body into tokens. It never fails: characters outside the
// grammar become tokInvalid so callers decide how strict to be.
func lex(src string) []token {
	var toks []token
	runes := []rune(src)
	offsets := make([]int, len(runes)+1)
	off := 0
	for i, r := range runes {
		offsets[i] = off
		off += len(string(r))
	}
	offsets[len(runes)] = off

	run := func(i int, pred func(rune) bool) int {
		j := i
		for j < len(runes) && pred(runes[j]) {
			j++
		}
		return j
	}

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '@':
			toks = append(toks, token{tokAt, "@", offsets[i]})
			i++
		case r == '[' || r == '(':
			j := run(i, func(r rune) bool { return r == '[' || r == '(' })
			toks = append(toks, token{tokOpen, string(runes[i:j]), offsets[i]})
			i = j
		case r == ']' || r == ')':
			j := run(i, func(r rune) bool { return r == ']' || r == ')' })
			toks = append(toks, token{tokClose, string(runes[i:j]), offsets[i]})
			i = j
		case strings.ContainsRune(separatorChars, r):
			j := run(i, func(r rune) bool { return strings.ContainsRune(punctChars, r) })
			toks = append(toks, token{tokPunct, string(runes[i:j]), offsets[i]})
			i = j
		case isWordRune(r):
			j := run(i, isWordRune)
			toks = append(toks, classifyWord(string(runes[i:j]), offsets[i])...)
			i = j
		default:
			toks = append(toks, token{tokInvalid, string(r), offsets[i]})
			i++
		}
	}
	return toks
}

// classifyWord turns a run of word characters into tokens. Runs made only of
// ASCII digits and hyphens ("7-3", "-3") are split so that score pairs written
// without spaces still lex as number, delimiter, number.
func classifyWord(w string, pos int) []token {
	digits, hyphens, other := 0, 0, 0
	for _, r := range w {
		switch {
		case isASCIIDigit(r):
			digits++
		case r == '-':
			hyphens++
		default:
			other++
		}
	}

	switch {
	case other == 0 && hyphens == 0:
		return []token{{tokNumber, w, pos}}
	case other == 0 && digits == 0:
		return []token{{tokPunct, w, pos}}
	case other == 0:
		var out []token
		start := 0
		for i := 1; i <= len(w); i++ {
			if i < len(w) && (w[i] == '-') == (w[start] == '-') {
				continue
			}
			kind := tokNumber
			if w[start] == '-' {
				kind = tokPunct
			}
			out = append(out, token{kind, w[start:i], pos + start})
			start = i
		}
		return out
	default:
		return []token{{tokWord, w, pos}}
	}
}

func onlyChars(s, set string) bool {
	for _, r := range s {
		if !strings.ContainsRune(set, r) {
			return false
		}
	}
	return s != ""
}
