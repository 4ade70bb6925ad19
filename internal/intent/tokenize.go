package intent

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type tokenKind int

const (
	kindWord tokenKind = iota
	kindPunct
	kindBreak
)

type token struct {
	text string
	kind tokenKind
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// normalize applies compatibility normalization and Unicode case folding so
// "OFFICE HOURS", "Office Hours" and full-width variants compare equal.
func normalize(text string) string {
	text = norm.NFKC.String(text)
	text = apostrophes.Replace(text)
	return cases.Fold().String(text)
}

// tokenize splits normalized text into words, punctuation and line breaks.
// A hyphen between two letters separates words without breaking the
// phrase, and a trailing possessive "'s" becomes its own word.
func tokenize(text string) []token {
	var (
		out  []token
		word []rune
	)
	runes := []rune(text)

	flush := func() {
		w := strings.Trim(string(word), "'")
		word = word[:0]
		if w == "" {
			return
		}
		if strings.HasSuffix(w, "'s") && len(w) > 2 {
			out = append(out, token{text: w[:len(w)-2], kind: kindWord}, token{text: "'s", kind: kindWord})
			return
		}
		out = append(out, token{text: w, kind: kindWord})
	}

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word = append(word, r)
		case r == '\'' && len(word) > 0:
			word = append(word, r)
		case r == '-' && len(word) > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]) && unicode.IsLetter(word[len(word)-1]):
			flush()
		case r == '\n':
			flush()
			out = append(out, token{text: "\n", kind: kindBreak})
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			out = append(out, token{text: string(r), kind: kindPunct})
		}
	}
	flush()
	return out
}

// clauseStart reports whether the token at i opens a message, line or
// clause.
func clauseStart(toks []token, i int) bool {
	return i == 0 || toks[i-1].kind != kindWord
}
