// Package tokenizer normalises query text the same way the indexing
// collaborator normalises document text, so query terms line up with the
// postings table. It lower-cases, splits on non-alphanumeric runes, drops
// stop words and single characters, and applies a suffix-stripping
// stemmer.
package tokenizer

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// Token is one normalised term with its position among the surviving
// terms, not its offset in the raw text.
type Token struct {
	Term     string
	Position int
}

// Tokenize normalises text into stemmed tokens.
func Tokenize(text string) []Token {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]Token, 0, len(words)/2)
	for _, word := range words {
		if len(word) < 2 {
			continue
		}
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		term := stem(word)
		if term == "" {
			continue
		}
		tokens = append(tokens, Token{Term: term, Position: len(tokens)})
	}
	return tokens
}

// stemRule rewrites one suffix. minLen guards against stripping a suffix
// that would leave too short a stem ("ring" must not become "r").
type stemRule struct {
	suffix      string
	replacement string
	minLen      int
}

// Ordered longest-match-first; the first applicable rule wins. The "ss"
// identity rule shields words like "less" from the final plural rule.
var stemRules = []stemRule{
	{"ational", "ate", 2},
	{"tional", "tion", 2},
	{"encies", "ence", 2},
	{"ances", "ance", 2},
	{"ments", "ment", 2},
	{"izing", "ize", 2},
	{"ating", "ate", 2},
	{"iness", "y", 2},
	{"ously", "ous", 2},
	{"ively", "ive", 2},
	{"eness", "ene", 2},
	{"tion", "t", 3},
	{"sion", "s", 3},
	{"ying", "y", 2},
	{"ling", "l", 3},
	{"ies", "y", 2},
	{"ing", "", 3},
	{"ers", "er", 2},
	{"est", "", 3},
	{"ful", "", 3},
	{"ous", "", 3},
	{"ess", "", 3},
	{"ble", "", 3},
	{"ed", "", 3},
	{"er", "", 3},
	{"ly", "", 3},
	{"es", "", 3},
	{"ss", "ss", 2},
	{"s", "", 3},
}

func stem(word string) string {
	for _, rule := range stemRules {
		if !strings.HasSuffix(word, rule.suffix) {
			continue
		}
		stemmed := word[:len(word)-len(rule.suffix)] + rule.replacement
		if len(stemmed) >= rule.minLen {
			return stemmed
		}
	}
	return word
}
