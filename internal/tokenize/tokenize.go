// Package tokenize turns raw text into a stream of (word, position)
// pairs. It is the external collaborator spec.md treats as a black
// box ("string -> stream of (word, position)"); this package supplies
// a concrete implementation so the rest of the engine has something to
// build and query against.
package tokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Token is one occurrence of a word at a zero-based token position
// within a document or query.
type Token struct {
	Word     string
	Position int
}

// Tokenize lowercases and NFC-normalizes text, then splits it on
// runs of non-letter/non-digit runes. Position counts tokens, not
// bytes or runes.
func Tokenize(text string) []Token {
	normalized := norm.NFC.String(text)
	var tokens []Token
	pos := 0
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		tokens = append(tokens, Token{Word: b.String(), Position: pos})
		pos++
		b.Reset()
	}
	for _, r := range normalized {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// TokenizeQuery tokenizes a query string and applies the lemmatizer
// and stopword filter, returning the surviving distinct terms in
// first-seen order.
func TokenizeQuery(text string) []string {
	tokens := Tokenize(text)
	seen := make(map[string]bool, len(tokens))
	var terms []string
	for _, tok := range tokens {
		w := Lemmatize(tok.Word)
		if IsStopWord(w) {
			continue
		}
		if seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, w)
	}
	return terms
}

// IndexTerms tokenizes document text for ingestion: every surviving
// (non-stopword) token is lemmatized the same way TokenizeQuery
// lemmatizes query terms, so a query for "jumps" matches documents
// containing "jumping" (both index as "jump"). Position numbering follows the raw token
// stream, including positions dropped by stopword filtering, so
// position gaps reflect the original text layout.
func IndexTerms(text string) []Token {
	tokens := Tokenize(text)
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		w := Lemmatize(tok.Word)
		if IsStopWord(w) {
			continue
		}
		out = append(out, Token{Word: w, Position: tok.Position})
	}
	return out
}
