// Package text normalizes user utterances: Unicode NFC, lowercase, an
// allow-list of characters and optional per-token lemmatization.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Lemmatizer reduces a single lowercase token to its base form.
// Implementations must be pure: the same token always yields the same lemma.
type Lemmatizer interface {
	Lemma(token string) string
}

// Identity leaves tokens unchanged. It is the fallback when no lemmatizer is configured.
type Identity struct{}

// Lemma returns token as is.
func (Identity) Lemma(token string) string { return token }

// Normalizer turns raw utterances into canonical token streams.
type Normalizer struct {
	lem Lemmatizer
}

// NewNormalizer returns a Normalizer using lem, or Identity when lem is nil.
func NewNormalizer(lem Lemmatizer) *Normalizer {
	if lem == nil {
		lem = Identity{}
	}
	return &Normalizer{lem: lem}
}

// Clean lowercases s and keeps only Cyrillic and Latin letters, digits, hyphens
// and single spaces.
func Clean(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		switch {
		case allowed(r):
			b.WriteRune(r)
			space = false
		case unicode.IsSpace(r):
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Normalize cleans s and lemmatizes every token. Unknown tokens keep their surface form.
func (n *Normalizer) Normalize(s string) string {
	tokens := strings.Fields(Clean(s))
	for i, tok := range tokens {
		if lemma := Clean(n.lem.Lemma(tok)); lemma != "" && !strings.Contains(lemma, " ") {
			tokens[i] = lemma
		}
	}
	return strings.Join(tokens, " ")
}

// IsMeaningful reports whether s holds at least one word longer than two runes
// made only of Cyrillic letters.
func IsMeaningful(s string) bool {
	for _, tok := range strings.Fields(Clean(s)) {
		if len([]rune(tok)) > 2 && onlyCyrillic(tok) {
			return true
		}
	}
	return false
}

// Tokens splits cleaned text into words.
func Tokens(s string) []string {
	return strings.Fields(Clean(s))
}

func allowed(r rune) bool {
	return isCyrillic(r) || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
}

func isCyrillic(r rune) bool {
	return (r >= 'а' && r <= 'я') || r == 'ё'
}

func onlyCyrillic(tok string) bool {
	for _, r := range tok {
		if !isCyrillic(r) {
			return false
		}
	}
	return true
}
