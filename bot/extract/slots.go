// Package extract pulls slots (age, price, toy, category) out of utterances.
package extract

import (
	"slices"
	"strconv"
	"strings"

	"github.com/m3rciful/toybot/bot/catalog"
	"github.com/m3rciful/toybot/bot/text"
)

var (
	ageUnits      = []string{"год", "года", "лет"}
	currencyUnits = []string{"рублей", "рубля", "рубль", "руб", "р"}
	agePrefixes   = []string{"для"}
	pricePrefixes = []string{"до", "дешевле"}
)

// Age returns the first digit token that is followed by an age unit or comes
// after "для". Digits followed by a currency unit are never ages.
func Age(utterance string) (string, bool) {
	tokens := text.Tokens(utterance)
	for i, tok := range tokens {
		if !isDigits(tok) || followedBy(tokens, i, currencyUnits) {
			continue
		}
		if followedBy(tokens, i, ageUnits) || precededBy(tokens, i, agePrefixes) {
			return tok, true
		}
	}
	return "", false
}

// Price returns the first digit token that is followed by a currency unit or
// comes after "до" or "дешевле". Digits followed by an age unit are never
// prices, and values that overflow int are skipped.
func Price(utterance string) (int, bool) {
	tokens := text.Tokens(utterance)
	for i, tok := range tokens {
		if !isDigits(tok) || followedBy(tokens, i, ageUnits) {
			continue
		}
		if !followedBy(tokens, i, currencyUnits) && !precededBy(tokens, i, pricePrefixes) {
			continue
		}
		if v, err := strconv.Atoi(tok); err == nil {
			return v, true
		}
	}
	return 0, false
}

// AgeInRange reports whether the decimal age lies within r. Malformed ages are
// never in range.
func AgeInRange(age string, r catalog.AgeRange) bool {
	n, err := strconv.Atoi(strings.TrimSpace(age))
	if err != nil {
		return false
	}
	return r.Contains(n)
}

// Slots is the extraction result of one utterance.
type Slots struct {
	Age      string
	Price    int
	HasPrice bool
	Toy      string
	Category string
}

// HasAge reports whether an age was found.
func (s Slots) HasAge() bool { return s.Age != "" }

func isDigits(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func followedBy(tokens []string, i int, words []string) bool {
	return i+1 < len(tokens) && slices.Contains(words, tokens[i+1])
}

func precededBy(tokens []string, i int, words []string) bool {
	for _, tok := range tokens[:i] {
		if slices.Contains(words, tok) {
			return true
		}
	}
	return false
}
