// Package sentiment estimates the polarity of an utterance from a word lexicon.
package sentiment

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/m3rciful/toybot/bot/text"
)

// Polarity is the coarse tone of an utterance.
type Polarity int

const (
	Neutral Polarity = iota
	Positive
	Negative
)

func (p Polarity) String() string {
	switch p {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// Bound is the absolute average score a text must exceed to leave Neutral.
const Bound = 0.3

// Analyzer scores normalized tokens against a lexicon.
type Analyzer struct {
	norm    *text.Normalizer
	lexicon map[string]float64
}

// Load reads a YAML lexicon of the form `word: score`.
func Load(path string, norm *text.Normalizer) (*Analyzer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sentiment lexicon: %w", err)
	}
	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse sentiment lexicon %s: %w", path, err)
	}
	return New(raw, norm), nil
}

// New builds an Analyzer. Lexicon words are normalized the same way utterances
// are, so inflected entries still match. Words collapsing to one lemma keep the
// score of the lexicographically smallest entry.
func New(lexicon map[string]float64, norm *text.Normalizer) *Analyzer {
	if norm == nil {
		norm = text.NewNormalizer(nil)
	}
	a := &Analyzer{norm: norm, lexicon: make(map[string]float64, len(lexicon))}
	words := make([]string, 0, len(lexicon))
	for w := range lexicon {
		words = append(words, w)
	}
	slices.Sort(words)
	for _, w := range words {
		key := norm.Normalize(w)
		if key == "" || strings.Contains(key, " ") {
			continue
		}
		if _, dup := a.lexicon[key]; !dup {
			a.lexicon[key] = lexicon[w]
		}
	}
	return a
}

// Len returns the number of lexicon entries after normalization.
func (a *Analyzer) Len() int { return len(a.lexicon) }

// Score returns the mean score of lexicon hits and the number of hits.
// Tokens missing from the lexicon are ignored rather than counted as zero.
func (a *Analyzer) Score(utterance string) (float64, int) {
	var sum float64
	var hits int
	for _, tok := range strings.Fields(a.norm.Normalize(utterance)) {
		if v, ok := a.lexicon[tok]; ok {
			sum += v
			hits++
		}
	}
	if hits == 0 {
		return 0, 0
	}
	return sum / float64(hits), hits
}

// Analyze classifies the tone of utterance.
func (a *Analyzer) Analyze(utterance string) Polarity {
	avg, _ := a.Score(utterance)
	switch {
	case avg > Bound:
		return Positive
	case avg < -Bound:
		return Negative
	default:
		return Neutral
	}
}
