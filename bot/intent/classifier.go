package intent

import (
	"github.com/agnivade/levenshtein"

	"github.com/m3rciful/toybot/bot/text"
)

// DefaultThreshold is the minimum fuzzy score an utterance must reach.
const DefaultThreshold = 0.65

// Model is the statistical side of classification.
type Model interface {
	Classify(text string) (label string, confidence float64)
}

// Vote describes how a classification was reached.
type Vote struct {
	Intent Intent
	// Score is the best fuzzy similarity against any example.
	Score float64
	// Predicted and Confidence come from the statistical model.
	Predicted  string
	Confidence float64
}

type example struct {
	text  string
	runes int
}

// Classifier combines a statistical model with an edit-distance vote over
// curated examples. The model alone is never trusted: an intent is returned
// only when some example is close enough to the utterance.
type Classifier struct {
	model     Model
	threshold float64
	intents   []Intent
	examples  [][]example
}

// NewClassifier prepares examples for every classifiable intent. Examples are
// cleaned once here; intents missing from examples simply never win the vote.
func NewClassifier(model Model, examples map[Intent][]string, threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	c := &Classifier{model: model, threshold: threshold}
	for _, in := range Classifiable() {
		var prepared []example
		for _, raw := range examples[in] {
			cleaned := text.Clean(raw)
			if cleaned == "" {
				continue
			}
			prepared = append(prepared, example{text: cleaned, runes: len([]rune(cleaned))})
		}
		c.intents = append(c.intents, in)
		c.examples = append(c.examples, prepared)
	}
	return c
}

// Classify returns the recognised intent, if any.
func (c *Classifier) Classify(utterance string) (Intent, bool) {
	v := c.Vote(utterance)
	return v.Intent, v.Intent != None
}

// Vote classifies utterance and reports both signals.
func (c *Classifier) Vote(utterance string) Vote {
	cleaned := text.Clean(utterance)
	if cleaned == "" {
		return Vote{}
	}
	var v Vote
	if c.model != nil {
		v.Predicted, v.Confidence = c.model.Classify(cleaned)
	}

	best := None
	for i, in := range c.intents {
		for _, ex := range c.examples[i] {
			score := 1 - float64(levenshtein.ComputeDistance(cleaned, ex.text))/float64(max(ex.runes, 1))
			if score > v.Score && score >= c.threshold {
				v.Score = score
				best = in
			}
		}
	}
	if v.Score < c.threshold {
		return v
	}
	if best == None {
		best, _ = Parse(v.Predicted)
	}
	v.Intent = best
	return v
}
