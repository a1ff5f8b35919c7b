// Package retrieval answers off-topic utterances by looking up the most similar
// question in a canned question/answer corpus.
package retrieval

import "github.com/m3rciful/toybot/bot/text"

// DefaultThreshold is the similarity a corpus question must exceed.
const DefaultThreshold = 0.5

// Scorer is the retrieval side of the model provider.
type Scorer interface {
	Score(text string) []float64
	Answer(i int) string
	CorpusSize() int
}

// Match is a retrieved answer.
type Match struct {
	Index  int
	Score  float64
	Answer string
}

// Responder looks answers up in the corpus behind a Scorer.
type Responder struct {
	scorer    Scorer
	norm      *text.Normalizer
	threshold float64
}

// New returns a Responder. Utterances are normalized with norm, which must
// match the normalization applied to corpus questions.
func New(scorer Scorer, norm *text.Normalizer, threshold float64) *Responder {
	if norm == nil {
		norm = text.NewNormalizer(nil)
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Responder{scorer: scorer, norm: norm, threshold: threshold}
}

// Respond returns the answer of the best scoring question when its similarity
// exceeds the threshold. Meaningless utterances and an empty corpus never match.
func (r *Responder) Respond(utterance string) (Match, bool) {
	if r.scorer == nil || r.scorer.CorpusSize() == 0 || !text.IsMeaningful(utterance) {
		return Match{}, false
	}
	query := r.norm.Normalize(utterance)
	if query == "" {
		return Match{}, false
	}
	best := Match{Index: -1}
	for i, s := range r.scorer.Score(query) {
		if best.Index < 0 || s > best.Score {
			best.Index, best.Score = i, s
		}
	}
	if best.Index < 0 || best.Score <= r.threshold {
		return Match{Score: best.Score}, false
	}
	best.Answer = r.scorer.Answer(best.Index)
	return best, best.Answer != ""
}
