package model

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Vector is a sparse, L2-normalized term vector keyed by feature index.
type Vector map[int]float64

// Dot returns the inner product, which equals cosine similarity for
// normalized vectors.
func (v Vector) Dot(o Vector) float64 {
	if len(o) < len(v) {
		v, o = o, v
	}
	var sum float64
	for i, w := range v {
		sum += w * o[i]
	}
	return sum
}

// Vectorizer is a TF-IDF transformer over word unigrams and bigrams.
// Tokens shorter than two runes are dropped before n-grams are built.
type Vectorizer struct {
	Vocab map[string]int `json:"vocab"`
	IDF   []float64      `json:"idf"`
}

// FitVectorizer learns the vocabulary and smoothed IDF weights of docs.
func FitVectorizer(docs []string) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, f := range features(doc) {
			if !seen[f] {
				seen[f] = true
				df[f]++
			}
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	slices.Sort(terms)

	n := float64(len(docs))
	v := &Vectorizer{Vocab: make(map[string]int, len(terms)), IDF: make([]float64, len(terms))}
	for i, term := range terms {
		v.Vocab[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v
}

func (v *Vectorizer) validate() error {
	if len(v.IDF) != len(v.Vocab) {
		return fmt.Errorf("%d idf weights for %d terms", len(v.IDF), len(v.Vocab))
	}
	for term, i := range v.Vocab {
		if i < 0 || i >= len(v.IDF) {
			return fmt.Errorf("term %q has index %d outside [0, %d)", term, i, len(v.IDF))
		}
	}
	return nil
}

// Transform vectorizes doc. Unknown features are ignored; a doc without known
// features yields an empty vector.
func (v *Vectorizer) Transform(doc string) Vector {
	vec := make(Vector)
	for _, f := range features(doc) {
		if i, ok := v.Vocab[f]; ok {
			vec[i]++
		}
	}
	for i, tf := range vec {
		vec[i] = tf * v.IDF[i]
	}
	return normalize(vec)
}

func features(doc string) []string {
	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(doc)) {
		if len([]rune(tok)) > 1 {
			tokens = append(tokens, tok)
		}
	}
	out := make([]string, 0, 2*len(tokens))
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

func normalize(v Vector) Vector {
	var norm float64
	for _, w := range v {
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
	return v
}
