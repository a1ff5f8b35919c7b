// Package model provides the statistical models behind intent classification
// and retrieval: TF-IDF vectors with a nearest-centroid intent classifier and
// cosine scoring against corpus questions. Models are stored as a versioned
// JSON artifact or fitted in process from the bundled data.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactVersion is bumped whenever the artifact layout changes.
const ArtifactVersion = 1

// ErrModelLoad marks failures that must stop the process at startup.
var ErrModelLoad = errors.New("model load failed")

// Example is a labelled intent example, already cleaned by the caller.
type Example struct {
	Label string
	Text  string
}

type intentModel struct {
	Vectorizer *Vectorizer `json:"vectorizer"`
	Labels     []string    `json:"labels"`
	Centroids  []Vector    `json:"centroids"`
}

type retrievalModel struct {
	Vectorizer *Vectorizer `json:"vectorizer"`
	Questions  []Vector    `json:"questions"`
	Answers    []string    `json:"answers"`
}

type artifact struct {
	Version   int            `json:"version"`
	Intents   intentModel    `json:"intents"`
	Retrieval retrievalModel `json:"retrieval"`
}

// Model is read-only after construction and safe for concurrent use.
type Model struct {
	intents   intentModel
	retrieval retrievalModel
}

// Fit trains both models. Pair questions must already be normalized the way
// retrieval queries will be.
func Fit(examples []Example, pairs []Pair) *Model {
	m := &Model{}

	docs := make([]string, len(examples))
	for i, ex := range examples {
		docs[i] = ex.Text
	}
	m.intents.Vectorizer = FitVectorizer(docs)
	index := make(map[string]int)
	for _, ex := range examples {
		i, ok := index[ex.Label]
		if !ok {
			i = len(m.intents.Labels)
			index[ex.Label] = i
			m.intents.Labels = append(m.intents.Labels, ex.Label)
			m.intents.Centroids = append(m.intents.Centroids, make(Vector))
		}
		for f, w := range m.intents.Vectorizer.Transform(ex.Text) {
			m.intents.Centroids[i][f] += w
		}
	}
	for _, c := range m.intents.Centroids {
		normalize(c)
	}

	questions := make([]string, len(pairs))
	for i, p := range pairs {
		questions[i] = p.Question
	}
	m.retrieval.Vectorizer = FitVectorizer(questions)
	for _, p := range pairs {
		m.retrieval.Questions = append(m.retrieval.Questions, m.retrieval.Vectorizer.Transform(p.Question))
		m.retrieval.Answers = append(m.retrieval.Answers, p.Answer)
	}
	return m
}

// Load reads an artifact written by Save. Every failure wraps ErrModelLoad.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrModelLoad, path, err)
	}
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("%w: %s has version %d, want %d", ErrModelLoad, path, a.Version, ArtifactVersion)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelLoad, path, err)
	}
	return &Model{intents: a.Intents, retrieval: a.Retrieval}, nil
}

// validate checks that every feature index used by the artifact has an IDF
// weight, so no later lookup can go out of range.
func (a *artifact) validate() error {
	if a.Intents.Vectorizer == nil || a.Retrieval.Vectorizer == nil {
		return errors.New("missing vectorizer")
	}
	if len(a.Intents.Labels) != len(a.Intents.Centroids) {
		return fmt.Errorf("%d labels for %d centroids", len(a.Intents.Labels), len(a.Intents.Centroids))
	}
	if len(a.Retrieval.Questions) != len(a.Retrieval.Answers) {
		return fmt.Errorf("%d questions for %d answers", len(a.Retrieval.Questions), len(a.Retrieval.Answers))
	}
	if err := a.Intents.Vectorizer.validate(); err != nil {
		return fmt.Errorf("intents: %w", err)
	}
	if err := a.Retrieval.Vectorizer.validate(); err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}
	if err := checkFeatures(a.Intents.Centroids, len(a.Intents.Vectorizer.IDF)); err != nil {
		return fmt.Errorf("intents: centroid %w", err)
	}
	if err := checkFeatures(a.Retrieval.Questions, len(a.Retrieval.Vectorizer.IDF)); err != nil {
		return fmt.Errorf("retrieval: question %w", err)
	}
	return nil
}

func checkFeatures(vecs []Vector, n int) error {
	for i, v := range vecs {
		for f := range v {
			if f < 0 || f >= n {
				return fmt.Errorf("%d has feature %d outside [0, %d)", i, f, n)
			}
		}
	}
	return nil
}

// Save writes the model as a JSON artifact, creating parent directories.
func (m *Model) Save(path string) error {
	data, err := json.Marshal(artifact{Version: ArtifactVersion, Intents: m.intents, Retrieval: m.retrieval})
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// Classify returns the label of the nearest intent centroid and its cosine
// similarity. Text sharing no features with the training examples yields "".
func (m *Model) Classify(text string) (string, float64) {
	vec := m.intents.Vectorizer.Transform(text)
	if len(vec) == 0 {
		return "", 0
	}
	best, label := 0.0, ""
	for i, c := range m.intents.Centroids {
		if s := vec.Dot(c); s > best {
			best, label = s, m.intents.Labels[i]
		}
	}
	return label, best
}

// Score returns the cosine similarity of text to every corpus question.
func (m *Model) Score(text string) []float64 {
	vec := m.retrieval.Vectorizer.Transform(text)
	scores := make([]float64, len(m.retrieval.Questions))
	if len(vec) == 0 {
		return scores
	}
	for i, q := range m.retrieval.Questions {
		scores[i] = vec.Dot(q)
	}
	return scores
}

// Answer returns the answer paired with corpus question i.
func (m *Model) Answer(i int) string {
	if i < 0 || i >= len(m.retrieval.Answers) {
		return ""
	}
	return m.retrieval.Answers[i]
}

// CorpusSize returns the number of question/answer pairs.
func (m *Model) CorpusSize() int { return len(m.retrieval.Answers) }

// Labels returns the intent labels known to the classifier.
func (m *Model) Labels() []string { return m.intents.Labels }
