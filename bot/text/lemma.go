package text

import (
	"fmt"
	"os"
	"strings"

	"github.com/kljensen/snowball"
	"gopkg.in/yaml.v3"
)

// Dictionary maps word forms to lemmas loaded from a YAML lexicon of the form
//
//	lemma: [form, form, ...]
//
// Every lemma also maps to itself, so applying the dictionary twice is a no-op.
type Dictionary struct {
	forms map[string]string
}

// LoadDictionary reads a lemma lexicon from path.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lemmas: %w", err)
	}
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse lemmas %s: %w", path, err)
	}
	return NewDictionary(raw)
}

// NewDictionary builds a Dictionary. A form claimed by two different lemmas is an error.
func NewDictionary(lemmas map[string][]string) (*Dictionary, error) {
	d := &Dictionary{forms: make(map[string]string, len(lemmas)*4)}
	add := func(form, lemma string) error {
		if prev, ok := d.forms[form]; ok && prev != lemma {
			return fmt.Errorf("lemmas: form %q maps to both %q and %q", form, prev, lemma)
		}
		d.forms[form] = lemma
		return nil
	}
	for lemma, forms := range lemmas {
		lemma = Clean(lemma)
		if lemma == "" || strings.Contains(lemma, " ") {
			return nil, fmt.Errorf("lemmas: invalid lemma %q", lemma)
		}
		if err := add(lemma, lemma); err != nil {
			return nil, err
		}
		for _, f := range forms {
			if f = Clean(f); f != "" {
				if err := add(f, lemma); err != nil {
					return nil, err
				}
			}
		}
	}
	return d, nil
}

// Lemma returns the dictionary lemma or the token itself.
func (d *Dictionary) Lemma(token string) string {
	if lemma, ok := d.forms[token]; ok {
		return lemma
	}
	return token
}

// Len returns the number of known word forms.
func (d *Dictionary) Len() int { return len(d.forms) }

// Snowball stems Russian words with the Snowball algorithm. Stems of stems are
// not always stable, so Normalize is not idempotent with this lemmatizer.
type Snowball struct{}

// Lemma stems Cyrillic tokens and leaves everything else untouched.
func (Snowball) Lemma(token string) string {
	if !onlyCyrillic(token) {
		return token
	}
	stem, err := snowball.Stem(token, "russian", true)
	if err != nil || stem == "" {
		return token
	}
	return stem
}
