// Package phrasebook stores the bot's wording: intent examples and response
// templates, failure phrases, command messages and tone suffixes.
package phrasebook

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/m3rciful/toybot/bot/intent"
	"github.com/m3rciful/toybot/bot/sentiment"
)

// ErrInvalidPhrasebook wraps every phrasebook validation failure.
var ErrInvalidPhrasebook = errors.New("invalid phrasebook")

// Entry holds the examples and response templates of one intent.
type Entry struct {
	Examples  []string `yaml:"examples"`
	Responses []string `yaml:"responses"`
}

// Tone maps sentiment polarity to a reply suffix.
type Tone struct {
	Positive string `yaml:"positive"`
	Negative string `yaml:"negative"`
	Neutral  string `yaml:"neutral"`
}

// File is the on-disk layout of a phrasebook.
type File struct {
	Start   string           `yaml:"start"`
	Help    string           `yaml:"help"`
	Failure []string         `yaml:"failure"`
	Tone    Tone             `yaml:"tone"`
	Intents map[string]Entry `yaml:"intents"`
}

// Phrasebook is read-only after construction.
type Phrasebook struct {
	start   string
	help    string
	failure []string
	tone    Tone
	entries map[intent.Intent]Entry
}

// Load reads and validates a phrasebook YAML file.
func Load(path string) (*Phrasebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phrasebook: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPhrasebook, path, err)
	}
	return New(f)
}

// New validates f. Every classifiable intent needs examples; all of them except
// yes, no and filter_toys, whose answers are composed by the engine, also need
// response templates.
func New(f File) (*Phrasebook, error) {
	if strings.TrimSpace(f.Start) == "" || strings.TrimSpace(f.Help) == "" {
		return nil, fmt.Errorf("%w: start and help messages are required", ErrInvalidPhrasebook)
	}
	if len(f.Failure) == 0 {
		return nil, fmt.Errorf("%w: at least one failure phrase is required", ErrInvalidPhrasebook)
	}
	p := &Phrasebook{
		start:   f.Start,
		help:    f.Help,
		failure: f.Failure,
		tone:    f.Tone,
		entries: make(map[intent.Intent]Entry, len(f.Intents)),
	}
	for label, entry := range f.Intents {
		in, ok := intent.Parse(label)
		if !ok || !in.IsClassifiable() {
			return nil, fmt.Errorf("%w: unknown intent %q", ErrInvalidPhrasebook, label)
		}
		p.entries[in] = entry
	}
	for _, in := range intent.Classifiable() {
		entry, ok := p.entries[in]
		if !ok || len(entry.Examples) == 0 {
			return nil, fmt.Errorf("%w: intent %s has no examples", ErrInvalidPhrasebook, in)
		}
		if len(entry.Responses) == 0 && !composed(in) {
			return nil, fmt.Errorf("%w: intent %s has no responses", ErrInvalidPhrasebook, in)
		}
	}
	return p, nil
}

func composed(in intent.Intent) bool {
	return in == intent.Yes || in == intent.No || in == intent.FilterToys
}

// Start returns the /start greeting.
func (p *Phrasebook) Start() string { return p.start }

// Help returns the /help message.
func (p *Phrasebook) Help() string { return p.help }

// Failure returns the canned "did not understand" phrases.
func (p *Phrasebook) Failure() []string { return p.failure }

// Responses returns the templates of in.
func (p *Phrasebook) Responses(in intent.Intent) []string { return p.entries[in].Responses }

// Examples returns the examples of every intent.
func (p *Phrasebook) Examples() map[intent.Intent][]string {
	out := make(map[intent.Intent][]string, len(p.entries))
	for in, e := range p.entries {
		out[in] = e.Examples
	}
	return out
}

// Tone returns the suffix for polarity; empty means no suffix.
func (p *Phrasebook) Tone(pol sentiment.Polarity) string {
	switch pol {
	case sentiment.Positive:
		return p.tone.Positive
	case sentiment.Negative:
		return p.tone.Negative
	default:
		return p.tone.Neutral
	}
}

// Fill substitutes [placeholder] markers. Pairs are placeholder names without
// brackets followed by values; unknown markers stay untouched.
func Fill(template string, pairs ...string) string {
	args := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		args = append(args, "["+pairs[i]+"]", pairs[i+1])
	}
	return strings.NewReplacer(args...).Replace(template)
}
