package extract

import (
	"regexp"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/m3rciful/toybot/bot/catalog"
	"github.com/m3rciful/toybot/bot/text"
)

// DefaultToyThreshold is the partial-ratio score a fuzzy toy match must exceed.
const DefaultToyThreshold = 85

var piecesPattern = regexp.MustCompile(`(?:^| )(\d+) (?:деталей|детали|деталь)(?: |$)`)

type toyKeys struct {
	name string
	// exact holds cleaned and normalized forms of the name and synonyms.
	exact []string
	// fuzzy holds normalized forms only.
	fuzzy []string
}

type categoryKeys struct {
	name  string
	exact []string
}

// Extractor matches utterances against a catalog. It is read-only and safe for
// concurrent use.
type Extractor struct {
	cat        *catalog.Catalog
	norm       *text.Normalizer
	threshold  float64
	toys       []toyKeys
	categories []categoryKeys
}

// New prepares match keys for every toy and category of cat.
func New(cat *catalog.Catalog, norm *text.Normalizer, threshold float64) *Extractor {
	if norm == nil {
		norm = text.NewNormalizer(nil)
	}
	if threshold <= 0 {
		threshold = DefaultToyThreshold
	}
	e := &Extractor{cat: cat, norm: norm, threshold: threshold}
	for _, t := range cat.Toys() {
		k := toyKeys{name: t.Name}
		for _, s := range append([]string{t.Name}, t.Synonyms...) {
			k.exact = appendKeys(k.exact, text.Clean(s), norm.Normalize(s))
			k.fuzzy = appendKeys(k.fuzzy, norm.Normalize(s))
		}
		e.toys = append(e.toys, k)
	}
	e.categories = categoryOrder(cat, norm)
	return e
}

// categoryOrder lists categories in toy order, then each toy's declaration
// order, followed by declared categories no toy references.
func categoryOrder(cat *catalog.Catalog, norm *text.Normalizer) []categoryKeys {
	seen := make(map[string]bool)
	var out []categoryKeys
	add := func(name string) {
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		c, ok := cat.Category(name)
		if !ok {
			c = catalog.Category{Name: name}
		}
		k := categoryKeys{name: c.Name}
		for _, s := range append([]string{c.Name}, c.Synonyms...) {
			k.exact = appendKeys(k.exact, text.Clean(s), norm.Normalize(s))
		}
		out = append(out, k)
	}
	for _, t := range cat.Toys() {
		for _, c := range t.Categories {
			add(c)
		}
	}
	for _, c := range cat.Categories() {
		add(c.Name)
	}
	return out
}

func appendKeys(dst []string, keys ...string) []string {
	for _, k := range keys {
		if k != "" && !slices.Contains(dst, k) {
			dst = append(dst, k)
		}
	}
	return dst
}

// forms returns the cleaned and normalized forms of utterance.
func (e *Extractor) forms(utterance string) (string, string) {
	return text.Clean(utterance), e.norm.Normalize(utterance)
}

// ToyName identifies the catalog toy an utterance refers to. Exact matches of
// any name or synonym win first, in catalog order. Then a fuzzy partial ratio
// above the threshold is tried per toy, also in catalog order. Last, "<N>
// деталей" together with "пазл" composes a puzzle name that must exist.
func (e *Extractor) ToyName(utterance string) (string, bool) {
	cleaned, normalized := e.forms(utterance)
	if cleaned == "" {
		return "", false
	}
	for _, t := range e.toys {
		for _, key := range t.exact {
			if strings.Contains(cleaned, key) || strings.Contains(normalized, key) {
				return t.name, true
			}
		}
	}
	for _, t := range e.toys {
		for _, key := range t.fuzzy {
			if PartialRatio(normalized, key) > e.threshold {
				return t.name, true
			}
		}
	}
	if strings.Contains(cleaned, "пазл") {
		if m := piecesPattern.FindStringSubmatch(cleaned); m != nil {
			if toy, ok := e.cat.Toy("Пазл " + m[1] + " деталей"); ok {
				return toy.Name, true
			}
		}
	}
	return "", false
}

// Category returns the first category whose name or synonym occurs in utterance.
func (e *Extractor) Category(utterance string) (string, bool) {
	cleaned, normalized := e.forms(utterance)
	if cleaned == "" {
		return "", false
	}
	for _, c := range e.categories {
		for _, key := range c.exact {
			if strings.Contains(cleaned, key) || strings.Contains(normalized, key) {
				return c.name, true
			}
		}
	}
	return "", false
}

// Extract computes every slot of utterance.
func (e *Extractor) Extract(utterance string) Slots {
	var s Slots
	s.Age, _ = Age(utterance)
	s.Price, s.HasPrice = Price(utterance)
	s.Toy, _ = e.ToyName(utterance)
	s.Category, _ = e.Category(utterance)
	return s
}

// minPartialRunes is the shortest utterance aligned inside a longer key.
// Shorter utterances are compared with the whole key.
const minPartialRunes = 4

// PartialRatio scores how well the shorter of haystack and needle fits
// somewhere inside the longer one, on a 0..100 scale. Each window of the
// longer string with the length of the shorter is compared by Levenshtein
// similarity, so a truncated name such as "монопол" scores 100 against
// "монополия".
func PartialRatio(haystack, needle string) float64 {
	h, n := []rune(haystack), []rune(needle)
	if len(n) == 0 || len(h) == 0 {
		return 0
	}
	if len(h) < len(n) {
		if len(h) < minPartialRunes {
			return ratio(haystack, needle, len(n))
		}
		h, n = n, h
	}
	short := string(n)
	best := 0.0
	for i := 0; i+len(n) <= len(h); i++ {
		if r := ratio(string(h[i:i+len(n)]), short, len(n)); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

func ratio(a, b string, length int) float64 {
	return 100 * (1 - float64(levenshtein.ComputeDistance(a, b))/float64(length))
}
