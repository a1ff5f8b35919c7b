package dialog

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/m3rciful/toybot/bot/chance"
	"github.com/m3rciful/toybot/bot/extract"
	"github.com/m3rciful/toybot/bot/intent"
	"github.com/m3rciful/toybot/bot/session"
)

type filterQuery struct {
	age      string
	price    int
	hasPrice bool
	category string
}

func (q filterQuery) ageOnly() bool {
	return q.age != "" && !q.hasPrice && q.category == ""
}

// describe renders the constraints, e.g. "для возраста 5 лет и до 500 рублей".
func (q filterQuery) describe() string {
	var parts []string
	if q.age != "" {
		parts = append(parts, fmt.Sprintf("для возраста %s лет", q.age))
	}
	if q.hasPrice {
		parts = append(parts, fmt.Sprintf("до %d рублей", q.price))
	}
	if q.category != "" {
		parts = append(parts, fmt.Sprintf("в категории «%s»", q.category))
	}
	return joinAnd(parts)
}

// filter lists toys satisfying every present constraint, skipping toys the
// user mentioned recently. An age-only query with matches also picks one of
// them to talk about next.
func (e *Engine) filter(t *turn, q filterQuery) reply {
	matches, unmet := e.match(q, e.recentToys(t.sc))
	desc := q.describe()
	if len(matches) == 0 {
		t.sc.State = session.StateNone
		return answered(fmt.Sprintf(msgFilterNone, desc, strings.Join(unmet, ", ")), intent.FilterToys)
	}
	list := strings.Join(matches, ", ")
	if q.ageOnly() {
		toy, _ := chance.Pick(e.opts.Random, matches)
		t.sc.CurrentToy = toy
		t.sc.State = session.StateWaitingForIntent
		return answered(fmt.Sprintf(msgFilterPick, capitalize(desc), list, toy), intent.FilterToys)
	}
	t.sc.State = session.StateNone
	return answered(fmt.Sprintf(msgFilterFound, capitalize(desc), list), intent.FilterToys)
}

// match returns toys meeting q in catalog order. When nothing matches, unmet
// names the constraints that match no toy on their own, or every present
// constraint when only their combination is empty.
func (e *Engine) match(q filterQuery, exclude []string) (matches, unmet []string) {
	var ageHit, priceHit, categoryHit bool
	for _, toy := range e.opts.Catalog.Toys() {
		if containsFold(exclude, toy.Name) {
			continue
		}
		okAge := q.age == "" || extract.AgeInRange(q.age, toy.Age)
		okPrice := !q.hasPrice || toy.Price <= q.price
		okCategory := q.category == "" || toy.InCategory(q.category)
		ageHit = ageHit || okAge
		priceHit = priceHit || okPrice
		categoryHit = categoryHit || okCategory
		if okAge && okPrice && okCategory {
			matches = append(matches, toy.Name)
		}
	}
	if len(matches) > 0 {
		return matches, nil
	}

	var present []string
	check := func(active, hit bool, name string) {
		if !active {
			return
		}
		present = append(present, name)
		if !hit {
			unmet = append(unmet, name)
		}
	}
	check(q.age != "", ageHit, constraintAge)
	check(q.hasPrice, priceHit, constraintPrice)
	check(q.category != "", categoryHit, constraintCategory)
	if len(unmet) == 0 {
		unmet = present
	}
	return nil, unmet
}

// recentToys returns toys named in the history buffer.
func (e *Engine) recentToys(sc *session.Context) []string {
	var out []string
	for _, h := range sc.History {
		if name, ok := e.opts.Extractor.ToyName(h); ok && !containsFold(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// joinAnd joins parts as "a", "a и b" or "a, b и c".
func joinAnd(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " и " + parts[len(parts)-1]
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
