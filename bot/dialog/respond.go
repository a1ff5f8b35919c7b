package dialog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/toybot/bot/chance"
	"github.com/m3rciful/toybot/bot/extract"
	"github.com/m3rciful/toybot/bot/intent"
	"github.com/m3rciful/toybot/bot/phrasebook"
	"github.com/m3rciful/toybot/bot/session"
)

// respond builds the answer to a classified intent. It reports false when the
// intent has nothing to say, letting the caller fall through.
func (e *Engine) respond(t *turn, in intent.Intent) (reply, bool) {
	var rep reply
	switch in {
	case intent.ToyPrice, intent.ToyAvailability, intent.ToyInfo, intent.OrderToy:
		rep = e.respondAboutToy(t, in)
	case intent.ToyRecommendation:
		rep = e.recommend(t)
	case intent.ToyTypes:
		tmpl, ok := e.template(in)
		if !ok {
			return reply{}, false
		}
		t.sc.CurrentToy = ""
		categories := chance.Sample(e.opts.Random, e.opts.Catalog.CategoryNames(), 3)
		toys := chance.Sample(e.opts.Random, e.opts.Catalog.Names(), 2)
		rep = answered(phrasebook.Fill(tmpl,
			"categories", strings.Join(categories, ", "),
			"toys", strings.Join(toys, ", "),
		), in)
	case intent.CompareToys:
		tmpl, ok := e.template(in)
		pair := chance.Sample(e.opts.Random, e.opts.Catalog.Names(), 2)
		if !ok || len(pair) < 2 {
			return reply{}, false
		}
		t.sc.CurrentToy = pair[0]
		rep = answered(phrasebook.Fill(tmpl, "toy1", pair[0], "toy2", pair[1])+
			fmt.Sprintf(msgCompareChoice, pair[0], pair[1]), in)
	case intent.Yes:
		rep = e.agree(t)
	case intent.No:
		rep = e.decline(t)
	case intent.FilterToys:
		if !t.slots.HasAge() && !t.slots.HasPrice {
			rep = answered(msgFilterNeedSlots, in)
			break
		}
		rep = e.filter(t, filterQuery{age: t.slots.Age, price: t.slots.Price, hasPrice: t.slots.HasPrice, category: t.slots.Category})
	case intent.Hello, intent.Bye:
		tmpl, ok := e.template(in)
		if !ok {
			return reply{}, false
		}
		rep = answered(tmpl, in)
	default:
		return reply{}, false
	}

	if (in == intent.Hello || in == intent.ToyTypes) && chance.Chance(e.opts.Random, e.opts.PromoProbability) {
		rep.text += e.promo(t.startToy, t.sc.CurrentToy)
	}
	return rep, true
}

func (e *Engine) template(in intent.Intent) (string, bool) {
	return chance.Pick(e.opts.Random, e.opts.Phrases.Responses(in))
}

// respondAboutToy answers price, availability, info and order requests,
// resolving the toy from context when none is current.
func (e *Engine) respondAboutToy(t *turn, in intent.Intent) reply {
	name := t.sc.CurrentToy
	if name == "" {
		var early *reply
		name, early = e.resolveContextToy(t)
		if early != nil {
			return *early
		}
	}
	if name == "" {
		t.sc.State = session.StateWaitingForToy
		return answered(msgWhichToy, intent.None)
	}
	toy, ok := e.opts.Catalog.Toy(name)
	if !ok {
		return answered(msgNotInCatalog, in)
	}
	t.sc.CurrentToy = toy.Name
	tmpl, _ := e.template(in)
	text := phrasebook.Fill(tmpl,
		"toy_name", toy.Name,
		"price", strconv.Itoa(toy.Price),
		"age", toy.Age.String(),
		"description", toy.About(),
	)
	return answered(text+msgAnythingElse, in)
}

// resolveContextToy looks for the toy a follow-up refers to: a promoted toy in
// the previous reply, a toy of the category named now, or, right after a
// toy_types answer, the newest history entry naming a toy or a non-empty
// category. A category named now ends the turn with a proposal.
func (e *Engine) resolveContextToy(t *turn) (string, *reply) {
	if i := strings.LastIndex(t.sc.LastBotResponse, promoMarker); i >= 0 {
		if name, ok := e.opts.Extractor.ToyName(t.sc.LastBotResponse[i+len(promoMarker):]); ok {
			t.sc.CurrentToy = name
			return name, nil
		}
	}
	if t.slots.Category != "" {
		if rep, ok := e.focusCategory(t, t.slots.Category); ok {
			return t.sc.CurrentToy, &rep
		}
	}
	if t.sc.LastIntent == intent.ToyTypes {
		for i := len(t.sc.History) - 1; i >= 0; i-- {
			h := t.sc.History[i]
			if name, ok := e.opts.Extractor.ToyName(h); ok {
				t.sc.CurrentToy = name
				return name, nil
			}
			if cat, ok := e.opts.Extractor.Category(h); ok {
				if name, ok := chance.Pick(e.opts.Random, e.opts.Catalog.InCategory(cat)); ok {
					t.sc.CurrentToy = name
					return name, nil
				}
			}
		}
	}
	return "", nil
}

func (e *Engine) recommend(t *turn) reply {
	age := t.slots.Age
	if age == "" {
		t.sc.State = session.StateWaitingForAge
		return answered(msgWhichAge, intent.ToyRecommendation)
	}
	var matches []string
	for _, toy := range e.opts.Catalog.Toys() {
		if extract.AgeInRange(age, toy.Age) {
			matches = append(matches, toy.Name)
		}
	}
	name, ok := chance.Pick(e.opts.Random, matches)
	if !ok {
		return answered(fmt.Sprintf(msgRecommendNone, age), intent.ToyRecommendation)
	}
	t.sc.CurrentToy = name
	tmpl, _ := e.template(intent.ToyRecommendation)
	text := phrasebook.Fill(tmpl, "toy_name", name, "age", age)
	return answered(text+fmt.Sprintf(msgRecommendMore, name), intent.ToyRecommendation)
}

// agree answers "yes" depending on what the bot said last.
func (e *Engine) agree(t *turn) reply {
	switch last := t.sc.LastIntent; {
	case last == intent.Hello:
		categories := chance.Sample(e.opts.Random, e.opts.Catalog.CategoryNames(), 3)
		return answered(fmt.Sprintf(msgYesHello, strings.Join(categories, ", ")), intent.Yes)
	case last.AboutToy():
		return e.confirmPrice(t)
	case last == intent.ToyTypes:
		toys := chance.Sample(e.opts.Random, e.opts.Catalog.Names(), 2)
		return answered(fmt.Sprintf(msgYesTypes, strings.Join(toys, ", ")), intent.Yes)
	case last == intent.Offtopic:
		return answered(msgYesOfftopic, intent.Yes)
	default:
		return answered(msgYesDefault, intent.Yes)
	}
}

func (e *Engine) confirmPrice(t *turn) reply {
	toy, ok := e.opts.Catalog.Toy(t.sc.CurrentToy)
	if !ok {
		return answered(msgNameToy, intent.Yes)
	}
	return answered(fmt.Sprintf(msgPriceConfirm, toy.Name, toy.Price), intent.Yes)
}

func (e *Engine) decline(t *turn) reply {
	t.sc.CurrentToy = ""
	t.sc.State = session.StateNone
	return answered(msgNo, intent.No)
}
