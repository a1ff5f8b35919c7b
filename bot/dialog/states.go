package dialog

import (
	"fmt"
	"log/slog"

	"github.com/m3rciful/toybot/bot/chance"
	"github.com/m3rciful/toybot/bot/intent"
	"github.com/m3rciful/toybot/bot/session"
	"github.com/m3rciful/toybot/core/logger"
)

// resolver is one step of the idle-state fallback chain. It reports false to
// pass the turn on to the next step.
type resolver func(t *turn) (reply, bool)

// focus makes toy the current one and asks what the user wants to know.
func (e *Engine) focus(t *turn, toy string) reply {
	t.sc.CurrentToy = toy
	t.sc.State = session.StateWaitingForIntent
	return answered(fmt.Sprintf(msgAskAttribute, toy), intent.None)
}

// focusCategory picks a random toy of category. It reports false when the
// category has no toys.
func (e *Engine) focusCategory(t *turn, category string) (reply, bool) {
	toy, ok := chance.Pick(e.opts.Random, e.opts.Catalog.InCategory(category))
	if !ok {
		return reply{}, false
	}
	t.sc.CurrentToy = toy
	t.sc.State = session.StateWaitingForIntent
	return answered(fmt.Sprintf(msgCategoryToy, category, toy), intent.None), true
}

func (e *Engine) waitingForToy(t *turn) reply {
	if t.slots.Toy != "" {
		return e.focus(t, t.slots.Toy)
	}
	if t.slots.Category != "" {
		if rep, ok := e.focusCategory(t, t.slots.Category); ok {
			return rep
		}
	}
	return failed(msgClarifyToy)
}

// ageAnswer handles an age given while the engine waits for one. The
// conversation always returns to the idle state.
func (e *Engine) ageAnswer(t *turn) reply {
	t.sc.State = session.StateNone
	age := t.slots.Age
	matches, _ := e.match(filterQuery{age: age}, e.recentToys(t.sc))
	toy, ok := chance.Pick(e.opts.Random, matches)
	if !ok {
		return failed(fmt.Sprintf(msgAgeNone, age))
	}
	t.sc.CurrentToy = toy
	return answered(fmt.Sprintf(msgAgePick, age, toy), intent.ToyRecommendation)
}

func (e *Engine) waitingForIntent(t *turn) reply {
	if t.slots.Toy != "" {
		t.sc.CurrentToy = t.slots.Toy
	}
	in, _ := e.classify(t)
	switch {
	case in.AboutToy():
		t.sc.State = session.StateNone
		return e.respondAboutToy(t, in)
	case in == intent.Yes:
		t.sc.State = session.StateNone
		return e.confirmPrice(t)
	case in == intent.No:
		return e.decline(t)
	}
	toy := t.sc.CurrentToy
	if toy == "" {
		toy = msgAnyToy
	}
	return failed(fmt.Sprintf(msgWhichAttribute, toy))
}

func (e *Engine) resolveToy(t *turn) (reply, bool) {
	if t.slots.Toy == "" {
		return reply{}, false
	}
	return e.focus(t, t.slots.Toy), true
}

func (e *Engine) resolveCategory(t *turn) (reply, bool) {
	if t.slots.Category == "" {
		return reply{}, false
	}
	if rep, ok := e.focusCategory(t, t.slots.Category); ok {
		return rep, true
	}
	return failed(fmt.Sprintf(msgEmptyCategory, t.slots.Category)), true
}

func (e *Engine) resolveIntent(t *turn) (reply, bool) {
	in, ok := e.classify(t)
	if !ok {
		return reply{}, false
	}
	return e.respond(t, in)
}

func (e *Engine) resolveRetrieval(t *turn) (reply, bool) {
	if e.opts.Responder == nil {
		return reply{}, false
	}
	m, ok := e.opts.Responder.Respond(t.utterance)
	if !ok {
		logger.Debug(t.ctx, logger.ComponentDialog, "retrieval.miss", slog.Float64("score", m.Score))
		return reply{}, false
	}
	logger.Debug(t.ctx, logger.ComponentDialog, "retrieval.hit", slog.Float64("score", m.Score))
	answer := m.Answer
	if chance.Chance(e.opts.Random, e.opts.RetrievalPromoProbability) {
		answer += e.promo()
	}
	return reply{text: answer, intent: intent.Offtopic, outcome: session.OutcomeRetrieval}, true
}

func (e *Engine) classify(t *turn) (intent.Intent, bool) {
	if e.opts.Classifier == nil {
		return intent.None, false
	}
	in, ok := e.opts.Classifier.Classify(t.utterance)
	logger.Debug(t.ctx, logger.ComponentDialog, "intent.classified",
		slog.String("intent", in.String()),
		slog.Bool("matched", ok),
	)
	return in, ok
}
