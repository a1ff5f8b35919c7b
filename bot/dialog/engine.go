// Package dialog is the decision engine: a per-session state machine that
// combines slot extraction, intent classification, contextual resolution and
// templated replies.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/m3rciful/toybot/bot/catalog"
	"github.com/m3rciful/toybot/bot/chance"
	"github.com/m3rciful/toybot/bot/extract"
	"github.com/m3rciful/toybot/bot/intent"
	"github.com/m3rciful/toybot/bot/phrasebook"
	"github.com/m3rciful/toybot/bot/retrieval"
	"github.com/m3rciful/toybot/bot/sentiment"
	"github.com/m3rciful/toybot/bot/session"
	"github.com/m3rciful/toybot/bot/text"
	"github.com/m3rciful/toybot/core/logger"
)

// Classifier maps an utterance onto an intent.
type Classifier interface {
	Classify(utterance string) (intent.Intent, bool)
}

// Responder answers off-topic utterances from a canned corpus.
type Responder interface {
	Respond(utterance string) (retrieval.Match, bool)
}

// Sentiment estimates the tone of an utterance.
type Sentiment interface {
	Analyze(utterance string) sentiment.Polarity
}

// Options wires the engine's collaborators. Catalog and Phrases are required.
type Options struct {
	Catalog    *catalog.Catalog
	Phrases    *phrasebook.Phrasebook
	Extractor  *extract.Extractor
	Classifier Classifier
	Responder  Responder
	Sentiment  Sentiment
	Random     chance.Source

	// PromoProbability applies after hello and toy_types answers,
	// RetrievalPromoProbability after retrieval answers.
	PromoProbability          float64
	RetrievalPromoProbability float64
}

// Turn summarizes one decision.
type Turn struct {
	Answer   string
	Intent   intent.Intent
	Outcome  session.Outcome
	State    session.State
	Toy      string
	Polarity sentiment.Polarity
	Stats    session.Counters
}

// Engine is safe for concurrent use; per-session serialization comes from the store.
type Engine struct {
	opts      Options
	store     *session.Store
	resolvers []resolver
}

// New validates opts and returns an Engine backed by store.
func New(opts Options, store *session.Store) (*Engine, error) {
	if opts.Catalog == nil || opts.Phrases == nil {
		return nil, errors.New("dialog: catalog and phrasebook are required")
	}
	if store == nil {
		return nil, errors.New("dialog: session store is required")
	}
	if opts.Extractor == nil {
		opts.Extractor = extract.New(opts.Catalog, nil, extract.DefaultToyThreshold)
	}
	if opts.Random == nil {
		opts.Random = chance.New(0)
	}
	e := &Engine{opts: opts, store: store}
	e.resolvers = []resolver{e.resolveToy, e.resolveCategory, e.resolveIntent, e.resolveRetrieval}
	return e, nil
}

// Store returns the session store behind the engine.
func (e *Engine) Store() *session.Store { return e.store }

// Reply decides the answer to utterance within the user's session.
func (e *Engine) Reply(ctx context.Context, userID int64, utterance string) Turn {
	var out Turn
	e.store.Do(userID, func(sc *session.Context) {
		out = e.Decide(ctx, sc, utterance)
	})
	return out
}

// Start answers the /start command.
func (e *Engine) Start(userID int64) string {
	return e.announce(userID, e.opts.Phrases.Start(), intent.Hello)
}

// Help answers the /help command.
func (e *Engine) Help(userID int64) string {
	return e.announce(userID, e.opts.Phrases.Help(), intent.Help)
}

// NonText answers messages that carry no text.
func (e *Engine) NonText(userID int64) string {
	return e.announce(userID, msgNonText, intent.None)
}

// announce records a reply that bypasses the state machine. Counters are untouched.
func (e *Engine) announce(userID int64, answer string, in intent.Intent) string {
	e.store.Do(userID, func(sc *session.Context) {
		sc.LastBotResponse = answer
		if in != intent.None {
			sc.LastIntent = in
		}
	})
	return answer
}

// Decide runs one turn against sc. It never fails: a panic in the decision
// path is logged and answered with a failure phrase.
func (e *Engine) Decide(ctx context.Context, sc *session.Context, utterance string) (out Turn) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, logger.ComponentDialog, "turn.panic",
				slog.Any("panic", r),
				slog.String("state", sc.State.String()),
				slog.String("stack", string(debug.Stack())),
			)
			sc.State = session.StateNone
			out = e.finish(ctx, sc, utterance, e.failure())
		}
	}()
	return e.finish(ctx, sc, utterance, e.decide(ctx, sc, utterance))
}

// reply is the outcome of a branch. A zero intent keeps the session's last intent.
type reply struct {
	text    string
	intent  intent.Intent
	outcome session.Outcome
}

func answered(text string, in intent.Intent) reply {
	return reply{text: text, intent: in, outcome: session.OutcomeIntent}
}

func failed(text string) reply {
	return reply{text: text, outcome: session.OutcomeFailure}
}

// turn carries the per-utterance facts shared by all branches.
type turn struct {
	ctx       context.Context
	sc        *session.Context
	utterance string
	slots     extract.Slots
	// startToy is the toy under discussion when the turn began.
	startToy string
}

func (e *Engine) decide(ctx context.Context, sc *session.Context, utterance string) reply {
	if !text.IsMeaningful(utterance) {
		sc.State = session.StateNone
		sc.CurrentToy = ""
		return e.failure()
	}
	t := &turn{
		ctx:       ctx,
		sc:        sc,
		utterance: utterance,
		slots:     e.opts.Extractor.Extract(utterance),
		startToy:  sc.CurrentToy,
	}
	if sc.State == session.StateWaitingForAge && t.slots.HasAge() {
		return e.ageAnswer(t)
	}
	if t.slots.HasAge() || t.slots.HasPrice {
		return e.filter(t, filterQuery{age: t.slots.Age, price: t.slots.Price, hasPrice: t.slots.HasPrice, category: t.slots.Category})
	}
	switch sc.State {
	case session.StateWaitingForToy:
		return e.waitingForToy(t)
	case session.StateWaitingForAge:
		return failed(msgAskAge)
	case session.StateWaitingForIntent:
		return e.waitingForIntent(t)
	}
	for _, r := range e.resolvers {
		if rep, ok := r(t); ok {
			return rep
		}
	}
	return e.failure()
}

func (e *Engine) finish(ctx context.Context, sc *session.Context, utterance string, r reply) Turn {
	pol := sentiment.Neutral
	if e.opts.Sentiment != nil {
		pol = e.opts.Sentiment.Analyze(utterance)
	}
	r.text += e.opts.Phrases.Tone(pol)

	if r.intent != intent.None {
		sc.LastIntent = r.intent
	}
	sc.LastBotResponse = r.text
	sc.Remember(utterance)
	sc.Record(r.outcome)

	out := Turn{
		Answer:   r.text,
		Intent:   r.intent,
		Outcome:  r.outcome,
		State:    sc.State,
		Toy:      sc.CurrentToy,
		Polarity: pol,
		Stats:    sc.Stats,
	}
	logger.Debug(ctx, logger.ComponentDialog, "turn.decided",
		slog.String("state", out.State.String()),
		slog.String("intent", out.Intent.String()),
		slog.String("outcome", out.Outcome.String()),
		slog.String("toy", out.Toy),
	)
	return out
}

// failure returns a canned phrase mentioning a random toy.
func (e *Engine) failure() reply {
	phrase, _ := chance.Pick(e.opts.Random, e.opts.Phrases.Failure())
	toy, _ := chance.Pick(e.opts.Random, e.opts.Catalog.Names())
	return failed(phrasebook.Fill(phrase, "toy_name", toy))
}

// promo mentions a random toy other than the excluded ones.
func (e *Engine) promo(exclude ...string) string {
	var pool []catalog.Toy
	for _, toy := range e.opts.Catalog.Toys() {
		if !containsFold(exclude, toy.Name) {
			pool = append(pool, toy)
		}
	}
	toy, ok := chance.Pick(e.opts.Random, pool)
	if !ok {
		return ""
	}
	return fmt.Sprintf(msgPromo, toy.Name, toy.Age)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
