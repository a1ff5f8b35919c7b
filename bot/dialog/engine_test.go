package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/toybot/bot/catalog"
	"github.com/m3rciful/toybot/bot/chance"
	"github.com/m3rciful/toybot/bot/intent"
	"github.com/m3rciful/toybot/bot/phrasebook"
	"github.com/m3rciful/toybot/bot/retrieval"
	"github.com/m3rciful/toybot/bot/sentiment"
	"github.com/m3rciful/toybot/bot/session"
	"github.com/m3rciful/toybot/bot/text"
)

const (
	ball = "Мяч"
	lego = "Конструктор LEGO"
)

type stubClassifier map[string]intent.Intent

func (s stubClassifier) Classify(utterance string) (intent.Intent, bool) {
	in, ok := s[text.Clean(utterance)]
	return in, ok
}

type panicClassifier struct{}

func (panicClassifier) Classify(string) (intent.Intent, bool) { panic("classifier exploded") }

type stubResponder map[string]string

func (s stubResponder) Respond(utterance string) (retrieval.Match, bool) {
	answer, ok := s[text.Clean(utterance)]
	if !ok {
		return retrieval.Match{}, false
	}
	return retrieval.Match{Answer: answer, Score: 1}, true
}

type fixedTone sentiment.Polarity

func (f fixedTone) Analyze(string) sentiment.Polarity { return sentiment.Polarity(f) }

func testPhrasebook(t *testing.T) *phrasebook.Phrasebook {
	t.Helper()
	responses := map[intent.Intent][]string{
		intent.Hello:             {"Здравствуйте!"},
		intent.Bye:               {"До свидания!"},
		intent.ToyTypes:          {"У нас есть [categories] и игрушки вроде [toys]. Что интересно?"},
		intent.ToyPrice:          {"[toy_name] стоит [price] рублей."},
		intent.ToyAvailability:   {"[toy_name] есть в наличии."},
		intent.ToyInfo:           {"[toy_name]: [description], для детей [age]."},
		intent.OrderToy:          {"Оформляю заказ на [toy_name]."},
		intent.ToyRecommendation: {"Для [age] лет подойдёт [toy_name]."},
		intent.CompareToys:       {"Сравним [toy1] и [toy2]."},
	}
	f := phrasebook.File{
		Start:   "Добро пожаловать в магазин игрушек!",
		Help:    "Спросите про цену, наличие или подбор игрушки.",
		Failure: []string{"Не понял вас. Может, посмотрите [toy_name]?"},
		Tone:    phrasebook.Tone{Positive: " :)", Negative: " Постараюсь помочь."},
		Intents: map[string]phrasebook.Entry{},
	}
	for _, in := range intent.Classifiable() {
		f.Intents[in.String()] = phrasebook.Entry{Examples: []string{in.String()}, Responses: responses[in]}
	}
	p, err := phrasebook.New(f)
	require.NoError(t, err)
	return p
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Toy{
		{Name: ball, Price: 300, Age: catalog.AgeRange{Min: 3, Max: 6}, Categories: []string{"спорт"}},
		{Name: lego, Price: 800, Age: catalog.AgeRange{Min: 5, Max: 10}, Categories: []string{"конструкторы"}, Synonyms: []string{"лего"}},
	}, []catalog.Category{{Name: "роботы"}})
	require.NoError(t, err)
	return c
}

var testIntents = stubClassifier{
	"привет":             intent.Hello,
	"пока":               intent.Bye,
	"конечно":            intent.Yes,
	"нет":                intent.No,
	"сколько стоит":      intent.ToyPrice,
	"расскажи подробнее": intent.ToyInfo,
	"какие игрушки есть": intent.ToyTypes,
	"сравни игрушки":     intent.CompareToys,
	"подбери игрушку":    intent.ToyRecommendation,
}

func newEngine(t *testing.T, mutate ...func(*Options)) *Engine {
	t.Helper()
	opts := Options{
		Catalog:                   testCatalog(t),
		Phrases:                   testPhrasebook(t),
		Classifier:                testIntents,
		Responder:                 stubResponder{"расскажи анекдот": "Колобок повесился."},
		Random:                    &chance.Fixed{Ints: []int{0}, Floats: []float64{0.99}},
		PromoProbability:          0.2,
		RetrievalPromoProbability: 0.3,
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	e, err := New(opts, session.NewStore(5))
	require.NoError(t, err)
	return e
}

func say(e *Engine, userID int64, utterances ...string) Turn {
	var last Turn
	for _, u := range utterances {
		last = e.Reply(context.Background(), userID, u)
	}
	return last
}

func snapshot(t *testing.T, e *Engine, userID int64) session.Context {
	t.Helper()
	sc, ok := e.Store().Snapshot(userID)
	require.True(t, ok)
	return sc
}

func TestNewRequiresCatalogAndPhrases(t *testing.T) {
	_, err := New(Options{}, session.NewStore(5))
	assert.Error(t, err)
	_, err = New(Options{Catalog: testCatalog(t), Phrases: testPhrasebook(t)}, nil)
	assert.Error(t, err)
}

func TestToyThenYesConfirmsPrice(t *testing.T) {
	e := newEngine(t)

	turn := say(e, 1, "Хочу мяч")
	assert.Equal(t, session.StateWaitingForIntent, turn.State)
	assert.Equal(t, ball, turn.Toy)
	assert.Equal(t, "Вы имеете в виду Мяч? Хотите узнать цену, описание или наличие?", turn.Answer)

	turn = say(e, 1, "Конечно!")
	assert.Equal(t, "Цена на Мяч — 300 рублей. Что ещё интересует?", turn.Answer)
	assert.Equal(t, session.StateNone, turn.State)
	assert.Equal(t, intent.Yes, snapshot(t, e, 1).LastIntent)
}

func TestWaitingForIntentAnswersAboutToy(t *testing.T) {
	e := newEngine(t)
	turn := say(e, 1, "хочу лего", "сколько стоит")
	assert.Equal(t, "Конструктор LEGO стоит 800 рублей. Что ещё интересует?", turn.Answer)
	assert.Equal(t, session.StateNone, turn.State)

	turn = say(e, 2, "хочу мяч", "что там с погодой")
	assert.Equal(t, "Что хотите узнать про Мяч: цену, описание или наличие?", turn.Answer)
	assert.Equal(t, session.OutcomeFailure, turn.Outcome)
	assert.Equal(t, session.StateWaitingForIntent, turn.State)

	turn = say(e, 2, "нет")
	assert.Equal(t, "Хорошо, какую игрушку обсудим теперь?", turn.Answer)
	assert.Equal(t, session.StateNone, turn.State)
	assert.Empty(t, turn.Toy)
}

func TestWaitingForAgeAlwaysReturnsToNone(t *testing.T) {
	e := newEngine(t)

	turn := say(e, 1, "подбери игрушку")
	require.Equal(t, session.StateWaitingForAge, turn.State)
	assert.Equal(t, "Для какого возраста нужна игрушка?", turn.Answer)

	turn = say(e, 1, "ему 5 лет")
	assert.Equal(t, session.StateNone, turn.State)
	assert.Equal(t, session.OutcomeIntent, turn.Outcome)
	assert.Contains(t, []string{ball, lego}, turn.Toy)

	say(e, 2, "подбери игрушку")
	turn = say(e, 2, "ему 50 лет")
	assert.Equal(t, session.StateNone, turn.State)
	assert.Equal(t, session.OutcomeFailure, turn.Outcome)
	assert.Equal(t, "Извините, нет игрушек для возраста 50 лет. Попробуйте другой возраст.", turn.Answer)
}

func TestWaitingForAgeReprompts(t *testing.T) {
	e := newEngine(t)
	turn := say(e, 1, "подбери игрушку", "что-нибудь интересное")
	assert.Equal(t, session.StateWaitingForAge, turn.State)
	assert.Equal(t, session.OutcomeFailure, turn.Outcome)
}

func TestMeaninglessInputHitsGate(t *testing.T) {
	e := newEngine(t)
	say(e, 1, "хочу мяч")

	turn := say(e, 1, "asdkjh123")
	assert.Equal(t, "Не понял вас. Может, посмотрите Мяч?", turn.Answer)
	assert.Equal(t, session.OutcomeFailure, turn.Outcome)
	assert.Equal(t, session.StateNone, turn.State)
	assert.Empty(t, turn.Toy)
	assert.Equal(t, int64(1), turn.Stats.Failure)
}

func TestRetrievalFallback(t *testing.T) {
	e := newEngine(t)
	turn := say(e, 1, "Расскажи анекдот")
	assert.Equal(t, "Колобок повесился.", turn.Answer)
	assert.Equal(t, session.OutcomeRetrieval, turn.Outcome)
	assert.Equal(t, int64(1), turn.Stats.Retrieval)
	assert.Equal(t, intent.Offtopic, snapshot(t, e, 1).LastIntent)

	turn = say(e, 1, "совсем непонятная просьба")
	assert.Equal(t, "Не понял вас. Может, посмотрите Мяч?", turn.Answer)
	assert.Equal(t, int64(1), turn.Stats.Failure)
}

func TestFilterByAgeAndPrice(t *testing.T) {
	e := newEngine(t)
	turn := say(e, 1, "для 5 лет до 500 рублей")
	assert.Equal(t, "Для возраста 5 лет и до 500 рублей есть: Мяч.", turn.Answer)
	assert.Equal(t, intent.FilterToys, turn.Intent)
	assert.Equal(t, session.StateNone, turn.State)
}

func TestFilterByAgeOnlyPicksCandidate(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.Random = &chance.Fixed{Ints: []int{1}, Floats: []float64{0.99}} })
	turn := say(e, 1, "для 5 лет")
	assert.Equal(t, session.StateWaitingForIntent, turn.State)
	assert.Equal(t, lego, turn.Toy)
	assert.Equal(t, "Для возраста 5 лет есть: Мяч, Конструктор LEGO. Что хотите узнать про Конструктор LEGO: цену, описание или наличие?", turn.Answer)
}

func TestFilterInterruptsAnyState(t *testing.T) {
	e := newEngine(t)
	say(e, 1, "сколько стоит")
	require.Equal(t, session.StateWaitingForToy, snapshot(t, e, 1).State)

	turn := say(e, 1, "до 400 рублей")
	assert.Equal(t, "До 400 рублей есть: Мяч.", turn.Answer)
	assert.Equal(t, session.StateNone, turn.State)
}

func TestFilterReportsUnmetConstraints(t *testing.T) {
	e := newEngine(t)

	turn := say(e, 1, "для 50 лет до 100 рублей")
	assert.Equal(t, "Извините, нет игрушек для возраста 50 лет и до 100 рублей. Не нашлось совпадений по условиям: возраст, цена.", turn.Answer)

	turn = say(e, 2, "для 5 лет до 100 рублей")
	assert.Contains(t, turn.Answer, "по условиям: цена.")

	turn = say(e, 3, "для 8 лет до 400 рублей")
	assert.Contains(t, turn.Answer, "по условиям: возраст, цена.")
	assert.Equal(t, session.OutcomeIntent, turn.Outcome)
}

func TestFilterSkipsRecentlyMentionedToys(t *testing.T) {
	e := newEngine(t)
	turn := say(e, 1, "хочу мяч", "для 5 лет")
	assert.Equal(t, lego, turn.Toy)
	assert.NotContains(t, turn.Answer, ball)
}

func TestToyIntentWithoutToyWaitsForToy(t *testing.T) {
	e := newEngine(t)

	turn := say(e, 1, "сколько стоит")
	assert.Equal(t, "Какую игрушку или категорию вы имеете в виду?", turn.Answer)
	assert.Equal(t, session.StateWaitingForToy, turn.State)

	turn = say(e, 1, "мяч")
	assert.Equal(t, session.StateWaitingForIntent, turn.State)
	assert.Equal(t, ball, turn.Toy)

	say(e, 2, "сколько стоит")
	turn = say(e, 2, "что-то про спорт")
	assert.Equal(t, "В категории «спорт» есть Мяч. Хотите узнать цену, описание или наличие?", turn.Answer)

	say(e, 3, "сколько стоит")
	turn = say(e, 3, "не знаю")
	assert.Equal(t, "Пожалуйста, уточните название игрушки или категорию.", turn.Answer)
	assert.Equal(t, session.StateWaitingForToy, turn.State)
}

func TestEmptyCategory(t *testing.T) {
	e := newEngine(t)
	turn := say(e, 1, "есть роботы")
	assert.Equal(t, "У нас нет игрушек в категории «роботы». Попробуйте другую категорию!", turn.Answer)
	assert.Equal(t, session.OutcomeFailure, turn.Outcome)
	assert.Equal(t, session.StateNone, turn.State)
}

func TestPromotedToyResolvesFollowUp(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.Random = &chance.Fixed{Ints: []int{1}, Floats: []float64{0.1}} })

	turn := say(e, 1, "привет")
	assert.Equal(t, "Здравствуйте! Кстати, у нас есть Конструктор LEGO — отличный выбор для детей от 5 до 10 лет!", turn.Answer)

	turn = say(e, 1, "сколько стоит")
	assert.Equal(t, "Конструктор LEGO стоит 800 рублей. Что ещё интересует?", turn.Answer)
	assert.Equal(t, lego, turn.Toy)
}

func TestToyTypesHistoryResolvesFollowUp(t *testing.T) {
	e := newEngine(t)
	turn := say(e, 1, "какие игрушки есть")
	assert.Contains(t, turn.Answer, "игрушки вроде Мяч, Конструктор LEGO")
	assert.Empty(t, turn.Toy)

	turn = say(e, 1, "хочу мяч", "asdkjh123", "сколько стоит")
	assert.Equal(t, "Мяч стоит 300 рублей. Что ещё интересует?", turn.Answer)
}

func TestCompareToysPicksDistinct(t *testing.T) {
	e := newEngine(t)
	turn := say(e, 1, "сравни игрушки")
	assert.Equal(t, "Сравним Мяч и Конструктор LEGO. Что интересует: Мяч или Конструктор LEGO?", turn.Answer)
	assert.Equal(t, ball, turn.Toy)
}

func TestYesDependsOnLastIntent(t *testing.T) {
	e := newEngine(t)
	assert.Equal(t, "Хорошо, что интересует? Игрушки, цены или что-то ещё?", say(e, 1, "конечно").Answer)
	assert.Equal(t, "Хорошо, давай продолжим! Хочешь узнать про игрушки?", say(e, 2, "расскажи анекдот", "конечно").Answer)
	assert.Contains(t, say(e, 3, "привет", "конечно").Answer, "Отлично! У нас есть")
}

func TestHistoryIsCapped(t *testing.T) {
	e := newEngine(t)
	utterances := []string{"привет", "хочу мяч", "нет", "asdkjh", "расскажи анекдот", "пока", "сколько стоит"}
	say(e, 1, utterances...)
	assert.Equal(t, utterances[2:], snapshot(t, e, 1).History)
}

func TestEveryTurnIncrementsOneCounter(t *testing.T) {
	e := newEngine(t)
	utterances := []string{
		"привет", "хочу мяч", "сколько стоит", "asdkjh", "для 5 лет", "расскажи анекдот",
		"совсем непонятно", "конечно", "нет", "какие игрушки есть", "сравни игрушки",
		"подбери игрушку", "7 лет", "спорт", "роботы", "подбери игрушку", "не знаю", "", "пока",
	}
	var prev session.Counters
	for _, u := range utterances {
		turn := say(e, 1, u)
		diff := session.Counters{
			Intent:    turn.Stats.Intent - prev.Intent,
			Retrieval: turn.Stats.Retrieval - prev.Retrieval,
			Failure:   turn.Stats.Failure - prev.Failure,
		}
		assert.Equal(t, int64(1), diff.Total(), "utterance %q", u)
		assert.True(t, diff.Intent >= 0 && diff.Retrieval >= 0 && diff.Failure >= 0, "utterance %q", u)
		assert.NotEmpty(t, turn.Answer, "utterance %q", u)
		prev = turn.Stats
	}
}

func TestPanicIsAnsweredWithFailure(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.Classifier = panicClassifier{} })
	turn := say(e, 1, "сломайся пожалуйста")
	assert.Equal(t, session.OutcomeFailure, turn.Outcome)
	assert.Equal(t, int64(1), turn.Stats.Failure)
	assert.Equal(t, []string{"сломайся пожалуйста"}, snapshot(t, e, 1).History)
}

func TestToneSuffix(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.Sentiment = fixedTone(sentiment.Positive) })
	turn := say(e, 1, "привет")
	assert.Equal(t, "Здравствуйте! :)", turn.Answer)
	assert.Equal(t, sentiment.Positive, turn.Polarity)
}

func TestCommands(t *testing.T) {
	e := newEngine(t)
	assert.Equal(t, "Добро пожаловать в магазин игрушек!", e.Start(1))
	sc := snapshot(t, e, 1)
	assert.Equal(t, intent.Hello, sc.LastIntent)
	assert.Zero(t, sc.Stats.Total())

	e.Help(1)
	assert.Equal(t, intent.Help, snapshot(t, e, 1).LastIntent)

	assert.Equal(t, "Пожалуйста, отправьте текст.", e.NonText(1))
	assert.Equal(t, intent.Help, snapshot(t, e, 1).LastIntent)
}
