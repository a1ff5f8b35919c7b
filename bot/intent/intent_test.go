package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubModel struct {
	label string
	conf  float64
	calls int
}

func (m *stubModel) Classify(string) (string, float64) {
	m.calls++
	return m.label, m.conf
}

func testClassifier(m Model) *Classifier {
	return NewClassifier(m, map[Intent][]string{
		Hello:      {"привет", "здравствуйте"},
		Yes:        {"да", "конечно"},
		No:         {"нет"},
		ToyPrice:   {"сколько стоит", "какая цена"},
		ToyTypes:   {"какие игрушки есть"},
		ToyInfo:    {"расскажи про игрушку"},
		OrderToy:   {"хочу купить", "оформить заказ"},
		FilterToys: {"подбери по цене"},
	}, DefaultThreshold)
}

func TestParseRoundTrip(t *testing.T) {
	for i := Hello; i <= Help; i++ {
		got, ok := Parse(i.String())
		assert.True(t, ok, i.String())
		assert.Equal(t, i, got)
	}
	_, ok := Parse("weather")
	assert.False(t, ok)
	_, ok = Parse("")
	assert.False(t, ok)
}

func TestClassifyExactAndTypo(t *testing.T) {
	c := testClassifier(&stubModel{label: "bye", conf: 0.9})

	in, ok := c.Classify("Привет!")
	assert.True(t, ok)
	assert.Equal(t, Hello, in)

	in, ok = c.Classify("сколко стоит")
	assert.True(t, ok)
	assert.Equal(t, ToyPrice, in)
}

func TestClassifyIgnoresConfidentModelWithoutFuzzySupport(t *testing.T) {
	m := &stubModel{label: "toy_price", conf: 0.99}
	c := testClassifier(m)

	in, ok := c.Classify("расскажи анекдот про космос")
	assert.False(t, ok)
	assert.Equal(t, None, in)
	assert.Equal(t, 1, m.calls)
}

func TestClassifyEmpty(t *testing.T) {
	m := &stubModel{label: "hello", conf: 1}
	c := testClassifier(m)
	_, ok := c.Classify("!!! ???")
	assert.False(t, ok)
	assert.Zero(t, m.calls)
}

func TestVoteTieKeepsFirstIntent(t *testing.T) {
	c := NewClassifier(nil, map[Intent][]string{
		Hello: {"абвг"},
		Bye:   {"абвд"},
	}, 0.7)
	v := c.Vote("абвв")
	assert.Equal(t, Hello, v.Intent)
	assert.InDelta(t, 0.75, v.Score, 1e-9)
}

func TestAboutToy(t *testing.T) {
	for _, in := range []Intent{ToyPrice, ToyAvailability, ToyInfo, OrderToy} {
		assert.True(t, in.AboutToy(), in.String())
	}
	assert.False(t, Yes.AboutToy())
	assert.False(t, Offtopic.IsClassifiable())
	assert.Len(t, Classifiable(), 12)
}
