package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/toybot/bot/catalog"
	"github.com/m3rciful/toybot/bot/text"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Toy{
		{Name: "Кукла Барби", Price: 1500, Age: catalog.AgeRange{Min: 3, Max: 10}, Categories: []string{"куклы"}, Synonyms: []string{"барби"}},
		{Name: "Конструктор LEGO", Price: 3500, Age: catalog.AgeRange{Min: 6, Max: 12}, Categories: []string{"конструкторы"}, Synonyms: []string{"лего"}},
		{Name: "Мяч", Price: 300, Age: catalog.AgeRange{Min: 3, Max: 6}, Categories: []string{"спорт"}},
		{Name: "Пазл 1000 деталей", Price: 900, Age: catalog.AgeRange{Min: 10, Open: true}, Categories: []string{"пазлы", "настольные игры"}},
	}, []catalog.Category{
		{Name: "настольные игры", Synonyms: []string{"настолки"}},
		{Name: "куклы", Synonyms: []string{"куколки"}},
		{Name: "роботы"},
	})
	require.NoError(t, err)
	return c
}

func TestAge(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"игрушка для ребенка 5 лет", "5", true},
		{"Что-нибудь для 7", "7", true},
		{"мне 10 лет", "10", true},
		{"ей 1 год", "1", true},
		{"хочу 5 машинок", "", false},
		{"для сына до 500 рублей", "", false},
		{"для 500 рублей", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := Age(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestPrice(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"игрушка до 500 рублей", 500, true},
		{"что-то за 300 руб", 300, true},
		{"дешевле 1000", 1000, true},
		{"Для 5 лет до 700 р.", 700, true},
		{"5 игрушек", 0, false},
		{"до 5 лет", 0, false},
		{"до 99999999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, ok := Price(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestAgeInRange(t *testing.T) {
	r := catalog.AgeRange{Min: 5, Max: 10}
	assert.True(t, AgeInRange("5", r))
	assert.True(t, AgeInRange("10", r))
	assert.False(t, AgeInRange("4", r))
	assert.False(t, AgeInRange("11", r))
	assert.False(t, AgeInRange("пять", r))
	assert.False(t, AgeInRange("", r))
	assert.True(t, AgeInRange("40", catalog.AgeRange{Min: 10, Open: true}))
}

func TestToyName(t *testing.T) {
	e := New(testCatalog(t), nil, DefaultToyThreshold)
	cases := map[string]string{
		"сколько стоит барби":    "Кукла Барби",
		"Хочу конструктор LEGO!": "Конструктор LEGO",
		"конструктр lego":        "Конструктор LEGO",
		"есть мяч?":              "Мяч",
		"пазл на 1000 деталей":   "Пазл 1000 деталей",
		"а лего и мяч есть":      "Конструктор LEGO",
		"конструкт":              "Конструктор LEGO",
	}
	for in, want := range cases {
		got, ok := e.ToyName(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"привет", "да", "пазл на 500 деталей", "asdkjh123", ""} {
		_, ok := e.ToyName(in)
		assert.False(t, ok, in)
	}
}

func TestCategoryUsesLemmas(t *testing.T) {
	dict, err := text.NewDictionary(map[string][]string{"кукла": {"куклу", "куклы"}})
	require.NoError(t, err)
	e := New(testCatalog(t), text.NewNormalizer(dict), DefaultToyThreshold)

	got, ok := e.Category("хочу куклу")
	assert.True(t, ok)
	assert.Equal(t, "куклы", got)

	_, ok = New(testCatalog(t), nil, DefaultToyThreshold).Category("хочу куклу")
	assert.False(t, ok)
}

func TestCategory(t *testing.T) {
	e := New(testCatalog(t), nil, DefaultToyThreshold)
	cases := map[string]string{
		"покажи настолки":         "настольные игры",
		"какие куколки есть":      "куклы",
		"есть роботы":             "роботы",
		"куклы и пазлы":           "куклы",
		"пазлы и настольные игры": "пазлы",
	}
	for in, want := range cases {
		got, ok := e.Category(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := e.Category("сколько стоит")
	assert.False(t, ok)
}

func TestExtract(t *testing.T) {
	e := New(testCatalog(t), nil, DefaultToyThreshold)
	s := e.Extract("куклы для 5 лет до 2000 рублей")
	assert.Equal(t, "5", s.Age)
	assert.True(t, s.HasAge())
	assert.True(t, s.HasPrice)
	assert.Equal(t, 2000, s.Price)
	assert.Equal(t, "куклы", s.Category)
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100.0, PartialRatio("хочу lego сейчас", "lego"))
	assert.Equal(t, 0.0, PartialRatio("да", "мяч"))
	assert.Equal(t, 0.0, PartialRatio("", "мяч"))
	assert.InDelta(t, 60.0, PartialRatio("мой робт", "робот"), 1e-9)
	assert.Equal(t, 100.0, PartialRatio("монопол", "монополия"))
	assert.InDelta(t, 100.0*2/3, PartialRatio("мя", "мяч"), 1e-9)
}

func TestToyNameMatchesTruncatedName(t *testing.T) {
	c, err := catalog.New([]catalog.Toy{
		{Name: "Мяч", Price: 400, Age: catalog.AgeRange{Min: 3, Max: 8}, Categories: []string{"спорт"}},
		{Name: "Монополия", Price: 2200, Age: catalog.AgeRange{Min: 8, Open: true}, Categories: []string{"настольные игры"}},
	}, nil)
	require.NoError(t, err)
	e := New(c, nil, DefaultToyThreshold)

	got, ok := e.ToyName("монопол")
	assert.True(t, ok)
	assert.Equal(t, "Монополия", got)

	_, ok = e.ToyName("мя")
	assert.False(t, ok)
}
