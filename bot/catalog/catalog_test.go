package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
categories:
  - name: конструкторы
    synonyms: [лего]
  - name: музыкальные игрушки
toys:
  - name: Конструктор LEGO
    price: 3500
    age: {min_age: 6, max_age: 12}
    categories: [конструкторы]
    synonyms: [лего сити]
  - name: Мяч
    price: 300
    age: "3-6"
    categories: [спорт]
  - name: Пазл 1000 деталей
    price: 900
    age: "10+"
    categories: [пазлы]
    description: Большой пейзаж
`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeCatalog(t, sample))
	require.NoError(t, err)

	assert.Equal(t, []string{"Конструктор LEGO", "Мяч", "Пазл 1000 деталей"}, c.Names())
	assert.Equal(t, []string{"конструкторы", "музыкальные игрушки", "спорт", "пазлы"}, c.CategoryNames())
	assert.Empty(t, c.InCategory("музыкальные игрушки"))
	assert.Equal(t, []string{"Мяч"}, c.InCategory("Спорт"))

	ball, ok := c.Toy("мяч")
	require.True(t, ok)
	assert.Equal(t, AgeRange{Min: 3, Max: 6}, ball.Age)
	assert.Equal(t, DefaultDescription, ball.About())

	puzzle, ok := c.Toy("Пазл 1000 деталей")
	require.True(t, ok)
	assert.True(t, puzzle.Age.Open)
	assert.Equal(t, "от 10 лет", puzzle.Age.String())
	assert.Equal(t, "Большой пейзаж", puzzle.About())

	_, ok = c.Toy("робот")
	assert.False(t, ok)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":          "toys: []\n",
		"inverted range": "toys:\n  - name: A\n    price: 1\n    age: {min_age: 9, max_age: 3}\n",
		"duplicate":      "toys:\n  - name: A\n    age: \"1-2\"\n  - name: a\n    age: \"1-2\"\n",
		"negative price": "toys:\n  - name: A\n    price: -5\n    age: \"1+\"\n",
		"bad legacy age": "toys:\n  - name: A\n    age: \"пять\"\n",
		"missing min":    "toys:\n  - name: A\n    age: {max_age: 5}\n",
		"missing age":    "toys:\n  - name: A\n    price: 100\n    categories: [спорт]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeCatalog(t, body))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestParseAgeRange(t *testing.T) {
	r, err := ParseAgeRange("5-10")
	require.NoError(t, err)
	assert.Equal(t, AgeRange{Min: 5, Max: 10}, r)

	r, err = ParseAgeRange(" 10+ ")
	require.NoError(t, err)
	assert.Equal(t, AgeRange{Min: 10, Open: true}, r)

	r, err = ParseAgeRange("7")
	require.NoError(t, err)
	assert.Equal(t, AgeRange{Min: 7, Max: 7}, r)

	_, err = ParseAgeRange("от пяти")
	assert.Error(t, err)
}

func TestAgeRangeContains(t *testing.T) {
	r := AgeRange{Min: 5, Max: 10}
	assert.True(t, r.Contains(5))
	assert.True(t, r.Contains(10))
	assert.False(t, r.Contains(4))
	assert.False(t, r.Contains(11))
	assert.True(t, AgeRange{Min: 10, Open: true}.Contains(99))
}
