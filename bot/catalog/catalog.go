// Package catalog holds the immutable toy catalog loaded once at startup.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCatalog wraps every catalog validation failure.
var ErrInvalidCatalog = errors.New("invalid catalog")

// DefaultDescription is used for toys without a description.
const DefaultDescription = "интересная игрушка"

// AgeRange is an inclusive age interval. Open ranges have no upper bound.
type AgeRange struct {
	Min  int
	Max  int
	Open bool
}

// Contains reports whether age lies within the range.
func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && (r.Open || age <= r.Max)
}

// String renders the range for replies, e.g. "от 3 до 6 лет" or "от 10 лет".
func (r AgeRange) String() string {
	if r.Open {
		return fmt.Sprintf("от %d лет", r.Min)
	}
	return fmt.Sprintf("от %d до %d лет", r.Min, r.Max)
}

// UnmarshalYAML accepts {min_age, max_age} mappings and the legacy "5-10" and "10+" strings.
func (r *AgeRange) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := ParseAgeRange(node.Value)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}
	var raw struct {
		Min *int `yaml:"min_age"`
		Max *int `yaml:"max_age"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Min == nil {
		return fmt.Errorf("age: min_age is required (line %d)", node.Line)
	}
	*r = AgeRange{Min: *raw.Min, Open: raw.Max == nil}
	if raw.Max != nil {
		r.Max = *raw.Max
	}
	return nil
}

// ParseAgeRange parses the legacy string forms "5-10", "10+" and "7".
func ParseAgeRange(s string) (AgeRange, error) {
	s = strings.TrimSpace(s)
	if lo, ok := strings.CutSuffix(s, "+"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return AgeRange{}, fmt.Errorf("age %q: %w", s, err)
		}
		return AgeRange{Min: n, Open: true}, nil
	}
	if lo, hi, ok := strings.Cut(s, "-"); ok {
		minAge, err1 := strconv.Atoi(strings.TrimSpace(lo))
		maxAge, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err := errors.Join(err1, err2); err != nil {
			return AgeRange{}, fmt.Errorf("age %q: %w", s, err)
		}
		return AgeRange{Min: minAge, Max: maxAge}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return AgeRange{}, fmt.Errorf("age %q: %w", s, err)
	}
	return AgeRange{Min: n, Max: n}, nil
}

// Toy is a catalog item.
type Toy struct {
	Name        string   `yaml:"name"`
	Price       int      `yaml:"price"`
	Age         AgeRange `yaml:"-"`
	Categories  []string `yaml:"categories"`
	Synonyms    []string `yaml:"synonyms"`
	Description string   `yaml:"description"`
}

// UnmarshalYAML decodes a toy and requires its age key; a zero range would
// only ever match newborns.
func (t *Toy) UnmarshalYAML(node *yaml.Node) error {
	type plain Toy
	if err := node.Decode((*plain)(t)); err != nil {
		return err
	}
	var raw struct {
		Age *AgeRange `yaml:"age"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Age == nil {
		return fmt.Errorf("toy %q: age is required (line %d)", t.Name, node.Line)
	}
	t.Age = *raw.Age
	return nil
}

// InCategory reports whether the toy declares category.
func (t Toy) InCategory(category string) bool {
	for _, c := range t.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// About returns the description or DefaultDescription.
func (t Toy) About() string {
	if strings.TrimSpace(t.Description) == "" {
		return DefaultDescription
	}
	return t.Description
}

// Category is a toy category with its synonyms.
type Category struct {
	Name     string   `yaml:"name"`
	Synonyms []string `yaml:"synonyms"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	toys       []Toy
	categories []Category
	byName     map[string]int
	byCategory map[string][]string
}

type file struct {
	Categories []Category `yaml:"categories"`
	Toys       []Toy      `yaml:"toys"`
}

// Load reads and validates a catalog YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, path, err)
	}
	return New(f.Toys, f.Categories)
}

// New validates toys and categories and builds a Catalog. Toy order is kept and
// acts as the tie-break wherever several toys match. Categories referenced by
// toys but not declared are appended in first-reference order.
func New(toys []Toy, categories []Category) (*Catalog, error) {
	if len(toys) == 0 {
		return nil, fmt.Errorf("%w: no toys", ErrInvalidCatalog)
	}
	c := &Catalog{
		toys:       make([]Toy, 0, len(toys)),
		byName:     make(map[string]int, len(toys)),
		byCategory: make(map[string][]string),
	}

	declared := make(map[string]bool, len(categories))
	for _, cat := range categories {
		cat.Name = strings.TrimSpace(cat.Name)
		key := strings.ToLower(cat.Name)
		if key == "" || declared[key] {
			return nil, fmt.Errorf("%w: empty or duplicate category %q", ErrInvalidCatalog, cat.Name)
		}
		declared[key] = true
		c.categories = append(c.categories, cat)
	}

	for i, t := range toys {
		t.Name = strings.TrimSpace(t.Name)
		key := strings.ToLower(t.Name)
		switch {
		case key == "":
			return nil, fmt.Errorf("%w: toy #%d has no name", ErrInvalidCatalog, i+1)
		case t.Price < 0:
			return nil, fmt.Errorf("%w: %s: negative price", ErrInvalidCatalog, t.Name)
		case t.Age.Min < 0 || (!t.Age.Open && t.Age.Max < t.Age.Min):
			return nil, fmt.Errorf("%w: %s: bad age range %s", ErrInvalidCatalog, t.Name, t.Age)
		}
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("%w: duplicate toy %q", ErrInvalidCatalog, t.Name)
		}
		c.byName[key] = len(c.toys)
		for _, cat := range t.Categories {
			ck := strings.ToLower(strings.TrimSpace(cat))
			if ck == "" {
				continue
			}
			if !declared[ck] {
				declared[ck] = true
				c.categories = append(c.categories, Category{Name: strings.TrimSpace(cat)})
			}
			c.byCategory[ck] = append(c.byCategory[ck], t.Name)
		}
		c.toys = append(c.toys, t)
	}
	return c, nil
}

// Toys returns the toys in catalog order. The slice must not be modified.
func (c *Catalog) Toys() []Toy { return c.toys }

// Len returns the number of toys.
func (c *Catalog) Len() int { return len(c.toys) }

// Toy looks a toy up by name, ignoring case.
func (c *Catalog) Toy(name string) (Toy, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Toy{}, false
	}
	return c.toys[i], true
}

// Names returns toy names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.toys))
	for i, t := range c.toys {
		names[i] = t.Name
	}
	return names
}

// Categories returns categories in declaration order.
func (c *Catalog) Categories() []Category { return c.categories }

// CategoryNames returns category names in declaration order.
func (c *Catalog) CategoryNames() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// Category looks a category up by name, ignoring case.
func (c *Catalog) Category(name string) (Category, bool) {
	for _, cat := range c.categories {
		if strings.EqualFold(cat.Name, name) {
			return cat, true
		}
	}
	return Category{}, false
}

// InCategory returns the names of toys in category, in catalog order.
func (c *Catalog) InCategory(category string) []string {
	return c.byCategory[strings.ToLower(strings.TrimSpace(category))]
}
