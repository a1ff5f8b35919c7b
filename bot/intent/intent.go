// Package intent defines the closed set of conversational intents and the
// classifier that maps utterances onto them.
package intent

// Intent is the discrete purpose of an utterance.
type Intent int

const (
	// None means no intent was recognised or recorded yet.
	None Intent = iota
	Hello
	Bye
	Yes
	No
	ToyTypes
	ToyPrice
	ToyAvailability
	ToyRecommendation
	FilterToys
	ToyInfo
	OrderToy
	CompareToys
	// Offtopic marks answers produced by the retrieval fallback.
	Offtopic
	// Help marks the /help command.
	Help
)

var names = [...]string{
	None:              "",
	Hello:             "hello",
	Bye:               "bye",
	Yes:               "yes",
	No:                "no",
	ToyTypes:          "toy_types",
	ToyPrice:          "toy_price",
	ToyAvailability:   "toy_availability",
	ToyRecommendation: "toy_recommendation",
	FilterToys:        "filter_toys",
	ToyInfo:           "toy_info",
	OrderToy:          "order_toy",
	CompareToys:       "compare_toys",
	Offtopic:          "offtopic",
	Help:              "help",
}

func (i Intent) String() string {
	if i < 0 || int(i) >= len(names) {
		return "unknown"
	}
	return names[i]
}

// Parse maps a label such as "toy_price" to its Intent.
func Parse(label string) (Intent, bool) {
	if label == "" {
		return None, false
	}
	for i, name := range names {
		if name == label {
			return Intent(i), true
		}
	}
	return None, false
}

// Classifiable lists intents that own examples, in enumeration order.
func Classifiable() []Intent {
	out := make([]Intent, 0, CompareToys)
	for i := Hello; i <= CompareToys; i++ {
		out = append(out, i)
	}
	return out
}

// IsClassifiable reports whether i can be produced by the classifier.
func (i Intent) IsClassifiable() bool {
	return i >= Hello && i <= CompareToys
}

// AboutToy reports whether answering i requires a concrete toy.
func (i Intent) AboutToy() bool {
	switch i {
	case ToyPrice, ToyAvailability, ToyInfo, OrderToy:
		return true
	default:
		return false
	}
}
