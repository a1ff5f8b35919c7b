// Package session keeps per-user conversation context in memory and serializes
// turns of the same user.
package session

import "github.com/m3rciful/toybot/bot/intent"

// State is the dialogue state machine position.
type State int

const (
	StateNone State = iota
	StateWaitingForToy
	StateWaitingForAge
	StateWaitingForIntent
)

func (s State) String() string {
	switch s {
	case StateWaitingForToy:
		return "WAITING_FOR_TOY"
	case StateWaitingForAge:
		return "WAITING_FOR_AGE"
	case StateWaitingForIntent:
		return "WAITING_FOR_INTENT"
	default:
		return "NONE"
	}
}

// Outcome classifies how a turn was answered.
type Outcome int

const (
	OutcomeIntent Outcome = iota
	OutcomeRetrieval
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRetrieval:
		return "retrieval"
	case OutcomeFailure:
		return "failure"
	default:
		return "intent"
	}
}

// Counters are monotonic per-session outcome counts.
type Counters struct {
	Intent    int64 `json:"intent"`
	Retrieval int64 `json:"retrieval"`
	Failure   int64 `json:"failure"`
}

// Total returns the number of answered turns.
func (c Counters) Total() int64 { return c.Intent + c.Retrieval + c.Failure }

// Add returns the element-wise sum of c and o.
func (c Counters) Add(o Counters) Counters {
	return Counters{Intent: c.Intent + o.Intent, Retrieval: c.Retrieval + o.Retrieval, Failure: c.Failure + o.Failure}
}

// Context is the mutable memory of one conversation. It is owned by a single
// session and only touched inside Store.Do.
type Context struct {
	State           State
	CurrentToy      string
	LastBotResponse string
	LastIntent      intent.Intent
	History         []string
	Stats           Counters

	historySize int
}

// Remember appends utterance to the history, evicting the oldest entries
// beyond the configured size.
func (c *Context) Remember(utterance string) {
	if c.historySize <= 0 {
		c.History = c.History[:0]
		return
	}
	c.History = append(c.History, utterance)
	if over := len(c.History) - c.historySize; over > 0 {
		c.History = append(c.History[:0], c.History[over:]...)
	}
}

// Record increments the counter of outcome.
func (c *Context) Record(o Outcome) {
	switch o {
	case OutcomeRetrieval:
		c.Stats.Retrieval++
	case OutcomeFailure:
		c.Stats.Failure++
	default:
		c.Stats.Intent++
	}
}

func (c *Context) clone() Context {
	cp := *c
	cp.History = append([]string(nil), c.History...)
	return cp
}
