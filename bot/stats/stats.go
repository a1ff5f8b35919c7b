// Package stats receives one record per answered turn and forwards it to the
// configured sinks: Prometheus counters and an optional Postgres table.
package stats

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/toybot/bot/intent"
	"github.com/m3rciful/toybot/bot/session"
)

// Record summarizes one decision. Sinks never feed it back into the engine.
type Record struct {
	EventID   uuid.UUID
	SessionID int64
	Utterance string
	Answer    string
	Intent    intent.Intent
	Outcome   session.Outcome
	State     session.State
	At        time.Time
}

// NewRecord stamps a record with a fresh event id and the current time.
func NewRecord(sessionID int64, utterance, answer string) Record {
	return Record{
		EventID:   uuid.New(),
		SessionID: sessionID,
		Utterance: utterance,
		Answer:    answer,
		At:        time.Now().UTC(),
	}
}

// IntentLabel renders the intent of r, using "none" for turns without one.
func (r Record) IntentLabel() string {
	if label := r.Intent.String(); label != "" {
		return label
	}
	return "none"
}

// Recorder consumes turn records.
type Recorder interface {
	Record(ctx context.Context, r Record) error
}

// Multi fans a record out to every recorder and joins their errors.
type Multi []Recorder

// Record implements Recorder.
func (m Multi) Record(ctx context.Context, r Record) error {
	var errs []error
	for _, rec := range m {
		if rec == nil {
			continue
		}
		if err := rec.Record(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every record.
type Discard struct{}

// Record implements Recorder.
func (Discard) Record(context.Context, Record) error { return nil }
