package stats

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/toybot/bot/session"
)

const (
	insertOutcome = `INSERT INTO dialog_outcomes
	(event_id, session_id, utterance, answer, intent, outcome, state, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (event_id) DO NOTHING`

	countOutcomes = `SELECT outcome, count(*) AS n FROM dialog_outcomes GROUP BY outcome`
)

// Postgres appends one row per turn to dialog_outcomes.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Record implements Recorder. Inserts are idempotent on the event id.
func (p *Postgres) Record(ctx context.Context, r Record) error {
	_, err := p.db.ExecContext(ctx, insertOutcome,
		r.EventID, r.SessionID, r.Utterance, r.Answer,
		r.IntentLabel(), r.Outcome.String(), r.State.String(), r.At,
	)
	if err != nil {
		return fmt.Errorf("insert dialog outcome: %w", err)
	}
	return nil
}

// Counts sums the stored outcomes across all sessions.
func (p *Postgres) Counts(ctx context.Context) (session.Counters, error) {
	var rows []struct {
		Outcome string `db:"outcome"`
		N       int64  `db:"n"`
	}
	if err := p.db.SelectContext(ctx, &rows, countOutcomes); err != nil {
		return session.Counters{}, fmt.Errorf("count dialog outcomes: %w", err)
	}
	var c session.Counters
	for _, row := range rows {
		switch row.Outcome {
		case session.OutcomeIntent.String():
			c.Intent += row.N
		case session.OutcomeRetrieval.String():
			c.Retrieval += row.N
		case session.OutcomeFailure.String():
			c.Failure += row.N
		}
	}
	return c, nil
}
