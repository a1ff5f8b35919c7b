package stats

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus counts turns by outcome and intent.
type Prometheus struct {
	turns *prometheus.CounterVec
}

// NewPrometheus registers the turn counter with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	turns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "toybot",
		Name:      "turns_total",
		Help:      "Answered dialogue turns by outcome and intent.",
	}, []string{"outcome", "intent"})
	if err := reg.Register(turns); err != nil {
		return nil, err
	}
	return &Prometheus{turns: turns}, nil
}

// Record implements Recorder.
func (p *Prometheus) Record(_ context.Context, r Record) error {
	p.turns.WithLabelValues(r.Outcome.String(), r.IntentLabel()).Inc()
	return nil
}
