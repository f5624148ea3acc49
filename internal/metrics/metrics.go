// Package metrics holds the prometheus collectors for campaign dispatch.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unclebandit/edutour-mailer/internal/mailer"
)

type Dispatch struct {
	sends    *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewDispatch registers the dispatch collectors on reg.
func NewDispatch(reg prometheus.Registerer) *Dispatch {
	d := &Dispatch{
		sends: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaign_email_sends_total",
				Help: "Outbound campaign emails by outcome",
			},
			[]string{"outcome"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaign_dispatch_runs_total",
				Help: "Dispatch runs by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campaign_dispatch_duration_seconds",
				Help:    "Wall time of a dispatch run",
				Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(d.sends, d.runs, d.duration)
	return d
}

// ObserveRun records one finished run. Safe on a nil receiver.
func (d *Dispatch) ObserveRun(outcome string, started time.Time) {
	if d == nil {
		return
	}
	d.runs.WithLabelValues(outcome).Inc()
	d.duration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}

// WrapMailer counts every send made through m.
func (d *Dispatch) WrapMailer(m mailer.Mailer) mailer.Mailer {
	if d == nil {
		return m
	}
	return &countingMailer{Mailer: m, sends: d.sends}
}

type countingMailer struct {
	mailer.Mailer
	sends *prometheus.CounterVec
}

func (c *countingMailer) Send(ctx context.Context, msg mailer.Message) error {
	err := c.Mailer.Send(ctx, msg)
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	c.sends.WithLabelValues(outcome).Inc()
	return err
}
