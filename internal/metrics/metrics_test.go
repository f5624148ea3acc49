package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/edutour-mailer/internal/mailer"
)

type flakyMailer struct{ fail bool }

func (f *flakyMailer) Send(context.Context, mailer.Message) error {
	if f.fail {
		return errors.New("550 mailbox unavailable")
	}
	return nil
}

func TestWrapMailerCountsOutcomes(t *testing.T) {
	d := NewDispatch(prometheus.NewRegistry())
	inner := &flakyMailer{}
	m := d.WrapMailer(inner)

	assert.NoError(t, m.Send(context.Background(), mailer.Message{}))
	inner.fail = true
	assert.Error(t, m.Send(context.Background(), mailer.Message{}))
	assert.Error(t, m.Send(context.Background(), mailer.Message{}))

	assert.Equal(t, 1.0, testutil.ToFloat64(d.sends.WithLabelValues("sent")))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.sends.WithLabelValues("failed")))
}

func TestNilDispatchIsNoop(t *testing.T) {
	var d *Dispatch
	inner := &flakyMailer{}
	assert.Same(t, mailer.Mailer(inner), d.WrapMailer(inner))
	d.ObserveRun("ok", time.Now())
}

func TestObserveRun(t *testing.T) {
	d := NewDispatch(prometheus.NewRegistry())
	d.ObserveRun("ok", time.Now().Add(-time.Second))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.runs.WithLabelValues("ok")))
}
