// internal/service/reconciler.go
package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
	"github.com/unclebandit/edutour-mailer/internal/lock"
	"github.com/unclebandit/edutour-mailer/internal/repository"
)

const reconcilerLockKey = "campaign_reconciler"

// Reconciler flags campaigns left in "sending" by a run that died. It never
// resends; an admin resets the campaign to draft after checking the report.
type Reconciler struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Locker       lock.Locker
	Interval     time.Duration
	LeaseTTL     time.Duration
	Logger       *zap.Logger
}

// Run ticks until ctx is cancelled. Only one instance across the fleet does
// the work on a given tick.
func (r *Reconciler) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	log := r.logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("reconciler stopped")
			return
		case <-ticker.C:
		}

		lease, err := r.Locker.Acquire(ctx, reconcilerLockKey, interval)
		if err != nil {
			if !errors.Is(err, appErrors.ErrDispatchInProgress) {
				log.Warn("acquiring reconciler lock", zap.Error(err))
			}
			continue
		}
		if _, err := r.ReconcileOnce(ctx, time.Now()); err != nil {
			log.Error("reconciling stalled campaigns", zap.Error(err))
		}
		unCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := lease.Release(unCtx); err != nil {
			log.Warn("releasing reconciler lock", zap.Error(err))
		}
		cancel()
	}
}

// ReconcileOnce marks every abandoned sending campaign as stalled and
// returns how many it flagged.
func (r *Reconciler) ReconcileOnce(ctx context.Context, now time.Time) (int, error) {
	ttl := r.LeaseTTL
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	stalled, err := r.CampaignRepo.ListStalled(ctx, now, now.Add(-ttl))
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, c := range stalled {
		if err := r.CampaignRepo.MarkStalled(ctx, c.ID, now); err != nil {
			return marked, err
		}
		marked++
		r.logger().Warn("campaign stuck in sending; reset it after checking the recipient report",
			zap.String("campaign_id", c.ID),
			zap.String("name", c.Name))
	}
	return marked, nil
}

func (r *Reconciler) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
