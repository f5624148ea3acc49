package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/queue"
	"github.com/unclebandit/edutour-mailer/internal/repository"
)

// CampaignDispatcher is the part of Dispatcher the composer and worker need.
type CampaignDispatcher interface {
	Dispatch(ctx context.Context, campaignID string) (*DispatchResult, error)
}

// Worker runs queued dispatch jobs
type Worker struct {
	Dispatcher   CampaignDispatcher
	CampaignRepo repository.CampaignRepositoryInterface
	Timeout      time.Duration
	Logger       *zap.Logger
}

// Handle runs one job. A run that fails before any partner was attempted puts
// the campaign back to draft, the same as a failed synchronous send.
func (w *Worker) Handle(job queue.DispatchJob) error {
	ctx := context.Background()
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}
	log := w.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("campaign_id", job.CampaignID))

	res, err := w.Dispatcher.Dispatch(ctx, job.CampaignID)
	if err == nil {
		log.Info("queued dispatch finished",
			zap.Int("successful_sends", res.SuccessfulSends),
			zap.Int("failed_sends", res.FailedSends))
		return nil
	}
	if revertable(res, err) {
		if rerr := w.CampaignRepo.UpdateStatus(ctx, job.CampaignID, model.StatusDraft); rerr != nil {
			log.Error("reverting campaign to draft", zap.Error(rerr))
		}
	}
	return err
}
