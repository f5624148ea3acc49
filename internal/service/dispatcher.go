// internal/service/dispatcher.go
package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
	"github.com/unclebandit/edutour-mailer/internal/lock"
	"github.com/unclebandit/edutour-mailer/internal/mailer"
	"github.com/unclebandit/edutour-mailer/internal/metrics"
	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/repository"
)

const (
	RecordBulk        = "bulk"
	RecordIncremental = "incremental"

	defaultLeaseTTL = 2 * time.Minute

	msgEmptyAudience = "Aucun partenaire actif trouvé pour le public cible."
)

// DispatchResult is what the trigger endpoint returns.
type DispatchResult struct {
	Message         string `json:"message"`
	SuccessfulSends int    `json:"successful_sends"`
	FailedSends     int    `json:"failed_sends"`
	// Attempted counts partners a send was tried for; zero means nothing left the building.
	Attempted int `json:"-"`
}

// Dispatcher sends one campaign to every active partner in its target types
// and finalizes the campaign row once.
type Dispatcher struct {
	CampaignRepo  repository.CampaignRepositoryInterface
	PartnerRepo   repository.PartnerRepositoryInterface
	RecipientRepo repository.RecipientRepositoryInterface
	Locker        lock.Locker
	// NewMailer is called after recipients are resolved so a missing relay
	// configuration aborts the run before the first send.
	NewMailer  func() (mailer.Mailer, error)
	From       mail.Address
	RecordMode string
	LeaseTTL   time.Duration
	InstanceID string
	Metrics    *metrics.Dispatch
	Logger     *zap.Logger

	now func() time.Time
}

func (d *Dispatcher) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d *Dispatcher) leaseTTL() time.Duration {
	if d.LeaseTTL <= 0 {
		return defaultLeaseTTL
	}
	return d.LeaseTTL
}

// Dispatch runs the whole pipeline for campaignID.
func (d *Dispatcher) Dispatch(ctx context.Context, campaignID string) (res *DispatchResult, err error) {
	started := time.Now()
	defer func() {
		d.Metrics.ObserveRun(runOutcome(err), started)
	}()

	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, appErrors.NewValidationError(appErrors.FieldError{Field: "campaignId", Error: "Un ID de campagne est requis."})
	}
	if _, perr := uuid.Parse(campaignID); perr != nil {
		return nil, appErrors.NewValidationError(appErrors.FieldError{Field: "campaignId", Error: "ID de campagne invalide"})
	}

	log := d.logger().With(zap.String("campaign_id", campaignID))
	ttl := d.leaseTTL()

	lease, err := d.Locker.Acquire(ctx, lock.CampaignKey(campaignID), ttl)
	if err != nil {
		return nil, err
	}
	defer func() {
		relCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if rerr := lease.Release(relCtx); rerr != nil {
			log.Warn("releasing campaign lock", zap.Error(rerr))
		}
	}()

	campaign, err := d.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	holder := d.InstanceID + "/" + uuid.NewString()
	claimed, err := d.CampaignRepo.ClaimLease(ctx, campaignID, holder, d.clock().Add(ttl))
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, errors.Wrap(appErrors.ErrDispatchInProgress, campaignID)
	}

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	hbDone := make(chan struct{})
	go func() {
		defer close(hbDone)
		d.heartbeat(hbCtx, log, campaignID, holder, lease, ttl)
	}()
	finished := false
	defer func() {
		stopHeartbeat()
		<-hbDone
		if finished {
			return
		}
		// Aborted before finalize: leave status alone but give the row back.
		relCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if rerr := d.CampaignRepo.ReleaseLease(relCtx, campaignID, holder); rerr != nil {
			log.Warn("releasing dispatch lease", zap.Error(rerr))
		}
	}()

	partners, err := d.PartnerRepo.ListActiveByTypes(ctx, campaign.TargetTypes())
	if err != nil {
		return nil, errors.Wrap(err, "Échec de la récupération des partenaires")
	}

	if len(partners) == 0 {
		if err := d.CampaignRepo.Finalize(ctx, campaignID, repository.Finalization{SentAt: d.clock()}); err != nil {
			log.Error("finalizing empty campaign", zap.Error(err))
			return nil, err
		}
		finished = true
		log.Info("no active partners for campaign targets", zap.Strings("targets", campaign.TargetPartnerTypes))
		return &DispatchResult{Message: msgEmptyAudience}, nil
	}

	m, err := d.NewMailer()
	if err != nil {
		return nil, err
	}

	res, rows, recordErr := d.sendAll(ctx, log, m, campaign, partners)

	if d.RecordMode != RecordIncremental {
		if err := d.RecipientRepo.BulkInsert(ctx, rows); err != nil {
			log.Error("recording campaign recipients; emails already sent",
				zap.Int("rows", len(rows)), zap.Error(err))
			recordErr = err
		}
	}

	fin := repository.Finalization{
		SentAt:          d.clock(),
		TotalRecipients: len(partners),
		SuccessfulSends: res.SuccessfulSends,
		FailedSends:     res.FailedSends,
	}
	if err := d.CampaignRepo.Finalize(ctx, campaignID, fin); err != nil {
		log.Error("finalizing campaign; emails already sent",
			zap.Int("successful_sends", res.SuccessfulSends),
			zap.Int("failed_sends", res.FailedSends),
			zap.Error(err))
		return res, err
	}
	finished = true

	log.Info("campaign dispatched",
		zap.Int("total_recipients", len(partners)),
		zap.Int("successful_sends", res.SuccessfulSends),
		zap.Int("failed_sends", res.FailedSends),
		zap.Duration("elapsed", time.Since(started)))

	if recordErr != nil {
		return res, recordErr
	}
	return res, nil
}

// sendAll attempts every partner once, in list order. In incremental mode each
// row is written right after its send; otherwise rows are returned for one
// bulk insert.
func (d *Dispatcher) sendAll(ctx context.Context, log *zap.Logger, m mailer.Mailer, c *model.Campaign, partners []model.Partner) (*DispatchResult, []model.CampaignRecipient, error) {
	res := &DispatchResult{}
	rows := make([]model.CampaignRecipient, 0, len(partners))
	var recordErr error

	for _, p := range partners {
		html := Personalize(c.HTMLContent, p)
		sendErr := m.Send(ctx, mailer.Message{
			From:    d.From,
			To:      p.Email,
			Subject: c.Subject,
			HTML:    html,
		})
		res.Attempted++

		sentAt := d.clock()
		row := model.CampaignRecipient{
			ID:                  uuid.NewString(),
			CampaignID:          c.ID,
			PartnerID:           p.ID,
			Email:               p.Email,
			Status:              model.RecipientSent,
			SentAt:              &sentAt,
			PersonalizedContent: &html,
		}
		if sendErr != nil {
			msg := sendErr.Error()
			row.Status = model.RecipientFailed
			row.ErrorMessage = &msg
			res.FailedSends++
			log.Warn("send failed", zap.String("email", p.Email), zap.Error(sendErr))
		} else {
			res.SuccessfulSends++
		}

		if d.RecordMode == RecordIncremental {
			if err := d.RecipientRepo.Insert(ctx, row); err != nil {
				log.Error("recording campaign recipient", zap.String("email", p.Email), zap.Error(err))
				recordErr = err
			}
		}
		rows = append(rows, row)
	}

	res.Message = fmt.Sprintf("Campagne envoyée. Succès : %d, Échecs : %d", res.SuccessfulSends, res.FailedSends)
	return res, rows, recordErr
}

// heartbeat keeps the lock and the row lease alive until ctx is cancelled.
func (d *Dispatcher) heartbeat(ctx context.Context, log *zap.Logger, campaignID, holder string, lease lock.Lease, ttl time.Duration) {
	ticker := time.NewTicker(ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := lease.Refresh(ctx); err != nil && ctx.Err() == nil {
				log.Warn("refreshing campaign lock", zap.Error(err))
			}
			err := d.CampaignRepo.RenewLease(ctx, campaignID, holder, d.clock().Add(ttl))
			switch {
			case err == nil || ctx.Err() != nil:
			case errors.Is(err, appErrors.ErrLeaseLost):
				log.Warn("dispatch lease lost; campaign may have been marked stalled", zap.String("holder", holder))
			default:
				log.Warn("renewing dispatch lease", zap.Error(err))
			}
		}
	}
}

func runOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, appErrors.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, appErrors.ErrDispatchInProgress):
		return "in_progress"
	case appErrors.IsCampaignNotFound(err):
		return "not_found"
	}
	return "error"
}
