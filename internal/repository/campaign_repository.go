package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
	"github.com/unclebandit/edutour-mailer/internal/model"
)

// Finalization is the single write that closes a dispatch run.
type Finalization struct {
	SentAt          time.Time
	TotalRecipients int
	SuccessfulSends int
	FailedSends     int
}

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, offset, limit int, status, search string) ([]*model.Campaign, int, error)
	Update(ctx context.Context, c *model.Campaign) error
	UpdateStatus(ctx context.Context, id string, status model.CampaignStatus) error
	Delete(ctx context.Context, id string) error

	// Dispatch bookkeeping
	Finalize(ctx context.Context, id string, f Finalization) error
	ClaimLease(ctx context.Context, id, holder string, expiresAt time.Time) (bool, error)
	RenewLease(ctx context.Context, id, holder string, expiresAt time.Time) error
	ReleaseLease(ctx context.Context, id, holder string) error
	ListStalled(ctx context.Context, now, idleBefore time.Time) ([]*model.Campaign, error)
	MarkStalled(ctx context.Context, id string, at time.Time) error
}

type CampaignRepository struct {
	DB *sqlx.DB
}

const campaignColumns = `id, name, subject, html_content, template_id, target_partner_types, status,
	scheduled_at, sent_at, total_recipients, successful_sends, failed_sends, created_by,
	dispatch_holder, dispatch_lease_expires_at, stalled_at, created_at, updated_at`

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.StatusDraft
	}
	query := `
		INSERT INTO email_campaigns (id, name, subject, html_content, template_id, target_partner_types,
			status, scheduled_at, total_recipients, created_by, created_at)
		VALUES (:id, :name, :subject, :html_content, :template_id, :target_partner_types,
			:status, :scheduled_at, :total_recipients, :created_by, :created_at)
	`
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return errors.Wrap(err, "inserting campaign")
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.DB.GetContext(ctx, &c, `SELECT `+campaignColumns+` FROM email_campaigns WHERE id=$1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, errors.Wrap(err, "loading campaign")
	}
	return &c, nil
}

func (r *CampaignRepository) ListCampaigns(ctx context.Context, offset, limit int, status, search string) ([]*model.Campaign, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		where += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}
	if search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR subject ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+search+"%")
		argPos++
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM email_campaigns`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting campaigns")
	}

	query := `SELECT ` + campaignColumns + ` FROM email_campaigns` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	campaigns := []*model.Campaign{}
	if err := r.DB.SelectContext(ctx, &campaigns, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "listing campaigns")
	}
	return campaigns, total, nil
}

func (r *CampaignRepository) Update(ctx context.Context, c *model.Campaign) error {
	query := `
		UPDATE email_campaigns
		SET name=:name, subject=:subject, html_content=:html_content, template_id=:template_id,
			target_partner_types=:target_partner_types, status=:status, scheduled_at=:scheduled_at,
			total_recipients=:total_recipients, updated_at=NOW()
		WHERE id=:id
	`
	res, err := r.DB.NamedExecContext(ctx, query, c)
	if err != nil {
		return errors.Wrap(err, "updating campaign")
	}
	return expectOne(res, c.ID)
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, id string, status model.CampaignStatus) error {
	query := `UPDATE email_campaigns SET status=$1, stalled_at=NULL, updated_at=$2 WHERE id=$3`
	res, err := r.DB.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return errors.Wrap(err, "updating campaign status")
	}
	return expectOne(res, id)
}

// Delete removes the campaign's recipient rows and then the campaign itself.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting delete transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_recipients WHERE campaign_id=$1`, id); err != nil {
		return errors.Wrap(err, "deleting campaign recipients")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM email_campaigns WHERE id=$1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting campaign")
	}
	if err := expectOne(res, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ====================== Dispatch bookkeeping ======================

// Finalize overwrites status, sent_at and counters unconditionally and drops the lease.
func (r *CampaignRepository) Finalize(ctx context.Context, id string, f Finalization) error {
	query := `
		UPDATE email_campaigns
		SET status=$1, sent_at=$2, total_recipients=$3, successful_sends=$4, failed_sends=$5,
			dispatch_holder=NULL, dispatch_lease_expires_at=NULL, updated_at=NOW()
		WHERE id=$6
	`
	_, err := r.DB.ExecContext(ctx, query, model.StatusSent, f.SentAt, f.TotalRecipients, f.SuccessfulSends, f.FailedSends, id)
	return errors.Wrap(err, "finalizing campaign")
}

// ClaimLease takes the dispatch lease unless another holder has an unexpired one.
func (r *CampaignRepository) ClaimLease(ctx context.Context, id, holder string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE email_campaigns
		SET dispatch_holder=$1, dispatch_lease_expires_at=$2, stalled_at=NULL
		WHERE id=$3 AND (dispatch_holder IS NULL OR dispatch_holder=$1 OR dispatch_lease_expires_at < NOW())
	`
	res, err := r.DB.ExecContext(ctx, query, holder, expiresAt, id)
	if err != nil {
		return false, errors.Wrap(err, "claiming dispatch lease")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RenewLease extends the lease, or returns ErrLeaseLost once holder no
// longer owns it (the reconciler cleared it or another run claimed it).
func (r *CampaignRepository) RenewLease(ctx context.Context, id, holder string, expiresAt time.Time) error {
	query := `UPDATE email_campaigns SET dispatch_lease_expires_at=$1 WHERE id=$2 AND dispatch_holder=$3`
	res, err := r.DB.ExecContext(ctx, query, expiresAt, id, holder)
	if err != nil {
		return errors.Wrap(err, "renewing dispatch lease")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrap(appErrors.ErrLeaseLost, id)
	}
	return nil
}

func (r *CampaignRepository) ReleaseLease(ctx context.Context, id, holder string) error {
	query := `UPDATE email_campaigns SET dispatch_holder=NULL, dispatch_lease_expires_at=NULL WHERE id=$1 AND dispatch_holder=$2`
	_, err := r.DB.ExecContext(ctx, query, id, holder)
	return errors.Wrap(err, "releasing dispatch lease")
}

// ListStalled returns sending campaigns whose lease expired, or that never got
// a lease and have been idle since idleBefore.
func (r *CampaignRepository) ListStalled(ctx context.Context, now, idleBefore time.Time) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM email_campaigns
		WHERE status=$1 AND stalled_at IS NULL AND (
			(dispatch_holder IS NOT NULL AND dispatch_lease_expires_at < $2)
			OR (dispatch_holder IS NULL AND COALESCE(updated_at, created_at) < $3)
		)
		ORDER BY created_at`
	campaigns := []*model.Campaign{}
	err := r.DB.SelectContext(ctx, &campaigns, query, model.StatusSending, now, idleBefore)
	return campaigns, errors.Wrap(err, "listing stalled campaigns")
}

func (r *CampaignRepository) MarkStalled(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE email_campaigns
		SET stalled_at=$1, dispatch_holder=NULL, dispatch_lease_expires_at=NULL
		WHERE id=$2 AND status=$3
	`
	_, err := r.DB.ExecContext(ctx, query, at, id, model.StatusSending)
	return errors.Wrap(err, "marking campaign stalled")
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewCampaignNotFound(id)
	}
	return nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
