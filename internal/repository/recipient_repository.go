package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/unclebandit/edutour-mailer/internal/model"
)

type RecipientRepositoryInterface interface {
	// BulkInsert writes every row in one transaction, recipientBatch rows per statement.
	BulkInsert(ctx context.Context, rows []model.CampaignRecipient) error
	Insert(ctx context.Context, row model.CampaignRecipient) error
	ListByCampaign(ctx context.Context, campaignID string) ([]model.CampaignRecipient, error)
	StatsByCampaign(ctx context.Context, campaignID string) (map[string]int, error)
}

// recipientBatch keeps one insert under the Postgres limit of 65535 bind parameters.
const recipientBatch = 1000

type RecipientRepository struct {
	DB *sqlx.DB
}

const insertRecipient = `
	INSERT INTO campaign_recipients
	(id, campaign_id, partner_id, email, status, sent_at, error_message, personalized_content, created_at)
	VALUES (:id, :campaign_id, :partner_id, :email, :status, :sent_at, :error_message, :personalized_content, :created_at)
`

func (r *RecipientRepository) BulkInsert(ctx context.Context, rows []model.CampaignRecipient) error {
	if len(rows) == 0 {
		return nil
	}
	stampCreated(rows)

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting recipient insert")
	}
	defer tx.Rollback() //nolint:errcheck

	for start := 0; start < len(rows); start += recipientBatch {
		end := min(start+recipientBatch, len(rows))
		if _, err := tx.NamedExecContext(ctx, insertRecipient, rows[start:end]); err != nil {
			return errors.Wrapf(err, "inserting campaign recipients %d-%d", start, end)
		}
	}
	return errors.Wrap(tx.Commit(), "committing campaign recipients")
}

func (r *RecipientRepository) Insert(ctx context.Context, row model.CampaignRecipient) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	_, err := r.DB.NamedExecContext(ctx, insertRecipient, row)
	return errors.Wrap(err, "inserting campaign recipient")
}

func (r *RecipientRepository) ListByCampaign(ctx context.Context, campaignID string) ([]model.CampaignRecipient, error) {
	query := `
		SELECT r.id, r.campaign_id, r.partner_id, r.email, r.status, r.sent_at, r.error_message,
			r.personalized_content, r.created_at, p.name AS partner_name
		FROM campaign_recipients r
		LEFT JOIN partners p ON p.id = r.partner_id
		WHERE r.campaign_id=$1
		ORDER BY r.created_at, r.email
	`
	rows := []model.CampaignRecipient{}
	err := r.DB.SelectContext(ctx, &rows, query, campaignID)
	return rows, errors.Wrap(err, "listing campaign recipients")
}

func (r *RecipientRepository) StatsByCampaign(ctx context.Context, campaignID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM campaign_recipients WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, errors.Wrap(err, "counting campaign recipients")
	}
	defer rows.Close()

	stats := map[string]int{"total": 0, "pending": 0, "sent": 0, "delivered": 0, "failed": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
		stats["total"] += count
	}
	return stats, rows.Err()
}

func stampCreated(rows []model.CampaignRecipient) {
	now := time.Now()
	for i := range rows {
		if rows[i].CreatedAt.IsZero() {
			rows[i].CreatedAt = now
		}
	}
}

var _ RecipientRepositoryInterface = (*RecipientRepository)(nil)
