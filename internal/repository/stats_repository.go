package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/unclebandit/edutour-mailer/internal/model"
)

type StatsRepositoryInterface interface {
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
}

type StatsRepository struct {
	DB *sqlx.DB
}

func (r *StatsRepository) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	var s model.DashboardStats
	err := r.DB.GetContext(ctx, &s, `
		SELECT
			(SELECT COUNT(*) FROM partners) AS partners,
			(SELECT COUNT(*) FROM email_campaigns) AS campaigns,
			(SELECT COUNT(*) FROM email_templates) AS templates,
			(SELECT COALESCE(SUM(successful_sends), 0) FROM email_campaigns) AS total_sent`)
	if err != nil {
		return nil, errors.Wrap(err, "loading dashboard stats")
	}
	return &s, nil
}

var _ StatsRepositoryInterface = (*StatsRepository)(nil)
