package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/unclebandit/edutour-mailer/internal/model"
)

type ProfileRepositoryInterface interface {
	Get(ctx context.Context) (*model.OrganizationProfile, error)
	Upsert(ctx context.Context, p *model.OrganizationProfile) error
}

type ProfileRepository struct {
	DB *sqlx.DB
}

// Get returns the profile row, or an empty profile when none was saved yet.
func (r *ProfileRepository) Get(ctx context.Context) (*model.OrganizationProfile, error) {
	var p model.OrganizationProfile
	err := r.DB.GetContext(ctx, &p, `
		SELECT id, name, slogan, mission, logo_url, address, city, country,
			accreditation_details, social_links, updated_at
		FROM organization_profile WHERE id=1`)
	if err == sql.ErrNoRows {
		return &model.OrganizationProfile{ID: 1}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading organization profile")
	}
	return &p, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, p *model.OrganizationProfile) error {
	p.ID = 1
	p.UpdatedAt = time.Now()
	query := `
		INSERT INTO organization_profile (id, name, slogan, mission, logo_url, address, city, country,
			accreditation_details, social_links, updated_at)
		VALUES (:id, :name, :slogan, :mission, :logo_url, :address, :city, :country,
			:accreditation_details, :social_links, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name, slogan=EXCLUDED.slogan, mission=EXCLUDED.mission,
			logo_url=EXCLUDED.logo_url, address=EXCLUDED.address, city=EXCLUDED.city,
			country=EXCLUDED.country, accreditation_details=EXCLUDED.accreditation_details,
			social_links=EXCLUDED.social_links, updated_at=EXCLUDED.updated_at
	`
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return errors.Wrap(err, "saving organization profile")
}

var _ ProfileRepositoryInterface = (*ProfileRepository)(nil)
