package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
	"github.com/unclebandit/edutour-mailer/internal/model"
)

type PartnerFilter struct {
	Type   model.PartnerType
	Active *bool
	Search string
	Offset int
	Limit  int
}

// PartnerRepositoryInterface defines methods used by services
type PartnerRepositoryInterface interface {
	Create(ctx context.Context, p *model.Partner) error
	GetByID(ctx context.Context, id string) (*model.Partner, error)
	List(ctx context.Context, f PartnerFilter) ([]model.Partner, int, error)
	Update(ctx context.Context, p *model.Partner) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error

	// ListActiveByTypes returns dispatch-eligible partners in a stable order.
	ListActiveByTypes(ctx context.Context, types []model.PartnerType) ([]model.Partner, error)
	CountActiveByTypes(ctx context.Context, types []model.PartnerType) (int, error)
}

// PartnerRepository is the concrete implementation
type PartnerRepository struct {
	DB *sqlx.DB
}

const partnerColumns = `id, name, type, email, contact_person, phone, country, city, website,
	description, is_active, created_at, updated_at`

func (r *PartnerRepository) Create(ctx context.Context, p *model.Partner) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	query := `
		INSERT INTO partners (id, name, type, email, contact_person, phone, country, city, website,
			description, is_active, created_at, updated_at)
		VALUES (:id, :name, :type, :email, :contact_person, :phone, :country, :city, :website,
			:description, :is_active, :created_at, :updated_at)
	`
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return errors.Wrap(err, "inserting partner")
}

// GetByID fetches a partner by ID
func (r *PartnerRepository) GetByID(ctx context.Context, id string) (*model.Partner, error) {
	var p model.Partner
	err := r.DB.GetContext(ctx, &p, `SELECT `+partnerColumns+` FROM partners WHERE id=$1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrPartnerNotFound
		}
		return nil, errors.Wrap(err, "loading partner")
	}
	return &p, nil
}

func (r *PartnerRepository) List(ctx context.Context, f PartnerFilter) ([]model.Partner, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if f.Type != "" {
		where += fmt.Sprintf(" AND type=$%d", argPos)
		args = append(args, f.Type)
		argPos++
	}
	if f.Active != nil {
		where += fmt.Sprintf(" AND is_active=$%d", argPos)
		args = append(args, *f.Active)
		argPos++
	}
	if f.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR country ILIKE $%d)", argPos, argPos, argPos)
		args = append(args, "%"+f.Search+"%")
		argPos++
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM partners`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting partners")
	}

	query := `SELECT ` + partnerColumns + ` FROM partners` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, f.Limit, f.Offset)

	partners := []model.Partner{}
	if err := r.DB.SelectContext(ctx, &partners, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "listing partners")
	}
	return partners, total, nil
}

func (r *PartnerRepository) Update(ctx context.Context, p *model.Partner) error {
	p.UpdatedAt = time.Now()
	query := `
		UPDATE partners
		SET name=:name, type=:type, email=:email, contact_person=:contact_person, phone=:phone,
			country=:country, city=:city, website=:website, description=:description,
			is_active=:is_active, updated_at=:updated_at
		WHERE id=:id
	`
	res, err := r.DB.NamedExecContext(ctx, query, p)
	if err != nil {
		return errors.Wrap(err, "updating partner")
	}
	return partnerAffected(res)
}

func (r *PartnerRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE partners SET is_active=$1, updated_at=NOW() WHERE id=$2`, active, id)
	if err != nil {
		return errors.Wrap(err, "updating partner status")
	}
	return partnerAffected(res)
}

func (r *PartnerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM partners WHERE id=$1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting partner")
	}
	return partnerAffected(res)
}

func (r *PartnerRepository) ListActiveByTypes(ctx context.Context, types []model.PartnerType) ([]model.Partner, error) {
	query := `
		SELECT id, name, email, contact_person, country, city
		FROM partners
		WHERE type = ANY($1) AND is_active = TRUE
		ORDER BY created_at, id
	`
	partners := []model.Partner{}
	if err := r.DB.SelectContext(ctx, &partners, query, pq.Array(typeStrings(types))); err != nil {
		return nil, errors.Wrap(err, "listing active partners")
	}
	return partners, nil
}

func (r *PartnerRepository) CountActiveByTypes(ctx context.Context, types []model.PartnerType) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM partners WHERE type = ANY($1) AND is_active = TRUE`,
		pq.Array(typeStrings(types)))
	return n, errors.Wrap(err, "counting active partners")
}

func typeStrings(types []model.PartnerType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func partnerAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.ErrPartnerNotFound
	}
	return nil
}

var _ PartnerRepositoryInterface = (*PartnerRepository)(nil)
