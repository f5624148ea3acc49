package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
	"github.com/unclebandit/edutour-mailer/internal/model"
)

type TemplateRepositoryInterface interface {
	Create(ctx context.Context, t *model.EmailTemplate) error
	GetByID(ctx context.Context, id string) (*model.EmailTemplate, error)
	List(ctx context.Context) ([]model.EmailTemplate, error)
	Update(ctx context.Context, t *model.EmailTemplate) error
	Delete(ctx context.Context, id string) error
}

type TemplateRepository struct {
	DB *sqlx.DB
}

const templateColumns = `id, name, subject, html_content, variables, template_type, created_by, created_at, updated_at`

func (r *TemplateRepository) Create(ctx context.Context, t *model.EmailTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	query := `
		INSERT INTO email_templates (id, name, subject, html_content, variables, template_type, created_by, created_at, updated_at)
		VALUES (:id, :name, :subject, :html_content, :variables, :template_type, :created_by, :created_at, :updated_at)
	`
	_, err := r.DB.NamedExecContext(ctx, query, t)
	return errors.Wrap(err, "inserting template")
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*model.EmailTemplate, error) {
	var t model.EmailTemplate
	err := r.DB.GetContext(ctx, &t, `SELECT `+templateColumns+` FROM email_templates WHERE id=$1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrTemplateNotFound
		}
		return nil, errors.Wrap(err, "loading template")
	}
	return &t, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]model.EmailTemplate, error) {
	templates := []model.EmailTemplate{}
	err := r.DB.SelectContext(ctx, &templates, `SELECT `+templateColumns+` FROM email_templates ORDER BY created_at DESC`)
	return templates, errors.Wrap(err, "listing templates")
}

func (r *TemplateRepository) Update(ctx context.Context, t *model.EmailTemplate) error {
	t.UpdatedAt = time.Now()
	query := `
		UPDATE email_templates
		SET name=:name, subject=:subject, html_content=:html_content, variables=:variables,
			template_type=:template_type, updated_at=:updated_at
		WHERE id=:id
	`
	res, err := r.DB.NamedExecContext(ctx, query, t)
	if err != nil {
		return errors.Wrap(err, "updating template")
	}
	return templateAffected(res)
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM email_templates WHERE id=$1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting template")
	}
	return templateAffected(res)
}

func templateAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.ErrTemplateNotFound
	}
	return nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
