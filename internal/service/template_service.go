// internal/service/template_service.go
package service

import (
	"context"

	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/repository"
)

const duplicateSuffix = " (Copie)"

type TemplateService struct {
	TemplateRepo repository.TemplateRepositoryInterface
}

type TemplateInput struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Subject      string  `json:"subject" validate:"required,max=300"`
	HTMLContent  string  `json:"html_content" validate:"required"`
	TemplateType string  `json:"template_type" validate:"omitempty,oneof=newsletter university_invitation school_invitation follow_up announcement"`
	CreatedBy    *string `json:"-"`
}

func (in TemplateInput) applyTo(t *model.EmailTemplate) {
	t.Name = in.Name
	t.Subject = in.Subject
	t.HTMLContent = in.HTMLContent
	t.TemplateType = in.TemplateType
	if t.TemplateType == "" {
		t.TemplateType = "newsletter"
	}
	t.Variables = ExtractVariables(in.HTMLContent)
}

func (s *TemplateService) Create(ctx context.Context, in TemplateInput) (*model.EmailTemplate, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	t := &model.EmailTemplate{CreatedBy: in.CreatedBy}
	in.applyTo(t)
	if err := s.TemplateRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the content and re-derives the placeholder list.
func (s *TemplateService) Update(ctx context.Context, id string, in TemplateInput) (*model.EmailTemplate, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	t, err := s.TemplateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(t)
	if err := s.TemplateRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) Get(ctx context.Context, id string) (*model.EmailTemplate, error) {
	return s.TemplateRepo.GetByID(ctx, id)
}

func (s *TemplateService) List(ctx context.Context) ([]model.EmailTemplate, error) {
	return s.TemplateRepo.List(ctx)
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	return s.TemplateRepo.Delete(ctx, id)
}

// Duplicate stores a copy named "<name> (Copie)".
func (s *TemplateService) Duplicate(ctx context.Context, id string, createdBy *string) (*model.EmailTemplate, error) {
	src, err := s.TemplateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := &model.EmailTemplate{
		Name:         src.Name + duplicateSuffix,
		Subject:      src.Subject,
		HTMLContent:  src.HTMLContent,
		Variables:    ExtractVariables(src.HTMLContent),
		TemplateType: src.TemplateType,
		CreatedBy:    createdBy,
	}
	if err := s.TemplateRepo.Create(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// Preview renders the template against SamplePartner.
func (s *TemplateService) Preview(ctx context.Context, id string) (*Preview, error) {
	t, err := s.TemplateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Preview{Subject: t.Subject, HTML: Personalize(t.HTMLContent, SamplePartner), PartnerName: SamplePartner.Name}, nil
}
