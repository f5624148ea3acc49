// internal/service/partner_service.go
package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/unclebandit/edutour-mailer/internal/mailer"
	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/repository"
)

type PartnerService struct {
	PartnerRepo repository.PartnerRepositoryInterface
	// NewMailer builds the transport for registration notifications.
	NewMailer    func() (mailer.Mailer, error)
	From         mail.Address
	AdminAddress string
	Logger       *zap.Logger
}

type PartnerInput struct {
	Name          string            `json:"name" validate:"required,max=200"`
	Type          model.PartnerType `json:"type" validate:"required,partner_type"`
	Email         string            `json:"email" validate:"required,email"`
	ContactPerson string            `json:"contact_person" validate:"max=200"`
	Phone         string            `json:"phone" validate:"max=50"`
	Country       string            `json:"country" validate:"max=100"`
	City          string            `json:"city" validate:"max=100"`
	Website       string            `json:"website" validate:"omitempty,url"`
	Description   string            `json:"description" validate:"max=2000"`
	IsActive      *bool             `json:"is_active"`
}

func (in PartnerInput) applyTo(p *model.Partner) {
	p.Name = strings.TrimSpace(in.Name)
	p.Type = in.Type
	p.Email = strings.TrimSpace(in.Email)
	p.ContactPerson = strings.TrimSpace(in.ContactPerson)
	p.Phone = in.Phone
	p.Country = in.Country
	p.City = in.City
	p.Website = in.Website
	p.Description = in.Description
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

func (s *PartnerService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *PartnerService) Create(ctx context.Context, in PartnerInput) (*model.Partner, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	p := &model.Partner{IsActive: true}
	in.applyTo(p)
	if err := s.PartnerRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Register is the public sign-up. The partner is stored active, then the
// admin and the partner are notified; mail failures are logged only.
func (s *PartnerService) Register(ctx context.Context, in PartnerInput) (*model.Partner, error) {
	in.IsActive = nil
	p, err := s.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.notifyRegistration(ctx, p)
	return p, nil
}

func (s *PartnerService) notifyRegistration(ctx context.Context, p *model.Partner) {
	log := s.logger().With(zap.String("partner_id", p.ID))
	if s.NewMailer == nil {
		return
	}
	m, err := s.NewMailer()
	if err != nil {
		log.Warn("registration emails skipped", zap.Error(err))
		return
	}

	website := p.Website
	if website == "" {
		website = "N/A"
	}
	description := p.Description
	if description == "" {
		description = "Aucune description fournie."
	}
	greeting := p.ContactPerson
	if greeting == "" {
		greeting = FallbackGreeting
	}
	data := map[string]any{
		"Partner":     p,
		"TypeLabel":   p.Type.Label(),
		"Website":     website,
		"Description": description,
		"Greeting":    greeting,
		"AdminEmail":  s.AdminAddress,
	}

	send := func(tmpl, title, to string) {
		data["Title"] = title
		html, err := mailer.Render(tmpl, data)
		if err != nil {
			log.Error("rendering registration email", zap.String("template", tmpl), zap.Error(err))
			return
		}
		if err := m.Send(ctx, mailer.Message{From: s.From, To: to, Subject: title, HTML: html}); err != nil {
			log.Warn("sending registration email", zap.String("to", to), zap.Error(err))
		}
	}
	if s.AdminAddress != "" {
		send("registration_admin", "Nouvelle inscription : "+p.Name, s.AdminAddress)
	}
	send("registration_confirmation", "Confirmation de votre inscription", p.Email)
}

func (s *PartnerService) Get(ctx context.Context, id string) (*model.Partner, error) {
	return s.PartnerRepo.GetByID(ctx, id)
}

// List fetches partners with pagination
func (s *PartnerService) List(ctx context.Context, f repository.PartnerFilter, page, pageSize int) ([]model.Partner, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}
	f.Offset = (page - 1) * pageSize
	f.Limit = pageSize

	partners, total, err := s.PartnerRepo.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return partners, map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": (total + pageSize - 1) / pageSize,
	}, nil
}

func (s *PartnerService) Update(ctx context.Context, id string, in PartnerInput) (*model.Partner, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	p, err := s.PartnerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(p)
	if err := s.PartnerRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PartnerService) SetActive(ctx context.Context, id string, active bool) error {
	return s.PartnerRepo.SetActive(ctx, id, active)
}

func (s *PartnerService) Delete(ctx context.Context, id string) error {
	return s.PartnerRepo.Delete(ctx, id)
}
