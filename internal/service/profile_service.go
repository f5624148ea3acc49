package service

import (
	"context"

	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/repository"
)

type ProfileService struct {
	ProfileRepo repository.ProfileRepositoryInterface
}

type ProfileInput struct {
	Name                 string            `json:"name" validate:"required,max=200"`
	Slogan               string            `json:"slogan" validate:"max=300"`
	Mission              string            `json:"mission"`
	LogoURL              string            `json:"logo_url" validate:"omitempty,url"`
	Address              string            `json:"address"`
	City                 string            `json:"city"`
	Country              string            `json:"country"`
	AccreditationDetails string            `json:"accreditation_details"`
	SocialLinks          model.SocialLinks `json:"social_links"`
}

func (s *ProfileService) Get(ctx context.Context) (*model.OrganizationProfile, error) {
	return s.ProfileRepo.Get(ctx)
}

func (s *ProfileService) Update(ctx context.Context, in ProfileInput) (*model.OrganizationProfile, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	p := &model.OrganizationProfile{
		ID:                   1,
		Name:                 in.Name,
		Slogan:               in.Slogan,
		Mission:              in.Mission,
		LogoURL:              in.LogoURL,
		Address:              in.Address,
		City:                 in.City,
		Country:              in.Country,
		AccreditationDetails: in.AccreditationDetails,
		SocialLinks:          in.SocialLinks,
	}
	if err := s.ProfileRepo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
