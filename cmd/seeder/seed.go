// cmd/seeder/seed.go
package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/service"
)

type seeder struct {
	partners  *service.PartnerService
	templates *service.TemplateService
	profile   *service.ProfileService
	logger    *zap.Logger
}

var demoPartners = []service.PartnerInput{
	{Name: "University of Toronto", Type: model.PartnerForeignUniversity, Email: "admissions@utoronto.example", ContactPerson: "Dr. Sarah Johnson", Country: "Canada", City: "Toronto", Website: "https://www.utoronto.ca"},
	{Name: "Université de Lyon", Type: model.PartnerForeignUniversity, Email: "international@univ-lyon.example", ContactPerson: "Pr. Marc Lefèvre", Country: "France", City: "Lyon"},
	{Name: "Lycée Moderne de Cocody", Type: model.PartnerLocalSchool, Email: "direction@lmc.example", ContactPerson: "M. Kouassi", Country: "Côte d'Ivoire", City: "Abidjan"},
	{Name: "Collège Saint-Michel", Type: model.PartnerLocalSchool, Email: "contact@stmichel.example", Country: "Côte d'Ivoire", City: "Bouaké"},
	{Name: "Study Abroad Agency", Type: model.PartnerEducationAgent, Email: "hello@studyabroad.example", ContactPerson: "Awa Traoré", Country: "Sénégal", City: "Dakar"},
}

var starterTemplates = []service.TemplateInput{
	{
		Name:         "Invitation université",
		Subject:      "Invitation à rejoindre notre programme de partenariat",
		TemplateType: "university_invitation",
		HTMLContent: `<p>Bonjour {{contact_person}},</p>
<p>Nous serions ravis de compter {{institution_name}} ({{city}}, {{country}}) parmi nos universités partenaires.</p>
<p>Cordialement,<br>Go2Skul Education Group</p>`,
	},
	{
		Name:         "Invitation école",
		Subject:      "Orientation des élèves vers les études à l'étranger",
		TemplateType: "school_invitation",
		HTMLContent: `<p>Bonjour {{contact_person}},</p>
<p>Nous accompagnons les élèves de {{institution_name}} dans leurs projets d'études à l'étranger.</p>`,
	},
	{
		Name:         "Newsletter mensuelle",
		Subject:      "Les nouvelles du mois",
		TemplateType: "newsletter",
		HTMLContent:  `<h1>Newsletter</h1><p>Cher {{contact_person}}, voici les nouvelles de ce mois.</p>`,
	},
}

var defaultProfile = service.ProfileInput{
	Name:    "Go2Skul Education Group",
	Slogan:  "Votre passerelle vers les études à l'étranger",
	Mission: "Relier les élèves aux meilleures universités partenaires.",
	City:    "Abidjan",
	Country: "Côte d'Ivoire",
}

func (s *seeder) seedPartners(ctx context.Context) error {
	for _, in := range demoPartners {
		p, err := s.partners.Create(ctx, in)
		if err != nil {
			return err
		}
		s.logger.Info("seeded partner", zap.String("id", p.ID), zap.String("name", p.Name))
	}
	return nil
}

func (s *seeder) seedTemplates(ctx context.Context) error {
	for _, in := range starterTemplates {
		t, err := s.templates.Create(ctx, in)
		if err != nil {
			return err
		}
		s.logger.Info("seeded template", zap.String("id", t.ID), zap.String("name", t.Name))
	}
	return nil
}

func (s *seeder) seedProfile(ctx context.Context) error {
	if _, err := s.profile.Update(ctx, defaultProfile); err != nil {
		return err
	}
	s.logger.Info("seeded organization profile")
	return nil
}

func (s *seeder) seedAll(ctx context.Context) error {
	for _, step := range []func(context.Context) error{s.seedProfile, s.seedTemplates, s.seedPartners} {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}
