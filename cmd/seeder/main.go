// cmd/seeder/main.go
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/edutour-mailer/internal/config"
	"github.com/unclebandit/edutour-mailer/internal/db"
	"github.com/unclebandit/edutour-mailer/internal/repository"
	"github.com/unclebandit/edutour-mailer/internal/service"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger(conf.Log)
	defer func() { _ = logger.Sync() }()

	root := &cobra.Command{
		Use:   "seeder",
		Short: "load demo partners, templates and the organization profile",
	}

	var s *seeder
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(cmd.Context(), conf, logger)
		if err != nil {
			return err
		}
		s = &seeder{
			partners:  &service.PartnerService{PartnerRepo: &repository.PartnerRepository{DB: database}},
			templates: &service.TemplateService{TemplateRepo: &repository.TemplateRepository{DB: database}},
			profile:   &service.ProfileService{ProfileRepo: &repository.ProfileRepository{DB: database}},
			logger:    logger,
		}
		return nil
	}

	step := func(use, short string, fn func(*seeder, context.Context) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return fn(s, cmd.Context())
			},
		}
	}
	root.AddCommand(
		step("partners", "insert demo partners", (*seeder).seedPartners),
		step("templates", "insert the starter templates", (*seeder).seedTemplates),
		step("profile", "write the organization profile", (*seeder).seedProfile),
		step("all", "run every seed step", (*seeder).seedAll),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("seeding failed", zap.Error(err))
		os.Exit(1)
	}
}
