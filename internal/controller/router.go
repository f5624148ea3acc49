// internal/controller/router.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/unclebandit/edutour-mailer/internal/config"
	"github.com/unclebandit/edutour-mailer/internal/handler"
	"github.com/unclebandit/edutour-mailer/internal/middleware"
)

// Routes bundles everything the router mounts.
type Routes struct {
	Campaigns *CampaignController
	Templates *TemplateController
	Partners  *PartnerController
	Profile   *ProfileController
	Dashboard *DashboardController
	Reports   *handler.CampaignHandler
	Dispatch  *handler.DispatchHandler
	Auth      config.AuthConfig
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(rt.Logger))
	r.Use(chimw.Recoverer)

	gatherer := rt.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Public partner sign-up.
	r.Post("/register", rt.Partners.Register)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(rt.Auth, rt.Logger))

		r.Post("/functions/send-bulk-emails", rt.Dispatch.SendBulkEmails)

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", rt.Campaigns.ListCampaigns)
			r.Post("/", rt.Campaigns.CreateCampaign)
			r.Post("/send", rt.Campaigns.SendNewCampaign)
			r.Get("/recipient-count", rt.Campaigns.RecipientCount)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", rt.Reports.GetCampaignHandlerWithStats)
				r.Put("/", rt.Campaigns.UpdateCampaign)
				r.Delete("/", rt.Campaigns.DeleteCampaign)
				r.Post("/send", rt.Campaigns.SendCampaign)
				r.Post("/schedule", rt.Campaigns.ScheduleCampaign)
				r.Post("/cancel", rt.Campaigns.CancelCampaign)
				r.Post("/restore", rt.Campaigns.RestoreCampaign)
				r.Post("/reset", rt.Campaigns.ResetCampaign)
				r.Get("/preview", rt.Campaigns.PersonalizedPreview)
			})
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", rt.Templates.ListTemplates)
			r.Post("/", rt.Templates.CreateTemplate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", rt.Templates.GetTemplate)
				r.Put("/", rt.Templates.UpdateTemplate)
				r.Delete("/", rt.Templates.DeleteTemplate)
				r.Post("/duplicate", rt.Templates.DuplicateTemplate)
				r.Get("/preview", rt.Templates.PreviewTemplate)
			})
		})

		r.Route("/partners", func(r chi.Router) {
			r.Get("/", rt.Partners.ListPartners)
			r.Post("/", rt.Partners.CreatePartner)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", rt.Partners.GetPartner)
				r.Put("/", rt.Partners.UpdatePartner)
				r.Delete("/", rt.Partners.DeletePartner)
				r.Put("/active", rt.Partners.SetActive)
			})
		})

		r.Get("/organization-profile", rt.Profile.GetProfile)
		r.Put("/organization-profile", rt.Profile.UpdateProfile)

		r.Get("/dashboard/stats", rt.Dashboard.GetStats)
	})

	return r
}
