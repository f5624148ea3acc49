// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/unclebandit/edutour-mailer/internal/app"
	"github.com/unclebandit/edutour-mailer/internal/config"
	"github.com/unclebandit/edutour-mailer/internal/controller"
	"github.com/unclebandit/edutour-mailer/internal/db"
	"github.com/unclebandit/edutour-mailer/internal/handler"
	"github.com/unclebandit/edutour-mailer/internal/mailer"
	"github.com/unclebandit/edutour-mailer/internal/queue"
	"github.com/unclebandit/edutour-mailer/internal/service"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger(conf.Log)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, conf *config.Config, logger *zap.Logger) error {
	if conf.Auth.JWTSecret == "" && !conf.Auth.Disabled {
		return errors.New("auth.jwt_secret is required unless auth.disabled is set")
	}

	database, err := db.Open(ctx, conf, logger)
	if err != nil {
		return err
	}
	a, err := app.New(ctx, conf, logger, database, prometheus.DefaultRegisterer)
	if err != nil {
		_ = database.Close()
		return err
	}
	defer a.Close()

	// Async sends go to RabbitMQ when configured (cmd/worker consumes them),
	// otherwise to an in-process queue consumed right here.
	var q queue.Queue
	if conf.Dispatch.Async {
		if conf.AMQP.URL != "" {
			aq, err := queue.DialAMQP(conf.AMQP.URL, logger.Named("amqp"))
			if err != nil {
				return err
			}
			defer aq.Close()
			q = aq
		} else {
			mq := queue.NewInMemoryQueue(logger.Named("queue"))
			mq.SetMaxRetries(queue.TopicCampaignDispatch, 0)
			if err := queue.StartDispatchSubscriber(mq, a.Worker().Handle, logger); err != nil {
				return err
			}
			defer mq.Wait()
			q = mq
		}
	}

	campaignService := &service.CampaignService{
		CampaignRepo:  a.CampaignRepo,
		PartnerRepo:   a.PartnerRepo,
		TemplateRepo:  a.TemplateRepo,
		RecipientRepo: a.RecipientRepo,
		Dispatcher:    a.Dispatcher,
		Queue:         q,
		Async:         conf.Dispatch.Async,
		Logger:        logger.Named("campaigns"),
	}
	partnerService := &service.PartnerService{
		PartnerRepo:  a.PartnerRepo,
		NewMailer:    a.NewMailer,
		From:         mailer.Sender(conf),
		AdminAddress: conf.Mail.AdminAddress,
		Logger:       logger.Named("partners"),
	}

	router := controller.NewRouter(controller.Routes{
		Campaigns: &controller.CampaignController{CampaignService: campaignService},
		Templates: &controller.TemplateController{TemplateService: &service.TemplateService{TemplateRepo: a.TemplateRepo}},
		Partners:  &controller.PartnerController{PartnerService: partnerService},
		Profile:   &controller.ProfileController{ProfileService: &service.ProfileService{ProfileRepo: a.ProfileRepo}},
		Dashboard: &controller.DashboardController{DashboardService: &service.DashboardService{StatsRepo: a.StatsRepo}},
		Reports:   &handler.CampaignHandler{Service: campaignService},
		Dispatch:  &handler.DispatchHandler{Dispatcher: a.Dispatcher, Logger: logger.Named("http")},
		Auth:      conf.Auth,
		Logger:    logger.Named("http"),
	})

	go a.Reconciler.Run(ctx)

	srv := &http.Server{
		Addr:              conf.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", conf.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
