// Package app wires configuration into repositories, services and the
// dispatch pipeline. The server and worker binaries share it.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unclebandit/edutour-mailer/internal/config"
	"github.com/unclebandit/edutour-mailer/internal/lock"
	"github.com/unclebandit/edutour-mailer/internal/mailer"
	"github.com/unclebandit/edutour-mailer/internal/metrics"
	"github.com/unclebandit/edutour-mailer/internal/repository"
	"github.com/unclebandit/edutour-mailer/internal/service"
)

type App struct {
	Conf   *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	CampaignRepo  *repository.CampaignRepository
	PartnerRepo   *repository.PartnerRepository
	TemplateRepo  *repository.TemplateRepository
	RecipientRepo *repository.RecipientRepository
	ProfileRepo   *repository.ProfileRepository
	StatsRepo     *repository.StatsRepository

	Locker     lock.Locker
	Metrics    *metrics.Dispatch
	Dispatcher *service.Dispatcher
	Reconciler *service.Reconciler
}

// New builds the shared graph. Redis is optional: without redis.addr the
// per-campaign lock is process-local and the row lease alone guards
// against other instances.
func New(ctx context.Context, conf *config.Config, logger *zap.Logger, db *sqlx.DB, reg prometheus.Registerer) (*App, error) {
	a := &App{
		Conf:          conf,
		Logger:        logger,
		DB:            db,
		CampaignRepo:  &repository.CampaignRepository{DB: db},
		PartnerRepo:   &repository.PartnerRepository{DB: db},
		TemplateRepo:  &repository.TemplateRepository{DB: db},
		RecipientRepo: &repository.RecipientRepository{DB: db},
		ProfileRepo:   &repository.ProfileRepository{DB: db},
		StatsRepo:     &repository.StatsRepository{DB: db},
		Metrics:       metrics.NewDispatch(reg),
	}

	if conf.Redis.Addr != "" {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			_ = a.Redis.Close()
			return nil, errors.Wrap(err, "connecting to redis")
		}
		a.Locker = lock.NewRedisLocker(a.Redis)
		logger.Info("using redis dispatch lock", zap.String("addr", conf.Redis.Addr))
	} else {
		a.Locker = lock.NewLocalLocker()
		logger.Info("redis not configured, using in-process dispatch lock")
	}

	instance := conf.Dispatch.InstanceID
	if instance == "" {
		host, _ := os.Hostname()
		instance = fmt.Sprintf("%s-%d", host, os.Getpid())
	}

	a.Dispatcher = &service.Dispatcher{
		CampaignRepo:  a.CampaignRepo,
		PartnerRepo:   a.PartnerRepo,
		RecipientRepo: a.RecipientRepo,
		Locker:        a.Locker,
		NewMailer:     a.NewMailer,
		From:          mailer.Sender(conf),
		RecordMode:    conf.Dispatch.RecordMode,
		LeaseTTL:      conf.Dispatch.LeaseTTL,
		InstanceID:    instance,
		Metrics:       a.Metrics,
		Logger:        logger.Named("dispatch"),
	}
	a.Reconciler = &service.Reconciler{
		CampaignRepo: a.CampaignRepo,
		Locker:       a.Locker,
		Interval:     conf.Dispatch.ReconcileInterval,
		LeaseTTL:     conf.Dispatch.LeaseTTL,
		Logger:       logger.Named("reconciler"),
	}
	return a, nil
}

// NewMailer builds a fresh transport from the current configuration,
// counted by the dispatch metrics.
func (a *App) NewMailer() (mailer.Mailer, error) {
	m, err := mailer.New(a.Conf, a.Logger.Named("mailer"))
	if err != nil {
		return nil, err
	}
	return a.Metrics.WrapMailer(m), nil
}

// Worker returns the job handler used by queue consumers.
func (a *App) Worker() *service.Worker {
	return &service.Worker{
		Dispatcher:   a.Dispatcher,
		CampaignRepo: a.CampaignRepo,
		Logger:       a.Logger.Named("worker"),
	}
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("closing redis", zap.Error(err))
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Warn("closing database", zap.Error(err))
	}
}
