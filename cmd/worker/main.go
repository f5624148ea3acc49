// cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/unclebandit/edutour-mailer/internal/app"
	"github.com/unclebandit/edutour-mailer/internal/config"
	"github.com/unclebandit/edutour-mailer/internal/db"
	"github.com/unclebandit/edutour-mailer/internal/queue"
)

// The worker consumes queued dispatch jobs from RabbitMQ and runs the
// stalled-campaign reconciler.
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
		logger.Fatal("worker exited", zap.Error(err))
	}
}

func run(ctx context.Context, conf *config.Config, logger *zap.Logger) error {
	if conf.AMQP.URL == "" {
		return errors.New("amqp.url is required for the worker")
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

	q, err := queue.DialAMQP(conf.AMQP.URL, logger.Named("amqp"))
	if err != nil {
		return err
	}
	defer q.Close()

	if err := queue.StartDispatchSubscriber(q, a.Worker().Handle, logger); err != nil {
		return err
	}
	go a.Reconciler.Run(ctx)

	logger.Info("worker running, waiting for jobs")
	<-ctx.Done()
	logger.Info("worker stopping")
	return nil
}
