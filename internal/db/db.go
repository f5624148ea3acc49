// internal/db/db.go
package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/unclebandit/edutour-mailer/internal/config"
)

// Open connects to Postgres and pings it before returning.
func Open(ctx context.Context, conf *config.Config, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", conf.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(conf.Database.MaxOpenConns)
	db.SetMaxIdleConns(conf.Database.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}

	logger.Info("connected to database",
		zap.String("host", conf.DB.Host),
		zap.String("name", conf.DB.Name),
	)
	return db, nil
}
