// cmd/migrate/main.go
package main

import (
	"os"

	"github.com/unclebandit/edutour-mailer/internal/config"
	"github.com/unclebandit/edutour-mailer/internal/db"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := db.MigrateCommand(conf.DSN).Execute(); err != nil {
		os.Exit(1)
	}
}
