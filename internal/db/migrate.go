// internal/db/migrate.go
package db

import (
	"embed"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func newMigrate(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", src, dsn)
}

// MigrateUp applies every pending migration.
func MigrateUp(dsn string) error {
	m, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// MigrateCommand returns the cobra command tree used by cmd/migrate.
func MigrateCommand(dsn func() string) *cobra.Command {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "manage the database schema",
	}

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return MigrateUp(dsn())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "roll back migrations (one step by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid steps %q", args[0])
				}
				steps = n
			}
			m, err := newMigrate(dsn())
			if err != nil {
				return err
			}
			defer m.Close()
			return m.Steps(-steps)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrate(dsn())
			if err != nil {
				return err
			}
			defer m.Close()
			v, dirty, err := m.Version()
			if err != nil && err != migrate.ErrNilVersion {
				return err
			}
			fmt.Printf("version=%d dirty=%v\n", v, dirty)
			return nil
		},
	})

	return root
}
