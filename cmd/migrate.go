package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/frahmantamala/personal-finance/db"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

const migrationsTable = "schema_migrations"

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "", "sql migrations directory on disk (defaults to the embedded migrations)")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	conn, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}
	defer conn.Close()

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := migrate(ctx, conn.DB, cfg.Database.Driver, migrateDir, command); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}

	return nil
}

// migrate runs a goose command. An empty dir selects the migrations compiled into the binary.
func migrate(ctx context.Context, conn *sql.DB, driver, dir, command string) error {
	dialect := "postgres"
	if driver == "sqlite" {
		dialect = "sqlite3"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	goose.SetTableName(migrationsTable)

	if dir == "" {
		goose.SetBaseFS(db.Migrations)
		defer goose.SetBaseFS(nil)
		dir = db.MigrationsDir
	}

	return goose.RunContext(ctx, command, conn, dir)
}
