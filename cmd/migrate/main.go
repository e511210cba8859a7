package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/aeworks/ops-api/internal/config"
	"github.com/aeworks/ops-api/internal/database"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// migrationsDir is where "create" writes new files; they are embedded at build time.
const migrationsDir = "./internal/database/migrations"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return fmt.Errorf("usage: migrate [up|down|status|version|create <name>]")
	}
	command := args[0]

	if command == "create" {
		if len(args) < 2 {
			return fmt.Errorf("create requires a migration name")
		}
		if err := goose.Create(nil, migrationsDir, args[1], "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
		fmt.Printf("Migration created: %s\n", args[1])
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := open(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := database.MigrateSQL(context.Background(), db, cfg.Database.Driver, command); err != nil {
		return err
	}
	if command == "up" || command == "down" {
		fmt.Printf("Migrations %s applied successfully\n", command)
	}
	return nil
}

func open(cfg *config.DatabaseConfig) (*sql.DB, error) {
	driver, dsn := "sqlite", cfg.Path
	if cfg.Driver == "postgres" {
		driver, dsn = "postgres", cfg.ConnectionString()
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
