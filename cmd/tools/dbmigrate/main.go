// cmd/tools/dbmigrate/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vaxxnz/vaxx-web/internal/db"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		dbPath         = flag.String("db", "", "Path to SQLite database")
		migrationsPath = flag.String("migrations", "", "Path to migrations directory (defaults to the migrations built into the server)")
		command        = flag.String("command", "", "Command to run (up, down, version)")
	)
	flag.Parse()

	if *dbPath == "" || *command == "" {
		fmt.Fprintln(os.Stderr, "-db and -command are required:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	absDB, err := filepath.Abs(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database path")
	}
	if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create database directory")
	}
	databaseURL := fmt.Sprintf("sqlite3://%s?_fk=1", absDB)

	var m *migrate.Migrate
	if *migrationsPath != "" {
		absMigrations, err := filepath.Abs(*migrationsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid migrations path")
		}
		if _, err := os.Stat(absMigrations); os.IsNotExist(err) {
			log.Fatal().Str("path", absMigrations).Msg("Migrations directory does not exist")
		}
		m, err = migrate.New("file://"+absMigrations, databaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create migrate instance")
		}
	} else {
		src, err := db.MigrationSource()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open embedded migrations")
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, databaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create migrate instance")
		}
	}
	defer m.Close()

	switch *command {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		log.Info().Msg("Successfully ran migrations up")

	case "down":
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			log.Fatal().Err(err).Msg("Failed to rollback migrations")
		}
		log.Info().Msg("Successfully ran migrations down")

	case "version":
		version, dirty, err := m.Version()
		if err != nil && err != migrate.ErrNilVersion {
			log.Fatal().Err(err).Msg("Failed to get version")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current version")

	default:
		log.Fatal().Str("command", *command).Msg("Unknown command")
	}
}
