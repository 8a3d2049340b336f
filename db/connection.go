package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"incidentflow/config"
	"incidentflow/core/log"
	"incidentflow/db/migrations"

	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"
	// pure-Go sqlite driver, registered as "sqlite"
	_ "modernc.org/sqlite"
)

// NewConnection opens the run ledger database and applies pending migrations
func NewConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Connect(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer; one connection also keeps :memory: databases alive
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := ApplyMigrations(db.DB, cfg.Driver); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("❌ Failed to close database after migration failure", "error", closeErr)
		}
		return nil, err
	}

	log.Info("📋 Completed successfully - database connected", "driver", cfg.Driver)
	return db, nil
}

// ApplyMigrations runs the embedded migrations for driver ("sqlite" or "postgres")
func ApplyMigrations(db *sql.DB, driver string) error {
	if db == nil {
		return errors.New("database connection is nil, cannot apply migrations")
	}

	sourceDriver, err := iofs.New(migrations.FS, driver)
	if err != nil {
		return fmt.Errorf("failed to create embed source driver: %w", err)
	}

	var (
		dbDriver database.Driver
		name     string
	)
	switch driver {
	case "sqlite":
		name = "sqlite3"
		dbDriver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case "postgres":
		name = "postgres"
		dbDriver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s migration driver: %w", name, err)
	}

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, name, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("📋 No database migrations to apply")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info("📋 Database migrations applied")
	return nil
}
