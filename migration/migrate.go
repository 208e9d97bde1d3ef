package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"geohash-service/config"
	"geohash-service/database"
)

// RetryDelay is the pause between connection attempts.
var RetryDelay = 3 * time.Second

// Run waits for the database to accept connections and applies every
// pending migration.
func Run(cfg *config.Config) error {
	dsn := database.DSN(cfg.DB)

	if err := waitForDB(dsn, cfg.Migrations.Retries); err != nil {
		return err
	}

	m, err := migrate.New(cfg.Migrations.Path, dsn)
	if err != nil {
		return fmt.Errorf("could not start migrations: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations applied successfully!")
	return nil
}

func waitForDB(dsn string, retries int) error {
	if retries < 1 {
		retries = 1
	}

	var err error
	for i := 0; i < retries; i++ {
		err = ping(dsn)
		if err == nil {
			log.Println("Connected to the database successfully.")
			return nil
		}
		log.Printf("Waiting for the database to be ready... (attempt %d)", i+1)
		if i < retries-1 {
			time.Sleep(RetryDelay)
		}
	}
	return fmt.Errorf("could not connect to the database: %w", err)
}

func ping(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Ping()
}
