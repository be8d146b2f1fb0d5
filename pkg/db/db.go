package db

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo"
	silostore "github.com/doodlesbykumbi/conjur-authn/pkg/slosilo/store"
)

// Config holds database connection configuration.
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL).
	URL string
	// Cipher, when set, registers the silo plugin so tagged model fields
	// are encrypted at rest.
	Cipher slosilo.SymmetricCipher
}

// Connect establishes a database connection.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	logMode := logger.Silent
	if os.Getenv("CONJUR_LOG_LEVEL") == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logMode),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Cipher != nil {
		if err := db.Use(silostore.NewPlugin(silostore.WithCipher(cfg.Cipher))); err != nil {
			return nil, fmt.Errorf("failed to register silo plugin: %w", err)
		}
	}

	return db, nil
}

// URL returns the database URL from the environment. Empty when
// DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}
