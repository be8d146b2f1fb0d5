package integration

import (
	"context"
	"crypto/rsa"
	"database/sql"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	migrationsfs "github.com/doodlesbykumbi/conjur-authn/db"
	"github.com/doodlesbykumbi/conjur-authn/pkg/config"
	"github.com/doodlesbykumbi/conjur-authn/pkg/db"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server/endpoints"
	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo"
)

// enabledAuthenticators is the whitelist the test server starts with. The
// feature files rely on exactly these entries.
const enabledAuthenticators = "authn,authn-jwt/raw,authn-jwt/locked,authn-gcp/prod"

// TestContext holds the resources shared by every scenario: one postgres
// container and one in-process server.
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Container   testcontainers.Container
	Server      *server.Server
	ServerURL   string
	DatabaseURL string
	DataKey     []byte
	Cipher      slosilo.SymmetricCipher
	HTTPClient  *http.Client

	// JWTKey signs the tokens the authn-jwt scenarios present. Its public
	// half is published through the service's public-keys variable.
	JWTKey *rsa.PrivateKey
}

// NewTestContext starts a postgres testcontainer, migrates it, and runs the
// server in-process against it.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("conjur_test"),
		tcpostgres.WithUsername("conjur"),
		tcpostgres.WithPassword("conjur"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	connStr := fmt.Sprintf("postgres://conjur:conjur@%s:%s/conjur_test?sslmode=disable", host, port.Port())

	if err := runMigrations(connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	dataKey, err := slosilo.RandomBytes(32)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}
	cipher, err := slosilo.NewSymmetric(dataKey)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gormDB, err := db.Connect(db.Config{URL: connStr, Cipher: cipher})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	rawDB, err := gormDB.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	// The server reads its whitelist from the process config on every
	// request, so the env var has to be in place before it starts.
	_ = os.Setenv("CONJUR_AUTHENTICATORS", enabledAuthenticators)
	if err := config.Reload(); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to reload config: %w", err)
	}

	serverPort := "18080"
	serverURL := "http://127.0.0.1:" + serverPort

	s := server.NewServer(gormDB, config.Get, "127.0.0.1", serverPort)
	endpoints.RegisterAll(s)
	go func() { _ = s.Start() }()

	if err := waitForServer(serverURL, 30*time.Second); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return &TestContext{
		DB:          gormDB,
		RawDB:       rawDB,
		Container:   pgContainer,
		Server:      s,
		ServerURL:   serverURL,
		DatabaseURL: connStr,
		DataKey:     dataKey,
		Cipher:      cipher,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func runMigrations(connStr string) error {
	migrationsFS, err := fs.Sub(migrationsfs.Migrations, "migrations")
	if err != nil {
		return err
	}
	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", d, connStr+"&x-migrations-table=go_schema_migrations")
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	return m.Up()
}

// waitForServer polls the server until it responds or times out.
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// Close cleans up all test resources.
func (tc *TestContext) Close(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if tc.Server != nil {
		_ = tc.Server.Shutdown(shutdownCtx)
	}
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}
