package server

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/conjur-authn/pkg/audit"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication/security"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authenticator"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authenticator/authn"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authenticator/authngcp"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authenticator/authnjwt"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authenticator/authnoidc"
	"github.com/doodlesbykumbi/conjur-authn/pkg/config"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server/middleware"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server/store"
	storegorm "github.com/doodlesbykumbi/conjur-authn/pkg/server/store/gorm"
	silostore "github.com/doodlesbykumbi/conjur-authn/pkg/slosilo/store"
	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo/token"
)

// Server wires the authentication pipeline to its HTTP surface.
type Server struct {
	Router   *mux.Router
	DB       *gorm.DB
	Keystore *silostore.KeyStore
	Config   *config.Config

	Registry *authenticator.Registry
	Strategy *authentication.Strategy
	Status   *authentication.Status
	Audit    *audit.Service

	HealthStore store.HealthStore
	Credentials store.CredentialsStore
	TokenAuth   *middleware.TokenAuthenticator

	srv *http.Server
}

// ConfigSource yields the current configuration. The pipeline re-reads it
// through this handle instead of reaching for package-level state, so the
// caller decides whether hot reload is in play.
type ConfigSource func() *config.Config

// keystoreKeySource adapts the keystore to the token factory.
type keystoreKeySource struct {
	keystore *silostore.KeyStore
}

func (s keystoreKeySource) SigningKey(account string) (token.SigningKey, error) {
	return s.keystore.ByAccount(account)
}

// keystoreVerifier adapts the keystore to the token middleware.
type keystoreVerifier struct {
	keystore *silostore.KeyStore
}

func (s keystoreVerifier) ByFingerprint(fingerprint string) (middleware.VerifyingKey, error) {
	return s.keystore.ByFingerprint(fingerprint)
}

// NewServer assembles the full pipeline against the given database: the
// stores, the security gateways, the native authenticators, and the
// strategy and status orchestrators.
func NewServer(
	db *gorm.DB,
	cfgSource ConfigSource,
	host string,
	port string,
) *Server {
	cfg := cfgSource()
	keystore := silostore.NewKeyStore(db)

	roles := storegorm.NewRolesStore(db)
	resources := storegorm.NewResourcesStore(db)
	secrets := storegorm.NewSecretsStore(db)
	credentials := storegorm.NewCredentialsStore(db)
	authenticators := storegorm.NewAuthenticatorsStore(db)
	health := storegorm.NewHealthStore(db)

	sqlDB, _ := db.DB()
	auditService := audit.NewService(audit.NewLogger(), audit.NewStore(sqlDB))

	registry := authenticator.NewRegistry()
	registry.Register(authn.New(credentials))
	registry.Register(authnjwt.New(secrets, roles))
	registry.Register(authngcp.New(authngcp.NewGoogleVerifier(), roles))
	// OIDC instances are service-scoped; install one per whitelist entry.
	for _, entry := range cfg.Authenticators {
		if typ, serviceID, ok := strings.Cut(entry, "/"); ok && typ == authnoidc.AuthenticatorType {
			registry.Register(authnoidc.New(secrets, serviceID))
		}
	}

	gateways := store.SecurityGateways{Roles: roles, Resources: resources}
	securityValidator := security.New(gateways, gateways)

	enabledSource := authenticator.NewEnabledSource(func() string {
		return cfgSource().AuthenticatorsString()
	}, authenticators)

	tokenFactory := token.NewFactory(keystoreKeySource{keystore: keystore})
	tokenFactory.SetTTLs(cfg.UserTokenTTL(), cfg.HostTokenTTL())

	strategy := authentication.NewStrategy(
		registry,
		securityValidator,
		store.OriginValidator{Credentials: credentials},
		tokenFactory,
		auditService,
		enabledSource,
	)
	status := authentication.NewStatus(
		registry,
		securityValidator,
		auditService,
		enabledSource,
	)

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler:      handlers.LoggingHandler(os.Stdout, router),
		Addr:         host + ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router:      router,
		DB:          db,
		Keystore:    keystore,
		Config:      cfg,
		Registry:    registry,
		Strategy:    strategy,
		Status:      status,
		Audit:       auditService,
		HealthStore: health,
		Credentials: credentials,
		TokenAuth:   middleware.NewTokenAuthenticator(keystoreVerifier{keystore: keystore}),
		srv:         srv,
	}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
