package endpoints

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/conjur-authn/pkg/audit"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authenticator"
	"github.com/doodlesbykumbi/conjur-authn/pkg/config"
	"github.com/doodlesbykumbi/conjur-authn/pkg/model"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server/middleware"
	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo"
	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo/token"
)

// Permissive pipeline fakes. Handler tests exercise the HTTP boundary;
// validator behavior is covered by the authentication package tests.

type allowAllSecurity struct{}

func (allowAllSecurity) Validate(req authentication.AccessRequest) error { return nil }
func (allowAllSecurity) ValidateAccountExists(account string) error      { return nil }
func (allowAllSecurity) ValidateWebserviceIsWhitelisted(webservice authentication.Webservice, account string, whitelist authentication.Webservices) error {
	return nil
}
func (allowAllSecurity) ValidateRoleCanAccessWebservice(webservice authentication.Webservice, account string, userID string, privilege authentication.Privilege) error {
	return nil
}
func (allowAllSecurity) ValidateWebserviceExists(webservice authentication.Webservice, account string) error {
	return nil
}

type allowAllOrigin struct{}

func (allowAllOrigin) ValidateOrigin(account, username, clientIP string) error { return nil }

type noopAudit struct{}

func (noopAudit) Log(event audit.Event) {}

type staticEnabled string

func (s staticEnabled) Enabled(account string) (string, error) { return string(s), nil }

type signingKeySource struct {
	key *slosilo.Key
}

func (s signingKeySource) SigningKey(account string) (token.SigningKey, error) {
	return s.key, nil
}

type verifyingKeystore struct {
	key *slosilo.Key
}

func (v verifyingKeystore) ByFingerprint(fingerprint string) (middleware.VerifyingKey, error) {
	if fingerprint != v.key.Fingerprint() {
		return nil, errors.New("unknown fingerprint")
	}
	return verifyingKey{key: v.key}, nil
}

type verifyingKey struct {
	key *slosilo.Key
}

func (k verifyingKey) Verify(value, signature []byte) error { return k.key.Verify(value, signature) }
func (k verifyingKey) Account() string                      { return "cucumber" }

type stubAuthenticator struct {
	name   string
	roleID string
	err    error
}

func (s *stubAuthenticator) Name() string { return s.name }

func (s *stubAuthenticator) Authenticate(ctx context.Context, input authentication.AuthenticatorInput) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.roleID, nil
}

type stubStatusAuthenticator struct {
	stubAuthenticator
	statusErr error
}

func (s *stubStatusAuthenticator) Status(ctx context.Context, input authentication.AuthenticatorStatusInput) error {
	return s.statusErr
}

type stubLoginAuthenticator struct {
	stubAuthenticator
	loginURI string
}

func (s *stubLoginAuthenticator) LoginURI(ctx context.Context, account string) (string, error) {
	return s.loginURI, nil
}

type fakeHealth struct {
	err error
}

func (f fakeHealth) Ping() error { return f.err }

type fakeCredentials struct {
	credentials map[string]*model.Credential
}

func (f fakeCredentials) FetchCredential(roleID string) (*model.Credential, error) {
	return f.credentials[roleID], nil
}

func newTestServer(t *testing.T, registry *authenticator.Registry) (*server.Server, *slosilo.Key) {
	t.Helper()

	key, err := slosilo.GenerateKey()
	require.NoError(t, err)

	cfg := &config.Config{Authenticators: []string{"authn-jwt/prod", "authn-gcp"}}

	strategy := authentication.NewStrategy(
		registry,
		allowAllSecurity{},
		allowAllOrigin{},
		token.NewFactory(signingKeySource{key: key}),
		noopAudit{},
		staticEnabled("authn-jwt/prod,authn-gcp"),
	)
	status := authentication.NewStatus(
		registry,
		allowAllSecurity{},
		noopAudit{},
		staticEnabled("authn-jwt/prod,authn-gcp"),
	)

	s := &server.Server{
		Router:      mux.NewRouter().UseEncodedPath(),
		Config:      cfg,
		Registry:    registry,
		Strategy:    strategy,
		Status:      status,
		HealthStore: fakeHealth{},
		Credentials: fakeCredentials{credentials: map[string]*model.Credential{
			"cucumber:user:alice": {RoleId: "cucumber:user:alice", ApiKey: []byte("alice-api-key")},
		}},
		TokenAuth: middleware.NewTokenAuthenticator(verifyingKeystore{key: key}),
	}
	RegisterAll(s)
	return s, key
}

func authHeader(t *testing.T, key *slosilo.Key, login string) string {
	t.Helper()
	raw, err := token.NewFactory(signingKeySource{key: key}).SignedToken("cucumber", login)
	require.NoError(t, err)
	return `Token token="` + base64.URLEncoding.EncodeToString(raw) + `"`
}

func TestAuthenticateIssuesToken(t *testing.T) {
	registry := authenticator.NewRegistry()
	registry.Register(&stubAuthenticator{name: "authn-jwt", roleID: "cucumber:host:myapp"})
	s, key := newTestServer(t, registry)

	request := httptest.NewRequest(http.MethodPost,
		"/authn-jwt/prod/cucumber/host%2Fmyapp/authenticate",
		strings.NewReader("some-jwt"))
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	parsed, err := token.Parse(recorder.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "host/myapp", parsed.Sub())
	assert.Equal(t, key.Fingerprint(), parsed.Kid())
}

func TestAuthenticateBase64Encoding(t *testing.T) {
	registry := authenticator.NewRegistry()
	registry.Register(&stubAuthenticator{name: "authn", roleID: "cucumber:user:alice"})
	s, _ := newTestServer(t, registry)

	request := httptest.NewRequest(http.MethodPost,
		"/authn/cucumber/alice/authenticate",
		strings.NewReader("alice-api-key"))
	request.Header.Set("Accept-Encoding", "base64")
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "base64", recorder.Header().Get("Content-Encoding"))

	decoded, err := base64.StdEncoding.DecodeString(recorder.Body.String())
	require.NoError(t, err)
	_, err = token.Parse(decoded)
	assert.NoError(t, err)
}

func TestAuthenticateFailureIs401(t *testing.T) {
	registry := authenticator.NewRegistry()
	registry.Register(&stubAuthenticator{name: "authn", err: &authentication.InvalidCredentialsError{}})
	s, _ := newTestServer(t, registry)

	request := httptest.NewRequest(http.MethodPost,
		"/authn/cucumber/alice/authenticate", strings.NewReader("wrong"))
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, recorder.Body.String())
}

func TestAuthenticateUnknownAuthenticatorIs401(t *testing.T) {
	s, _ := newTestServer(t, authenticator.NewRegistry())

	request := httptest.NewRequest(http.MethodPost,
		"/authn-bogus/cucumber/alice/authenticate", strings.NewReader("creds"))
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestStatusRequiresToken(t *testing.T) {
	registry := authenticator.NewRegistry()
	registry.Register(&stubStatusAuthenticator{stubAuthenticator: stubAuthenticator{name: "authn-jwt"}})
	s, _ := newTestServer(t, registry)

	request := httptest.NewRequest(http.MethodGet, "/authn-jwt/prod/cucumber/status", nil)
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestStatusHealthy(t *testing.T) {
	registry := authenticator.NewRegistry()
	registry.Register(&stubStatusAuthenticator{stubAuthenticator: stubAuthenticator{name: "authn-jwt"}})
	s, key := newTestServer(t, registry)

	request := httptest.NewRequest(http.MethodGet, "/authn-jwt/prod/cucumber/status", nil)
	request.Header.Set("Authorization", authHeader(t, key, "alice"))
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
}

func TestStatusNotImplementedIs501(t *testing.T) {
	registry := authenticator.NewRegistry()
	registry.Register(&stubAuthenticator{name: "authn-gcp"})
	s, key := newTestServer(t, registry)

	request := httptest.NewRequest(http.MethodGet, "/authn-gcp/prod/cucumber/status", nil)
	request.Header.Set("Authorization", authHeader(t, key, "alice"))
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotImplemented, recorder.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "error", payload["status"])
	assert.Contains(t, payload["error"], "status check not implemented")
}

func TestStatusUnknownAuthenticatorIs404(t *testing.T) {
	s, key := newTestServer(t, authenticator.NewRegistry())

	request := httptest.NewRequest(http.MethodGet, "/authn-bogus/prod/cucumber/status", nil)
	request.Header.Set("Authorization", authHeader(t, key, "alice"))
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestStatusMissingServiceIDIs422(t *testing.T) {
	registry := authenticator.NewRegistry()
	registry.Register(&stubStatusAuthenticator{stubAuthenticator: stubAuthenticator{name: "authn-jwt"}})
	s, key := newTestServer(t, registry)

	request := httptest.NewRequest(http.MethodGet, "/authn-jwt/cucumber/status", nil)
	request.Header.Set("Authorization", authHeader(t, key, "alice"))
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestAuthenticatorsListing(t *testing.T) {
	registry := authenticator.NewRegistry()
	registry.Register(&stubAuthenticator{name: "authn"})
	registry.Register(&stubAuthenticator{name: "authn-jwt"})
	s, _ := newTestServer(t, registry)

	request := httptest.NewRequest(http.MethodGet, "/authenticators", nil)
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var payload AuthenticatorsResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, []string{"authn", "authn-jwt"}, payload.Installed)
	assert.Equal(t, []string{"authn-jwt/prod", "authn-gcp"}, payload.Enabled)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, authenticator.NewRegistry())

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestLoginReturnsAPIKey(t *testing.T) {
	s, _ := newTestServer(t, authenticator.NewRegistry())

	request := httptest.NewRequest(http.MethodGet, "/authn/cucumber/login", nil)
	request.SetBasicAuth("alice", "alice-api-key")
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "alice-api-key", recorder.Body.String())
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s, _ := newTestServer(t, authenticator.NewRegistry())

	request := httptest.NewRequest(http.MethodGet, "/authn/cucumber/login", nil)
	request.SetBasicAuth("alice", "wrong")
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestLoginURIEndpoint(t *testing.T) {
	registry := authenticator.NewRegistry()
	registry.Register(&stubLoginAuthenticator{
		stubAuthenticator: stubAuthenticator{name: "authn-oidc/keycloak"},
		loginURI:          "https://keycloak.example.com/auth?client_id=conjur",
	})
	s, _ := newTestServer(t, registry)

	request := httptest.NewRequest(http.MethodGet, "/authn-oidc/keycloak/cucumber/login", nil)
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "https://keycloak.example.com/auth?client_id=conjur", payload["login_uri"])
}

func TestLoginURINotSupportedIs404(t *testing.T) {
	registry := authenticator.NewRegistry()
	registry.Register(&stubAuthenticator{name: "authn-jwt"})
	s, _ := newTestServer(t, registry)

	request := httptest.NewRequest(http.MethodGet, "/authn-jwt/prod/cucumber/login", nil)
	recorder := httptest.NewRecorder()
	s.Router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
