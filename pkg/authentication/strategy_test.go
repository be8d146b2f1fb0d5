package authentication

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/conjur-authn/pkg/audit"
)

type fakeAuthenticator struct {
	name   string
	roleID string
	err    error
	calls  int
}

func (a *fakeAuthenticator) Name() string { return a.name }

func (a *fakeAuthenticator) Authenticate(ctx context.Context, input AuthenticatorInput) (string, error) {
	a.calls++
	return a.roleID, a.err
}

type fakeRegistry struct {
	authenticators map[string]Authenticator
}

func (r *fakeRegistry) Lookup(name string, serviceID string) (Authenticator, bool) {
	if serviceID != "" {
		if a, ok := r.authenticators[name+"/"+serviceID]; ok {
			return a, true
		}
	}
	a, ok := r.authenticators[name]
	return a, ok
}

type fakeSecurity struct {
	validateErr  error
	validateReqs []AccessRequest

	accountErr   error
	whitelistErr error
	accessErr    error
	existsErr    error

	// calls records the granular validator invocations in order.
	calls           []string
	accessPrivilege Privilege
	accessWS        Webservice
}

func (s *fakeSecurity) Validate(req AccessRequest) error {
	s.validateReqs = append(s.validateReqs, req)
	return s.validateErr
}

func (s *fakeSecurity) ValidateAccountExists(account string) error {
	s.calls = append(s.calls, "account-exists")
	return s.accountErr
}

func (s *fakeSecurity) ValidateWebserviceIsWhitelisted(webservice Webservice, account string, whitelist Webservices) error {
	s.calls = append(s.calls, "whitelisted")
	return s.whitelistErr
}

func (s *fakeSecurity) ValidateRoleCanAccessWebservice(webservice Webservice, account string, userID string, privilege Privilege) error {
	s.calls = append(s.calls, "role-can-access")
	s.accessPrivilege = privilege
	s.accessWS = webservice
	return s.accessErr
}

func (s *fakeSecurity) ValidateWebserviceExists(webservice Webservice, account string) error {
	s.calls = append(s.calls, "webservice-exists")
	return s.existsErr
}

type fakeOrigin struct {
	err   error
	calls int
}

func (o *fakeOrigin) ValidateOrigin(account string, username string, clientIP string) error {
	o.calls++
	return o.err
}

type fakeTokenFactory struct {
	token []byte
	err   error
	calls int
}

func (f *fakeTokenFactory) SignedToken(account string, login string) ([]byte, error) {
	f.calls++
	return f.token, f.err
}

type auditRecorder struct {
	events []audit.Event
}

func (r *auditRecorder) Log(event audit.Event) {
	r.events = append(r.events, event)
}

type staticEnabled string

func (e staticEnabled) Enabled(account string) (string, error) { return string(e), nil }

type failingEnabled struct{ err error }

func (e failingEnabled) Enabled(account string) (string, error) { return "", e.err }

func apiKeyInput() AuthenticatorInput {
	return AuthenticatorInput{
		AuthenticatorName: "authn",
		Account:           "cucumber",
		Username:          "alice",
		Credentials:       []byte("the-api-key"),
		ClientIP:          "10.0.0.1",
	}
}

func jwtInput() AuthenticatorInput {
	return AuthenticatorInput{
		AuthenticatorName: "authn-jwt",
		ServiceID:         "prod",
		Account:           "cucumber",
		Credentials:       []byte("a.b.c"),
		ClientIP:          "10.0.0.1",
	}
}

func TestAuthenticateIssuesSignedToken(t *testing.T) {
	plugin := &fakeAuthenticator{name: "authn", roleID: "cucumber:user:alice"}
	registry := &fakeRegistry{authenticators: map[string]Authenticator{"authn": plugin}}
	security := &fakeSecurity{}
	origin := &fakeOrigin{}
	tokens := &fakeTokenFactory{token: []byte(`{"protected":"...","payload":"...","signature":"..."}`)}
	recorder := &auditRecorder{}

	strategy := NewStrategy(registry, security, origin, tokens, recorder, staticEnabled("authn"))

	token, err := strategy.Authenticate(context.Background(), apiKeyInput())

	require.NoError(t, err)
	assert.Equal(t, tokens.token, token)
	assert.Equal(t, 1, plugin.calls)
	assert.Equal(t, 1, origin.calls)
	assert.Equal(t, 1, tokens.calls)

	require.Len(t, recorder.events, 1)
	event, ok := recorder.events[0].(audit.AuthenticateEvent)
	require.True(t, ok)
	assert.True(t, event.Success)
	assert.Equal(t, "cucumber:user:alice", event.RoleID)
	assert.Equal(t, "10.0.0.1", event.ClientIP)
}

func TestAuthenticatePassesWhitelistToSecurity(t *testing.T) {
	plugin := &fakeAuthenticator{name: "authn-jwt", roleID: "cucumber:host:myapp"}
	registry := &fakeRegistry{authenticators: map[string]Authenticator{"authn-jwt": plugin}}
	security := &fakeSecurity{}
	strategy := NewStrategy(
		registry, security, &fakeOrigin{}, &fakeTokenFactory{}, &auditRecorder{},
		staticEnabled("authn-jwt/prod, authn-gcp"),
	)

	_, err := strategy.Authenticate(context.Background(), jwtInput())

	require.NoError(t, err)
	require.Len(t, security.validateReqs, 1)
	req := security.validateReqs[0]
	assert.Equal(t, Webservice{Account: "cucumber", AuthenticatorName: "authn-jwt", ServiceID: "prod"}, req.Webservice)
	assert.True(t, req.WhitelistedWebservices.Include(Webservice{Account: "cucumber", AuthenticatorName: "authn-gcp"}))
	// The default authenticator is always part of the whitelist.
	assert.True(t, req.WhitelistedWebservices.Include(DefaultWebservice("cucumber")))
}

func TestAuthenticateUnknownAuthenticator(t *testing.T) {
	registry := &fakeRegistry{authenticators: map[string]Authenticator{}}
	security := &fakeSecurity{}
	tokens := &fakeTokenFactory{}
	recorder := &auditRecorder{}
	strategy := NewStrategy(registry, security, &fakeOrigin{}, tokens, recorder, staticEnabled(""))

	input := apiKeyInput()
	input.AuthenticatorName = "authn-bogus"
	_, err := strategy.Authenticate(context.Background(), input)

	var notFound *AuthenticatorNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "'authn-bogus' wasn't in the available authenticators", err.Error())

	// Nothing beyond the lookup ran.
	assert.Empty(t, security.validateReqs)
	assert.Zero(t, tokens.calls)

	require.Len(t, recorder.events, 1)
	event := recorder.events[0].(audit.AuthenticateEvent)
	assert.False(t, event.Success)
	assert.Equal(t, "cucumber:user:alice", event.RoleID)
	assert.Contains(t, event.ErrorMessage, "wasn't in the available authenticators")
}

func TestAuthenticateSecurityFailureStopsPipeline(t *testing.T) {
	plugin := &fakeAuthenticator{name: "authn", roleID: "cucumber:user:alice"}
	registry := &fakeRegistry{authenticators: map[string]Authenticator{"authn": plugin}}
	securityErr := errors.New("'authn-jwt/prod' not whitelisted in CONJUR_AUTHENTICATORS")
	security := &fakeSecurity{validateErr: securityErr}
	origin := &fakeOrigin{}
	tokens := &fakeTokenFactory{}
	recorder := &auditRecorder{}
	strategy := NewStrategy(registry, security, origin, tokens, recorder, staticEnabled("authn"))

	_, err := strategy.Authenticate(context.Background(), apiKeyInput())

	assert.ErrorIs(t, err, securityErr)
	assert.Zero(t, plugin.calls)
	assert.Zero(t, origin.calls)
	assert.Zero(t, tokens.calls)

	require.Len(t, recorder.events, 1)
	assert.False(t, recorder.events[0].(audit.AuthenticateEvent).Success)
}

func TestAuthenticateOriginFailure(t *testing.T) {
	plugin := &fakeAuthenticator{name: "authn", roleID: "cucumber:user:alice"}
	registry := &fakeRegistry{authenticators: map[string]Authenticator{"authn": plugin}}
	originErr := &InvalidOriginError{ClientIP: "10.0.0.1"}
	tokens := &fakeTokenFactory{}
	recorder := &auditRecorder{}
	strategy := NewStrategy(
		registry, &fakeSecurity{}, &fakeOrigin{err: originErr}, tokens, recorder, staticEnabled("authn"),
	)

	_, err := strategy.Authenticate(context.Background(), apiKeyInput())

	assert.ErrorIs(t, err, originErr)
	assert.Zero(t, plugin.calls)
	assert.Zero(t, tokens.calls)
}

func TestAuthenticateCredentialFailure(t *testing.T) {
	credentialErr := &InvalidCredentialsError{}
	plugin := &fakeAuthenticator{name: "authn", err: credentialErr}
	registry := &fakeRegistry{authenticators: map[string]Authenticator{"authn": plugin}}
	tokens := &fakeTokenFactory{}
	recorder := &auditRecorder{}
	strategy := NewStrategy(
		registry, &fakeSecurity{}, &fakeOrigin{}, tokens, recorder, staticEnabled("authn"),
	)

	_, err := strategy.Authenticate(context.Background(), apiKeyInput())

	assert.ErrorIs(t, err, credentialErr)
	assert.Zero(t, tokens.calls)
	require.Len(t, recorder.events, 1)
	event := recorder.events[0].(audit.AuthenticateEvent)
	assert.False(t, event.Success)
	assert.Equal(t, "cucumber:user:alice", event.RoleID)
}

func TestAuthenticateTokenFactoryFailureIsAuditedAsFailure(t *testing.T) {
	plugin := &fakeAuthenticator{name: "authn", roleID: "cucumber:user:alice"}
	registry := &fakeRegistry{authenticators: map[string]Authenticator{"authn": plugin}}
	signingErr := errors.New("keystore unavailable")
	tokens := &fakeTokenFactory{err: signingErr}
	recorder := &auditRecorder{}
	strategy := NewStrategy(
		registry, &fakeSecurity{}, &fakeOrigin{}, tokens, recorder, staticEnabled("authn"),
	)

	token, err := strategy.Authenticate(context.Background(), apiKeyInput())

	assert.ErrorIs(t, err, signingErr)
	assert.Nil(t, token)
	assert.Equal(t, 1, tokens.calls)

	require.Len(t, recorder.events, 1)
	event := recorder.events[0].(audit.AuthenticateEvent)
	assert.False(t, event.Success)
	assert.Equal(t, "cucumber:user:alice", event.RoleID)
	assert.Equal(t, "keystore unavailable", event.ErrorMessage)
}

func TestAuthenticateEnabledSourceFailure(t *testing.T) {
	plugin := &fakeAuthenticator{name: "authn", roleID: "cucumber:user:alice"}
	registry := &fakeRegistry{authenticators: map[string]Authenticator{"authn": plugin}}
	sourceErr := errors.New("config store unavailable")
	security := &fakeSecurity{}
	strategy := NewStrategy(
		registry, security, &fakeOrigin{}, &fakeTokenFactory{}, &auditRecorder{},
		failingEnabled{err: sourceErr},
	)

	_, err := strategy.Authenticate(context.Background(), apiKeyInput())

	assert.ErrorIs(t, err, sourceErr)
	assert.Empty(t, security.validateReqs)
}

func TestAuthenticateQualifiedLookupWins(t *testing.T) {
	bare := &fakeAuthenticator{name: "authn-oidc", roleID: "cucumber:user:from-bare"}
	qualified := &fakeAuthenticator{name: "authn-oidc/keycloak", roleID: "cucumber:user:from-qualified"}
	registry := &fakeRegistry{authenticators: map[string]Authenticator{
		"authn-oidc":          bare,
		"authn-oidc/keycloak": qualified,
	}}
	recorder := &auditRecorder{}
	strategy := NewStrategy(
		registry, &fakeSecurity{}, &fakeOrigin{}, &fakeTokenFactory{token: []byte("t")}, recorder,
		staticEnabled("authn-oidc/keycloak"),
	)

	input := AuthenticatorInput{
		AuthenticatorName: "authn-oidc",
		ServiceID:         "keycloak",
		Account:           "cucumber",
		Credentials:       []byte("id-token"),
	}
	_, err := strategy.Authenticate(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, 1, qualified.calls)
	assert.Zero(t, bare.calls)
}
