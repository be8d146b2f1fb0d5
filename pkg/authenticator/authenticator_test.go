package authenticator

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
)

type stubAuthenticator struct {
	name string
}

func (a *stubAuthenticator) Name() string { return a.name }

func (a *stubAuthenticator) Authenticate(ctx context.Context, input authentication.AuthenticatorInput) (string, error) {
	return "", errors.New("not implemented")
}

type stubLoginAuthenticator struct {
	stubAuthenticator
}

func (a *stubLoginAuthenticator) LoginURI(ctx context.Context, account string) (string, error) {
	return "https://provider.example.com/authorize", nil
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubAuthenticator{name: "authn"})
	registry.Register(&stubAuthenticator{name: "authn-jwt"})

	found, ok := registry.Lookup("authn-jwt", "prod")
	require.True(t, ok)
	assert.Equal(t, "authn-jwt", found.Name())

	_, ok = registry.Lookup("authn-bogus", "")
	assert.False(t, ok)
}

func TestRegistryQualifiedNameShadowsBareName(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubAuthenticator{name: "authn-oidc"})
	registry.Register(&stubAuthenticator{name: "authn-oidc/keycloak"})

	found, ok := registry.Lookup("authn-oidc", "keycloak")
	require.True(t, ok)
	assert.Equal(t, "authn-oidc/keycloak", found.Name())

	found, ok = registry.Lookup("authn-oidc", "okta")
	require.True(t, ok)
	assert.Equal(t, "authn-oidc", found.Name())
}

func TestRegistryLaterRegistrationOverrides(t *testing.T) {
	first := &stubAuthenticator{name: "authn"}
	second := &stubAuthenticator{name: "authn"}
	registry := NewRegistry()
	registry.Register(first)
	registry.Register(second)

	found, _ := registry.Lookup("authn", "")
	assert.Same(t, second, found)
	assert.Equal(t, []string{"authn"}, registry.Installed())
}

func TestRegistryInstalled(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubAuthenticator{name: "authn-jwt/prod"})
	registry.Register(&stubAuthenticator{name: "authn"})
	registry.Register(&stubAuthenticator{name: "authn-gcp"})

	assert.Equal(t, []string{"authn", "authn-gcp", "authn-jwt/prod"}, registry.Installed())
	assert.Equal(t, []string{"authn", "authn-gcp", "authn-jwt"}, registry.InstalledTypes())
}

func TestRegistryLoginAuthenticators(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubAuthenticator{name: "authn"})
	registry.Register(&stubLoginAuthenticator{stubAuthenticator{name: "authn-oidc/keycloak"}})

	assert.Equal(t, []string{"authn-oidc/keycloak"}, registry.LoginAuthenticators())
}

type stubConfigGateway struct {
	entries map[string][]string
	err     error
}

func (g *stubConfigGateway) PersistedEnabledAuthenticators(account string) ([]string, error) {
	return g.entries[account], g.err
}

func TestEnabledSourceMergesEnvironmentAndStore(t *testing.T) {
	source := NewEnabledSource(
		func() string { return "authn-jwt/prod, authn-gcp" },
		&stubConfigGateway{entries: map[string][]string{
			"cucumber": {"authn-oidc/keycloak", "authn-gcp"},
		}},
	)

	enabled, err := source.Enabled("cucumber")

	require.NoError(t, err)
	assert.Equal(t, "authn-jwt/prod,authn-gcp,authn-oidc/keycloak,authn", enabled)
}

func TestEnabledSourceWithoutStore(t *testing.T) {
	source := NewEnabledSource(func() string { return "authn-gcp" }, nil)

	enabled, err := source.Enabled("cucumber")

	require.NoError(t, err)
	assert.Equal(t, "authn-gcp,authn", enabled)
}

func TestEnabledSourceAlwaysIncludesDefault(t *testing.T) {
	source := NewEnabledSource(func() string { return "" }, nil)

	enabled, err := source.Enabled("cucumber")

	require.NoError(t, err)
	assert.Equal(t, "authn", enabled)
}

func TestEnabledSourceStoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("config store unavailable")
	source := NewEnabledSource(func() string { return "authn-gcp" }, &stubConfigGateway{err: storeErr})

	_, err := source.Enabled("cucumber")

	assert.ErrorIs(t, err, storeErr)
}

func TestEnabledSourceReflectsChanges(t *testing.T) {
	current := "authn-gcp"
	source := NewEnabledSource(func() string { return current }, nil)

	first, err := source.Enabled("cucumber")
	require.NoError(t, err)

	current = "authn-gcp,authn-jwt/prod"
	second, err := source.Enabled("cucumber")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Contains(t, second, "authn-jwt/prod")
}

func TestResolveIdentity(t *testing.T) {
	identity, err := ResolveIdentity("host/from-token", "host/from-url")
	require.NoError(t, err)
	assert.Equal(t, "host/from-token", identity)

	identity, err = ResolveIdentity("", "host/from-url")
	require.NoError(t, err)
	assert.Equal(t, "host/from-url", identity)

	_, err = ResolveIdentity("", "")
	var noProvider *NoRelevantIdentityProviderError
	assert.ErrorAs(t, err, &noProvider)
}

func TestVariablePrefix(t *testing.T) {
	assert.Equal(t,
		"cucumber:variable:conjur/authn-jwt/prod/",
		VariablePrefix("cucumber", "authn-jwt", "prod"),
	)
	assert.Equal(t,
		"cucumber:variable:conjur/authn-gcp/",
		VariablePrefix("cucumber", "authn-gcp", ""),
	)
}

func TestInstalledIsSortedUnderConcurrentRegistration(t *testing.T) {
	registry := NewRegistry()
	done := make(chan struct{})
	go func() {
		defer close(done)
		registry.Register(&stubAuthenticator{name: "authn-jwt/a"})
		registry.Register(&stubAuthenticator{name: "authn-jwt/b"})
	}()
	registry.Register(&stubAuthenticator{name: "authn"})
	<-done

	installed := registry.Installed()
	assert.True(t, sort.StringsAreSorted(installed))
	assert.Len(t, installed, 3)
}
