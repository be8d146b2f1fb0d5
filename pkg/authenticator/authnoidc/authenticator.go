// Package authnoidc authenticates users with OIDC id tokens. Each enabled
// service id gets its own authenticator instance, registered under the
// qualified name "authn-oidc/<service-id>", with its provider and claim
// mapping configured in Conjur variables.
package authnoidc

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authenticator"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authenticator/authnjwt"
)

// AuthenticatorType is the unqualified name of the OIDC authenticator.
const AuthenticatorType = "authn-oidc"

const (
	variableProviderURI         = "provider-uri"
	variableIDTokenUserProperty = "id-token-user-property"
	variableClientID            = "client-id"
	variableRedirectURI         = "redirect-uri"
)

type settings struct {
	providerURI         string
	idTokenUserProperty string
	clientID            string
	redirectURI         string
}

// Authenticator implements authn-oidc for one service id.
type Authenticator struct {
	serviceID string
	secrets   authenticator.Secrets
	client    *http.Client
}

func New(secrets authenticator.Secrets, serviceID string) *Authenticator {
	return &Authenticator{
		serviceID: serviceID,
		secrets:   secrets,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *Authenticator) Name() string { return AuthenticatorType + "/" + a.serviceID }

// Authenticate verifies the id token against the configured provider and
// returns the id of the user role named by the configured identity claim.
func (a *Authenticator) Authenticate(ctx context.Context, input authentication.AuthenticatorInput) (string, error) {
	token := strings.TrimSpace(string(input.Credentials))
	if token == "" {
		return "", &authentication.InvalidCredentialsError{}
	}

	cfg, err := a.loadSettings(input.Account)
	if err != nil {
		return "", err
	}
	discovery, err := authnjwt.DiscoverProvider(ctx, a.client, cfg.providerURI)
	if err != nil {
		return "", err
	}
	keys, err := discovery.FetchKeys(ctx, a.client)
	if err != nil {
		return "", err
	}

	claims, err := verifyIDToken(token, cfg, discovery, keys)
	if err != nil {
		return "", err
	}

	username, _ := claims[cfg.idTokenUserProperty].(string)
	if username == "" {
		return "", &IDTokenClaimNotFoundOrEmptyError{Claim: cfg.idTokenUserProperty}
	}
	return authentication.RoleIDFromLogin(input.Account, username), nil
}

// Status checks that the instance is fully configured and its provider's
// keys are reachable.
func (a *Authenticator) Status(ctx context.Context, input authentication.AuthenticatorStatusInput) error {
	cfg, err := a.loadSettings(input.Account)
	if err != nil {
		return err
	}
	_, err = authnjwt.FetchProviderKeys(ctx, a.client, cfg.providerURI)
	return err
}

// LoginURI returns the provider's authorization endpoint with the client
// parameters attached, for clients driving a browser login flow.
func (a *Authenticator) LoginURI(ctx context.Context, account string) (string, error) {
	cfg, err := a.loadSettings(account)
	if err != nil {
		return "", err
	}
	discovery, err := authnjwt.DiscoverProvider(ctx, a.client, cfg.providerURI)
	if err != nil {
		return "", err
	}
	if discovery.AuthorizationEndpoint == "" {
		return "", &authenticator.InvalidConfigurationError{
			Name:   variableProviderURI,
			Reason: "discovery document has no authorization_endpoint",
		}
	}

	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("scope", "openid profile email")
	if cfg.clientID != "" {
		query.Set("client_id", cfg.clientID)
	}
	if cfg.redirectURI != "" {
		query.Set("redirect_uri", cfg.redirectURI)
	}

	separator := "?"
	if strings.Contains(discovery.AuthorizationEndpoint, "?") {
		separator = "&"
	}
	return discovery.AuthorizationEndpoint + separator + query.Encode(), nil
}

func (a *Authenticator) loadSettings(account string) (*settings, error) {
	prefix := authenticator.VariablePrefix(account, AuthenticatorType, a.serviceID)

	cfg := &settings{}
	for _, variable := range []struct {
		name     string
		target   *string
		required bool
	}{
		{variableProviderURI, &cfg.providerURI, true},
		{variableIDTokenUserProperty, &cfg.idTokenUserProperty, true},
		{variableClientID, &cfg.clientID, false},
		{variableRedirectURI, &cfg.redirectURI, false},
	} {
		value, ok, err := a.secrets.FetchSecret(prefix + variable.name)
		if err != nil {
			return nil, err
		}
		value = strings.TrimSpace(value)
		if variable.required && (!ok || value == "") {
			return nil, &authenticator.MissingConfigurationError{Name: variable.name}
		}
		*variable.target = value
	}
	return cfg, nil
}

func verifyIDToken(token string, cfg *settings, discovery *authnjwt.DiscoveryDocument, keys map[string]interface{}) (jwt.MapClaims, error) {
	issuer := discovery.Issuer
	if issuer == "" {
		issuer = cfg.providerURI
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	}
	if cfg.clientID != "" {
		options = append(options, jwt.WithAudience(cfg.clientID))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.NewParser(options...).ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return keyForToken(keys, t)
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func keyForToken(keys map[string]interface{}, t *jwt.Token) (interface{}, error) {
	kid, _ := t.Header["kid"].(string)
	if kid != "" {
		if key, ok := keys[kid]; ok {
			return key, nil
		}
		return nil, &UnknownSigningKeyError{Kid: kid}
	}
	if len(keys) == 1 {
		for _, key := range keys {
			return key, nil
		}
	}
	return nil, &UnknownSigningKeyError{}
}
