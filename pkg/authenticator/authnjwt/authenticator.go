package authnjwt

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication/restrictions"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication/security"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authenticator"
)

// AuthenticatorName is the registry name of the JWT authenticator.
const AuthenticatorName = "authn-jwt"

const (
	variableIssuer           = "issuer"
	variableAudience         = "audience"
	variableTokenAppProperty = "token-app-property"
	variableIdentityPath     = "identity-path"
)

const defaultKeyCacheTTL = time.Minute

// reservedClaims are registered JWT claims that never serve as resource
// restrictions. Annotating a host with one of these is a policy mistake.
var reservedClaims = map[string]struct{}{
	"iss": {},
	"exp": {},
	"nbf": {},
	"iat": {},
	"jti": {},
	"aud": {},
}

// Roles looks up host roles and their annotations for restriction checks.
type Roles interface {
	RoleExists(roleID string) (bool, error)
	RoleAnnotations(roleID string) (map[string]string, error)
}

type settings struct {
	signingKeys      *signingKeySettings
	issuer           string
	audience         string
	tokenAppProperty string
	identityPath     string
}

// Authenticator validates third-party JWTs against per-service configuration
// stored in Conjur variables and maps them onto host roles.
type Authenticator struct {
	secrets authenticator.Secrets
	roles   Roles
	client  *http.Client
	cache   *keyCache
}

// New returns a JWT authenticator reading configuration through secrets and
// host metadata through roles.
func New(secrets authenticator.Secrets, roles Roles) *Authenticator {
	return &Authenticator{
		secrets: secrets,
		roles:   roles,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   newKeyCache(defaultKeyCacheTTL),
	}
}

func (a *Authenticator) Name() string { return AuthenticatorName }

// Authenticate verifies the JWT in input.Credentials and returns the id of
// the host role it authenticates.
func (a *Authenticator) Authenticate(ctx context.Context, input authentication.AuthenticatorInput) (string, error) {
	token := strings.TrimSpace(string(input.Credentials))
	if token == "" {
		return "", &RequestBodyMissingTokenError{}
	}
	if err := validateTokenFormat(token); err != nil {
		return "", err
	}

	cfg, err := a.loadSettings(input.Account, input.ServiceID)
	if err != nil {
		return "", err
	}

	claims, err := a.verify(ctx, cfg, token)
	if err != nil {
		return "", err
	}

	login, err := resolveLogin(cfg, claims, input.Username)
	if err != nil {
		return "", err
	}
	roleID := authentication.RoleIDFromLogin(input.Account, login)

	if err := a.validateRestrictions(roleID, claims, input.ServiceID); err != nil {
		return "", err
	}
	return roleID, nil
}

// Status checks that the authenticator instance is fully configured and that
// its signing keys are reachable right now, bypassing the key cache.
func (a *Authenticator) Status(ctx context.Context, input authentication.AuthenticatorStatusInput) error {
	cfg, err := a.loadSettings(input.Account, input.ServiceID)
	if err != nil {
		return err
	}
	_, err = a.cache.fetch(ctx, cfg.signingKeys.cacheKey(), true, func(ctx context.Context) (map[string]interface{}, error) {
		return cfg.signingKeys.fetchSigningKeys(ctx, a.client)
	})
	return err
}

func (a *Authenticator) loadSettings(account, serviceID string) (*settings, error) {
	prefix := authenticator.VariablePrefix(account, AuthenticatorName, serviceID)

	signingKeys, err := resolveSigningKeySettings(a.secrets, prefix)
	if err != nil {
		return nil, err
	}

	cfg := &settings{signingKeys: signingKeys}
	for _, optional := range []struct {
		name   string
		target *string
	}{
		{variableIssuer, &cfg.issuer},
		{variableAudience, &cfg.audience},
		{variableTokenAppProperty, &cfg.tokenAppProperty},
		{variableIdentityPath, &cfg.identityPath},
	} {
		value, ok, err := a.secrets.FetchSecret(prefix + optional.name)
		if err != nil {
			return nil, err
		}
		if ok {
			*optional.target = strings.TrimSpace(value)
		}
	}

	if cfg.issuer == "" {
		issuer, err := signingKeys.issuerHost()
		if err != nil {
			return nil, err
		}
		cfg.issuer = issuer
	}
	return cfg, nil
}

// verify parses and validates the token signature and registered claims.
// A kid absent from the cached key set triggers one forced refresh before
// the token is rejected, so freshly rotated keys are picked up immediately.
func (a *Authenticator) verify(ctx context.Context, cfg *settings, token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.signingKey(ctx, cfg.signingKeys, t)
	})
	if err != nil {
		return nil, err
	}

	if cfg.issuer != "" {
		issuer, err := claims.GetIssuer()
		if err != nil || issuer != cfg.issuer {
			return nil, &InvalidIssuerError{Issuer: cfg.issuer}
		}
	}
	if cfg.audience != "" {
		audience, err := claims.GetAudience()
		if err != nil || !containsAudience(audience, cfg.audience) {
			return nil, &InvalidAudienceError{Audience: cfg.audience}
		}
	}
	return claims, nil
}

func (a *Authenticator) signingKey(ctx context.Context, signingKeys *signingKeySettings, t *jwt.Token) (interface{}, error) {
	fetchFn := func(ctx context.Context) (map[string]interface{}, error) {
		return signingKeys.fetchSigningKeys(ctx, a.client)
	}

	keys, err := a.cache.fetch(ctx, signingKeys.cacheKey(), false, fetchFn)
	if err != nil {
		return nil, err
	}
	if key, ok := lookupKey(keys, t); ok {
		return key, nil
	}

	// The kid may belong to a key rotated in after the last fetch.
	keys, err = a.cache.fetch(ctx, signingKeys.cacheKey(), true, fetchFn)
	if err != nil {
		return nil, err
	}
	if key, ok := lookupKey(keys, t); ok {
		return key, nil
	}
	return nil, fmt.Errorf("no signing key found for kid '%v'", t.Header["kid"])
}

func lookupKey(keys map[string]interface{}, t *jwt.Token) (interface{}, bool) {
	kid, _ := t.Header["kid"].(string)
	if kid != "" {
		key, ok := keys[kid]
		return key, ok
	}
	// Tokens without a kid are acceptable only against a single-key set.
	if len(keys) == 1 {
		for _, key := range keys {
			return key, true
		}
	}
	return nil, false
}

// resolveLogin determines the authenticated login. An identity extracted
// from the token takes precedence over the username in the request URL.
func resolveLogin(cfg *settings, claims jwt.MapClaims, urlUsername string) (string, error) {
	tokenIdentity := ""
	if cfg.tokenAppProperty != "" {
		path, err := ParseClaimPath(cfg.tokenAppProperty)
		if err != nil {
			return "", err
		}
		value, ok := ExtractClaim(claims, path)
		identity, isString := value.(string)
		if !ok || !isString || identity == "" {
			return "", &TokenClaimNotFoundOrEmptyError{Claim: cfg.tokenAppProperty}
		}
		if cfg.identityPath != "" {
			identity = strings.Trim(cfg.identityPath, "/") + "/" + identity
		}
		tokenIdentity = "host/" + identity
	}
	return authenticator.ResolveIdentity(tokenIdentity, urlUsername)
}

// validateRestrictions checks the host's authn-jwt annotations against the
// verified claims. Every annotated restriction must name a non-reserved
// claim and match the token's value for it exactly.
func (a *Authenticator) validateRestrictions(roleID string, claims jwt.MapClaims, serviceID string) error {
	exists, err := a.roles.RoleExists(roleID)
	if err != nil {
		return err
	}
	if !exists {
		return &security.RoleNotDefinedError{RoleID: roleID}
	}

	annotations, err := a.roles.RoleAnnotations(roleID)
	if err != nil {
		return err
	}
	present := restrictions.FromAnnotations(annotations, AuthenticatorName, serviceID)
	if len(present) == 0 {
		return &restrictions.RoleMissingConstraintsError{}
	}

	permitted := make([]string, 0, len(present))
	for _, restriction := range present {
		if _, reserved := reservedClaims[restriction.Type]; reserved {
			return &restrictions.ConstraintNotSupportedError{Type: restriction.Type, Permitted: permitted}
		}
		permitted = append(permitted, restriction.Type)
	}

	return restrictions.Validate(present, permitted, func(restrictionType string) (string, bool) {
		path, err := ParseClaimPath(restrictionType)
		if err != nil {
			return "", false
		}
		value, ok := ExtractClaim(claims, path)
		if !ok {
			return "", false
		}
		return stringifyClaim(value), true
	})
}

// validateTokenFormat rejects credentials that are not three non-empty
// base64url segments before any cryptographic work happens.
func validateTokenFormat(token string) error {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return &InvalidTokenFormatError{}
	}
	for _, segment := range segments {
		if segment == "" {
			return &InvalidTokenFormatError{}
		}
		if _, err := jwt.NewParser().DecodeSegment(segment); err != nil {
			return &InvalidTokenFormatError{}
		}
	}
	return nil
}

func containsAudience(audience jwt.ClaimStrings, expected string) bool {
	for _, aud := range audience {
		if aud == expected {
			return true
		}
	}
	return false
}

func stringifyClaim(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; integral values print without
		// a fraction so they compare cleanly against annotation text.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
