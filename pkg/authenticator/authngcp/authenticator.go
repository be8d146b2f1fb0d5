// Package authngcp authenticates Google Cloud workloads with the identity
// tokens issued by the GCE metadata service. The token audience names the
// Conjur host it authenticates, and the host's authn-gcp annotations are
// matched against the verified claims.
package authngcp

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication/restrictions"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication/security"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authenticator/authnjwt"
)

// AuthenticatorName is the registry name of the GCP authenticator.
const AuthenticatorName = "authn-gcp"

const audiencePrefix = "conjur/"

// permittedConstraints are the only restriction types authn-gcp accepts.
var permittedConstraints = []string{
	"instance-name",
	"project-id",
	"service-account-email",
	"service-account-id",
}

// claimAliases maps each restriction type to the claim path that carries
// its value in a full-format GCE identity token.
var claimAliases = map[string]string{
	"project-id":            "google/compute_engine/project_id",
	"instance-name":         "google/compute_engine/instance_name",
	"service-account-id":    "sub",
	"service-account-email": "email",
}

// TokenVerifier checks a GCE identity token's signature and registered
// claims and returns its payload.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (jwt.MapClaims, error)
}

// Roles looks up host roles and their annotations for restriction checks.
type Roles interface {
	RoleExists(roleID string) (bool, error)
	RoleAnnotations(roleID string) (map[string]string, error)
}

// Authenticator implements authn-gcp. Unlike authn-jwt it is not
// service-scoped: there is exactly one instance per account and no
// per-service configuration variables.
type Authenticator struct {
	verifier TokenVerifier
	roles    Roles
}

func New(verifier TokenVerifier, roles Roles) *Authenticator {
	return &Authenticator{verifier: verifier, roles: roles}
}

func (a *Authenticator) Name() string { return AuthenticatorName }

// Authenticate verifies the identity token and returns the id of the host
// role named by its audience.
func (a *Authenticator) Authenticate(ctx context.Context, input authentication.AuthenticatorInput) (string, error) {
	token := strings.TrimSpace(string(input.Credentials))
	if token == "" {
		return "", &authentication.InvalidCredentialsError{}
	}

	claims, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return "", err
	}

	login, err := loginFromAudience(claims, input.Account)
	if err != nil {
		return "", err
	}
	roleID := authentication.RoleIDFromLogin(input.Account, login)

	if err := a.validateRestrictions(roleID, claims); err != nil {
		return "", err
	}
	return roleID, nil
}

// loginFromAudience extracts the host login from the token audience, which
// must have the form conjur/<account>/<host-login>.
func loginFromAudience(claims jwt.MapClaims, account string) (string, error) {
	audience, err := claims.GetAudience()
	if err != nil || len(audience) == 0 {
		return "", &InvalidAudienceError{}
	}

	parts := strings.SplitN(strings.TrimPrefix(audience[0], audiencePrefix), "/", 2)
	if !strings.HasPrefix(audience[0], audiencePrefix) || len(parts) != 2 || parts[1] == "" {
		return "", &InvalidAudienceError{Audience: audience[0]}
	}
	if parts[0] != account {
		return "", &InvalidAccountInAudienceError{Account: parts[0]}
	}
	return parts[1], nil
}

func (a *Authenticator) validateRestrictions(roleID string, claims jwt.MapClaims) error {
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
	present := restrictions.FromAnnotations(annotations, AuthenticatorName, "")

	return restrictions.Validate(present, permittedConstraints, func(restrictionType string) (string, bool) {
		alias, ok := claimAliases[restrictionType]
		if !ok {
			return "", false
		}
		path, err := authnjwt.ParseClaimPath(alias)
		if err != nil {
			return "", false
		}
		value, ok := authnjwt.ExtractClaim(claims, path)
		if !ok {
			return "", false
		}
		text, isString := value.(string)
		return text, isString
	})
}
