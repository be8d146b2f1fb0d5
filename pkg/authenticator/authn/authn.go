// Package authn implements the base API key authenticator. It is always
// installed and, by the whitelist bootstrap rule, always reachable.
package authn

import (
	"context"
	"crypto/subtle"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/model"
)

// Credentials fetches stored role credentials. FetchCredential returns
// nil when the role has none.
type Credentials interface {
	FetchCredential(roleID string) (*model.Credential, error)
}

// Authenticator validates API keys against stored credentials.
type Authenticator struct {
	credentials Credentials
}

// New creates the API key authenticator.
func New(credentials Credentials) *Authenticator {
	return &Authenticator{credentials: credentials}
}

// Name returns "authn".
func (a *Authenticator) Name() string {
	return authentication.DefaultAuthenticatorName
}

// Authenticate verifies the supplied API key and returns the role id.
// Missing roles, missing credentials and mismatched keys all collapse into
// InvalidCredentialsError so the response does not reveal which one failed.
func (a *Authenticator) Authenticate(ctx context.Context, input authentication.AuthenticatorInput) (string, error) {
	if input.Username == "" || len(input.Credentials) == 0 {
		return "", &authentication.InvalidCredentialsError{}
	}

	roleID := authentication.RoleIDFromLogin(input.Account, input.Username)

	credential, err := a.credentials.FetchCredential(roleID)
	if err != nil {
		return "", err
	}
	if credential == nil || len(credential.ApiKey) == 0 {
		return "", &authentication.InvalidCredentialsError{}
	}

	if subtle.ConstantTimeCompare(credential.ApiKey, input.Credentials) != 1 {
		return "", &authentication.InvalidCredentialsError{}
	}

	return roleID, nil
}
