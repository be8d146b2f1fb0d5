package store

import (
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
)

// OriginValidator checks the client IP of a request against the CIDR
// restrictions stored on the role's credential. Roles without a stored
// credential, and credentials without restrictions, accept any origin.
type OriginValidator struct {
	Credentials CredentialsStore
}

var _ authentication.OriginValidator = OriginValidator{}

func (v OriginValidator) ValidateOrigin(account string, username string, clientIP string) error {
	roleID := authentication.RoleIDFromLogin(account, username)
	credential, err := v.Credentials.FetchCredential(roleID)
	if err != nil {
		return err
	}
	if credential == nil {
		return nil
	}
	if !credential.ValidOrigin(clientIP) {
		return &authentication.InvalidOriginError{ClientIP: clientIP}
	}
	return nil
}
