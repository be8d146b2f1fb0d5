package store

import "github.com/doodlesbykumbi/conjur-authn/pkg/model"

// CredentialsStore fetches role credentials. FetchCredential returns
// nil when the role has no stored credential.
type CredentialsStore interface {
	FetchCredential(roleID string) (*model.Credential, error)
}
