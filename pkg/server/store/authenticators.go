package store

// AuthenticatorsStore reads the persisted authenticator enablement
// state for an account.
type AuthenticatorsStore interface {
	// PersistedEnabledAuthenticators returns the names of the
	// authenticator webservices flagged enabled for the account, e.g.
	// "authn-jwt/prod".
	PersistedEnabledAuthenticators(account string) ([]string, error)
}
