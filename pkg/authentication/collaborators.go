package authentication

import "github.com/doodlesbykumbi/conjur-authn/pkg/audit"

// SecurityValidator is the generic security gate shared by every
// authenticator. The composite Validate runs the authenticate-path chain;
// the granular methods are used by the status path, which gates on the
// status sub-resource instead. Implemented by security.Security.
type SecurityValidator interface {
	Validate(req AccessRequest) error
	ValidateAccountExists(account string) error
	ValidateWebserviceIsWhitelisted(webservice Webservice, account string, whitelist Webservices) error
	ValidateRoleCanAccessWebservice(webservice Webservice, account string, userID string, privilege Privilege) error
	ValidateWebserviceExists(webservice Webservice, account string) error
}

// TokenFactory issues a signed access token for a resolved identity. The
// signing internals are opaque to this package.
type TokenFactory interface {
	SignedToken(account string, login string) ([]byte, error)
}

// OriginValidator checks the client IP against the role's configured
// network restrictions.
type OriginValidator interface {
	ValidateOrigin(account string, username string, clientIP string) error
}

// AuditLogger receives exactly one event per terminal authentication or
// status outcome.
type AuditLogger interface {
	Log(event audit.Event)
}

// EnabledAuthenticatorsSource yields the current whitelist configuration
// string for an account, merged from the environment and any persisted
// per-account records. Consulted fresh on every request; a configuration
// change takes effect on the next call.
type EnabledAuthenticatorsSource interface {
	Enabled(account string) (string, error)
}
