package authentication

import "context"

// Authenticator is the contract every authenticator plugin implements.
// Concrete implementations live under pkg/authenticator.
type Authenticator interface {
	// Name returns the authenticator name, optionally qualified by a
	// service id (e.g. "authn", "authn-jwt/prod").
	Name() string

	// Authenticate verifies the request credentials and returns the
	// authenticated role id. Failures are reported as specific typed
	// errors; InvalidCredentialsError is the fallback when no more precise
	// cause exists.
	Authenticate(ctx context.Context, input AuthenticatorInput) (string, error)
}

// StatusProvider is the optional health-check capability. An authenticator
// that does not implement it yields StatusNotImplementedError, which is a
// detectable outcome rather than a defect.
type StatusProvider interface {
	Status(ctx context.Context, input AuthenticatorStatusInput) error
}

// LoginProvider is implemented by authenticators that additionally support
// a browser login / redirect flow (e.g. authn-oidc).
type LoginProvider interface {
	LoginURI(ctx context.Context, account string) (string, error)
}

// Authenticators resolves an authenticator name to a plugin instance.
// Lookup tries the fully-qualified "name/serviceID" entry first and falls
// back to the bare name, so a dynamically configured variant can shadow a
// native one.
type Authenticators interface {
	Lookup(name string, serviceID string) (Authenticator, bool)
}
