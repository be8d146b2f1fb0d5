// Package authenticator holds the registry of authenticator plugins and
// the helpers shared by concrete implementations.
//
// Each authenticator implements authentication.Authenticator; the optional
// status and login capabilities are separate interfaces discovered by type
// assertion. Concrete implementations live in subpackages:
//
//   - authn: API key authentication (the always-available default)
//   - authnjwt: JWT authentication with multi-source signing key resolution
//   - authngcp: GCP instance identity token authentication
//   - authnoidc: OIDC id-token authentication (also a login provider)
//
// Instance configuration (provider-uri, issuer, token-app-property, ...)
// is read from Conjur variables under
// <account>:variable:conjur/<authenticator>/<service-id>/ through the
// Secrets capability.
package authenticator
