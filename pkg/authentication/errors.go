package authentication

import "fmt"

// Errors raised by the orchestrators themselves. Validator- and
// authenticator-specific errors live in the packages that raise them; the
// orchestrators propagate every error unchanged so the HTTP layer can map
// each kind to a precise status code and the audit sink can record the
// exact cause.

// AuthenticatorNotFoundError reports a request for an authenticator that is
// not in the registry. Terminal; never retried.
type AuthenticatorNotFoundError struct {
	Name string
}

func (e *AuthenticatorNotFoundError) Error() string {
	return fmt.Sprintf("'%s' wasn't in the available authenticators", e.Name)
}

// InvalidCredentialsError reports that an authenticator rejected the
// supplied credentials without a more specific cause.
type InvalidCredentialsError struct{}

func (e *InvalidCredentialsError) Error() string {
	return "invalid credentials"
}

// InvalidOriginError reports that the client IP is outside the role's
// configured CIDR restrictions.
type InvalidOriginError struct {
	ClientIP string
}

func (e *InvalidOriginError) Error() string {
	return fmt.Sprintf("'%s' is not in the list of allowed origins", e.ClientIP)
}

// ServiceIDMissingError reports a status check addressed without a service
// id. Status checks are meaningless for the implicit default authenticator.
type ServiceIDMissingError struct {
	AuthenticatorName string
}

func (e *ServiceIDMissingError) Error() string {
	return fmt.Sprintf("service id is missing from the status request for '%s'", e.AuthenticatorName)
}

// StatusNotImplementedError reports that an authenticator does not provide
// a status capability. This is a first-class outcome, not a plugin defect.
type StatusNotImplementedError struct {
	Name string
}

func (e *StatusNotImplementedError) Error() string {
	return fmt.Sprintf("status check not implemented for authenticator '%s'", e.Name)
}
