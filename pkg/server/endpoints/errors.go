package endpoints

import (
	"errors"
	"net/http"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication/security"
)

// statusHTTPCode maps a status-path failure to an HTTP status. Status
// checks are diagnostic, so the cause is reported rather than hidden:
// configuration targets that do not exist map to 404, denied access to
// 403, a missing status capability to 501, and anything else to 500.
func statusHTTPCode(err error) int {
	var (
		accountNotDefined *security.AccountNotDefinedError
		serviceNotDefined *security.ServiceNotDefinedError
		notWhitelisted    *security.NotWhitelistedError
		roleNotDefined    *security.RoleNotDefinedError
		roleNotAuthorized *security.RoleNotAuthorizedError
		notFound          *authentication.AuthenticatorNotFoundError
		notImplemented    *authentication.StatusNotImplementedError
		serviceIDMissing  *authentication.ServiceIDMissingError
	)

	switch {
	case errors.As(err, &notImplemented):
		return http.StatusNotImplemented
	case errors.As(err, &notFound),
		errors.As(err, &accountNotDefined),
		errors.As(err, &serviceNotDefined):
		return http.StatusNotFound
	case errors.As(err, &notWhitelisted),
		errors.As(err, &roleNotDefined),
		errors.As(err, &roleNotAuthorized):
		return http.StatusForbidden
	case errors.As(err, &serviceIDMissing):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
