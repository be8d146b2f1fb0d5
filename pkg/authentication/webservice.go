package authentication

import "strings"

// DefaultAuthenticatorName is the built-in API key authenticator. It is
// reachable even when CONJUR_AUTHENTICATORS is empty so that a fresh
// deployment can always bootstrap itself.
const DefaultAuthenticatorName = "authn"

// Webservice identifies one authenticator service instance. It is an
// immutable value, constructed fresh for each request.
type Webservice struct {
	Account           string
	AuthenticatorName string
	// ServiceID discriminates between instances of the same authenticator
	// (e.g. authn-jwt/prod vs authn-jwt/ci). Empty for the base authenticator.
	// May itself contain "/".
	ServiceID string
}

// WebserviceFromString splits a combined name on the first "/". The part
// before it is the authenticator name; the remainder, if any, is the
// service id.
func WebserviceFromString(account string, combined string) Webservice {
	name, serviceID, _ := strings.Cut(combined, "/")
	return Webservice{
		Account:           account,
		AuthenticatorName: name,
		ServiceID:         serviceID,
	}
}

// DefaultWebservice returns the base authenticator webservice for an account.
func DefaultWebservice(account string) Webservice {
	return Webservice{Account: account, AuthenticatorName: DefaultAuthenticatorName}
}

// Name returns the combined authenticator-name[/service-id] form.
func (w Webservice) Name() string {
	if w.ServiceID == "" {
		return w.AuthenticatorName
	}
	return w.AuthenticatorName + "/" + w.ServiceID
}

// ResourceID returns the id of the webservice resource that privileges are
// granted on, e.g. "myorg:webservice:conjur/authn-jwt/prod".
func (w Webservice) ResourceID() string {
	return w.Account + ":webservice:conjur/" + w.Name()
}

// StatusWebservice derives the sibling webservice that gates status checks.
// Its resource id is always "<parent resource id>/status".
func (w Webservice) StatusWebservice() Webservice {
	serviceID := "status"
	if w.ServiceID != "" {
		serviceID = w.ServiceID + "/status"
	}
	return Webservice{
		Account:           w.Account,
		AuthenticatorName: w.AuthenticatorName,
		ServiceID:         serviceID,
	}
}

// Default reports whether this is the base authenticator for its account.
func (w Webservice) Default() bool {
	return w.AuthenticatorName == DefaultAuthenticatorName && w.ServiceID == ""
}
