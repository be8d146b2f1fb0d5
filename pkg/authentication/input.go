package authentication

// AuthenticatorInput carries everything an authenticator needs to validate
// one request. It is built once at the HTTP boundary and passed down
// unchanged; steps that learn the username from a decoded credential produce
// a copy via WithUsername rather than mutating the original.
type AuthenticatorInput struct {
	AuthenticatorName string
	// ServiceID is empty for the base authenticator.
	ServiceID string
	Account   string
	// Username is the URL-supplied login. May be empty for authenticators
	// that resolve identity from the credential itself.
	Username string
	// Credentials is the raw credential material: an API key, a JWT, or the
	// request body, depending on the authenticator.
	Credentials []byte
	ClientIP    string
	// Request is the raw transport request, opaque to the core. Only
	// authenticators that need access to headers or TLS state inspect it.
	Request interface{}
}

// WithUsername returns a copy of the input with the username replaced.
func (in AuthenticatorInput) WithUsername(username string) AuthenticatorInput {
	in.Username = username
	return in
}

// Webservice returns the webservice addressed by this request.
func (in AuthenticatorInput) Webservice() Webservice {
	return Webservice{
		Account:           in.Account,
		AuthenticatorName: in.AuthenticatorName,
		ServiceID:         in.ServiceID,
	}
}

// ToAccessRequest derives the AccessRequest evaluated by the security
// validator chain. enabledAuthenticators is the raw configuration string
// (comma-separated combined names).
func (in AuthenticatorInput) ToAccessRequest(enabledAuthenticators string) AccessRequest {
	return AccessRequest{
		Webservice:             in.Webservice(),
		WhitelistedWebservices: WebservicesFromString(in.Account, enabledAuthenticators),
		UserID:                 in.Username,
	}
}

// AccessRequest is the value the security validator chain operates on. It
// has no lifecycle beyond a single validation pass.
type AccessRequest struct {
	Webservice             Webservice
	WhitelistedWebservices Webservices
	UserID                 string
}

// AuthenticatorStatusInput is the sibling of AuthenticatorInput used by the
// status (health check) path.
type AuthenticatorStatusInput struct {
	AuthenticatorName string
	ServiceID         string
	Account           string
	// Username identifies the role requesting the status check, resolved
	// from the caller's access token at the HTTP boundary.
	Username string
	ClientIP string
	Request  interface{}
}

// Webservice returns the authenticator webservice being health-checked.
func (in AuthenticatorStatusInput) Webservice() Webservice {
	return Webservice{
		Account:           in.Account,
		AuthenticatorName: in.AuthenticatorName,
		ServiceID:         in.ServiceID,
	}
}

// StatusWebservice returns the ".../status" sub-resource that gates access
// to the status check itself, independently from authenticate access.
func (in AuthenticatorStatusInput) StatusWebservice() Webservice {
	return in.Webservice().StatusWebservice()
}
