package authnjwt

import "fmt"

// RequestBodyMissingTokenError reports a request whose body carries no JWT.
type RequestBodyMissingTokenError struct{}

func (e *RequestBodyMissingTokenError) Error() string {
	return "the request body does not contain a JWT"
}

// InvalidTokenFormatError reports a credential that is not three non-empty
// base64url segments separated by dots.
type InvalidTokenFormatError struct{}

func (e *InvalidTokenFormatError) Error() string {
	return "the JWT is malformed: expected three non-empty dot-separated segments"
}

// TokenClaimNotFoundOrEmptyError reports a configured identity claim that
// the verified token does not carry, or carries empty.
type TokenClaimNotFoundOrEmptyError struct {
	Claim string
}

func (e *TokenClaimNotFoundOrEmptyError) Error() string {
	return fmt.Sprintf("claim '%s' was not found in the token or is empty", e.Claim)
}

// InvalidAudienceError reports an aud claim that does not include the
// configured audience.
type InvalidAudienceError struct {
	Audience string
}

func (e *InvalidAudienceError) Error() string {
	return fmt.Sprintf("the token audience does not match '%s'", e.Audience)
}

// InvalidIssuerConfigurationError reports that no issuer can be determined:
// neither an issuer variable nor a URI to derive one from.
type InvalidIssuerConfigurationError struct{}

func (e *InvalidIssuerConfigurationError) Error() string {
	return "issuer configuration is invalid: no issuer variable and no URI to derive it from"
}

// InvalidIssuerError reports an iss claim that does not match the expected
// issuer.
type InvalidIssuerError struct {
	Issuer string
}

func (e *InvalidIssuerError) Error() string {
	return fmt.Sprintf("the token issuer does not match '%s'", e.Issuer)
}

// InvalidURIFormatError reports a configuration URI that cannot be parsed.
type InvalidURIFormatError struct {
	URI string
}

func (e *InvalidURIFormatError) Error() string {
	return fmt.Sprintf("'%s' is not a valid URI", e.URI)
}

// FailedToParseHostnameError reports a URI with no extractable hostname.
type FailedToParseHostnameError struct {
	URI string
}

func (e *FailedToParseHostnameError) Error() string {
	return fmt.Sprintf("failed to parse hostname from URI '%s'", e.URI)
}
