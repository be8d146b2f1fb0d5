package authenticator

// ResolveIdentity picks the identity to authenticate as when both a
// decoded-credential identity and a URL-supplied username may be present.
// The decoded credential wins; the URL username is the fallback; neither
// being available is NoRelevantIdentityProviderError.
func ResolveIdentity(tokenIdentity string, urlUsername string) (string, error) {
	if tokenIdentity != "" {
		return tokenIdentity, nil
	}
	if urlUsername != "" {
		return urlUsername, nil
	}
	return "", &NoRelevantIdentityProviderError{}
}

// NoRelevantIdentityProviderError reports that neither the URL nor the
// verified credential yielded an identity.
type NoRelevantIdentityProviderError struct{}

func (e *NoRelevantIdentityProviderError) Error() string {
	return "no relevant identity provider: identity is available neither in the URL nor in the credential"
}
