package authnoidc

import "fmt"

// IDTokenClaimNotFoundOrEmptyError reports an id token that does not carry
// the configured identity claim, or carries it empty.
type IDTokenClaimNotFoundOrEmptyError struct {
	Claim string
}

func (e *IDTokenClaimNotFoundOrEmptyError) Error() string {
	return fmt.Sprintf("claim '%s' was not found in the id token or is empty", e.Claim)
}

// UnknownSigningKeyError reports an id token signed with a key the provider
// does not currently publish.
type UnknownSigningKeyError struct {
	Kid string
}

func (e *UnknownSigningKeyError) Error() string {
	if e.Kid == "" {
		return "the id token names no signing key and the provider publishes more than one"
	}
	return fmt.Sprintf("the provider publishes no signing key with kid '%s'", e.Kid)
}
