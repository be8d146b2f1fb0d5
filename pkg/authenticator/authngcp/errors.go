package authngcp

import "fmt"

// InvalidAudienceError reports a token audience that is not of the form
// conjur/<account>/<host-login>.
type InvalidAudienceError struct {
	Audience string
}

func (e *InvalidAudienceError) Error() string {
	return fmt.Sprintf("token audience '%s' does not have the form conjur/<account>/<host-login>", e.Audience)
}

// InvalidAccountInAudienceError reports a token whose audience names a
// different account than the one being authenticated against.
type InvalidAccountInAudienceError struct {
	Account string
}

func (e *InvalidAccountInAudienceError) Error() string {
	return fmt.Sprintf("token audience is scoped to account '%s', not the requested account", e.Account)
}
