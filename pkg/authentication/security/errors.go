package security

import "fmt"

// AccountNotDefinedError reports an account with no admin role. An account
// exists exactly when it has been provisioned with its admin role; there is
// no separate account table.
type AccountNotDefinedError struct {
	Account string
}

func (e *AccountNotDefinedError) Error() string {
	return fmt.Sprintf("account '%s' is not defined in Conjur", e.Account)
}

// ServiceNotDefinedError reports a webservice whose resource does not
// exist.
type ServiceNotDefinedError struct {
	ServiceName string
}

func (e *ServiceNotDefinedError) Error() string {
	return fmt.Sprintf("webservice '%s' is not defined in the Conjur policy", e.ServiceName)
}

// NotWhitelistedError reports a webservice outside the enabled-authenticators
// configuration. Distinct from ServiceNotDefinedError: the resource may
// exist but be administratively disabled.
type NotWhitelistedError struct {
	ServiceName string
}

func (e *NotWhitelistedError) Error() string {
	return fmt.Sprintf("'%s' is not enabled in the list of whitelisted authenticators", e.ServiceName)
}

// RoleNotDefinedError reports a user id with no corresponding role.
type RoleNotDefinedError struct {
	RoleID string
}

func (e *RoleNotDefinedError) Error() string {
	return fmt.Sprintf("role '%s' is not defined in Conjur", e.RoleID)
}

// RoleNotAuthorizedError reports a role that exists but lacks the required
// privilege on the webservice resource.
type RoleNotAuthorizedError struct {
	RoleID    string
	Privilege string
	Resource  string
}

func (e *RoleNotAuthorizedError) Error() string {
	return fmt.Sprintf("role '%s' does not have '%s' privilege on %s", e.RoleID, e.Privilege, e.Resource)
}
