package security

import (
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
)

// ValidateAccountExists checks that the account has been provisioned, i.e.
// its well-known admin role exists.
func (s *Security) ValidateAccountExists(account string) error {
	role, err := s.roles.FindRole(account + ":user:admin")
	if err != nil {
		return err
	}
	if role == nil {
		return &AccountNotDefinedError{Account: account}
	}
	return nil
}

// ValidateWebserviceExists checks that the webservice resource exists. The
// account is validated first; a missing account must not surface as a
// missing service.
func (s *Security) ValidateWebserviceExists(webservice authentication.Webservice, account string) error {
	if err := s.ValidateAccountExists(account); err != nil {
		return err
	}
	exists, err := s.resources.ResourceExists(webservice.ResourceID())
	if err != nil {
		return err
	}
	if !exists {
		return &ServiceNotDefinedError{ServiceName: webservice.Name()}
	}
	return nil
}

// ValidateWebserviceIsWhitelisted tests membership against the configured
// whitelist. The base authenticator for the request's own account is always
// whitelisted regardless of configuration; this is deliberate bootstrap
// behavior so a deployment with no configured authenticators can still
// authenticate with API keys.
func (s *Security) ValidateWebserviceIsWhitelisted(
	webservice authentication.Webservice,
	account string,
	whitelist authentication.Webservices,
) error {
	if webservice.Default() && webservice.Account == account {
		return nil
	}
	if !whitelist.Include(webservice) {
		return &NotWhitelistedError{ServiceName: webservice.Name()}
	}
	return nil
}

// ValidateRoleCanAccessWebservice resolves the user's role and checks it
// holds the privilege on the webservice resource. The role is looked up
// fresh on every call by contract.
func (s *Security) ValidateRoleCanAccessWebservice(
	webservice authentication.Webservice,
	account string,
	userID string,
	privilege authentication.Privilege,
) error {
	roleID := authentication.RoleIDFromLogin(account, userID)

	role, err := s.roles.FindRole(roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return &RoleNotDefinedError{RoleID: roleID}
	}

	allowed, err := role.AllowedTo(privilege, webservice.ResourceID())
	if err != nil {
		return err
	}
	if !allowed {
		return &RoleNotAuthorizedError{
			RoleID:    roleID,
			Privilege: privilege.String(),
			Resource:  webservice.ResourceID(),
		}
	}
	return nil
}
