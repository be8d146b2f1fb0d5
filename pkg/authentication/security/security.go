// Package security implements the generic validation chain every
// authenticator request passes through before any credential is examined:
// account existence, webservice whitelisting, webservice existence, and
// role authorization.
package security

import (
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
)

// Role is the capability the validators require of a resolved role.
type Role interface {
	// AllowedTo checks whether the role holds a privilege on a resource.
	AllowedTo(privilege authentication.Privilege, resourceID string) (bool, error)
}

// RoleGateway resolves roles. Implementations must perform a fresh lookup
// on every call; the same role id may resolve differently between two
// calls within one request if underlying state changed.
type RoleGateway interface {
	// FindRole returns (nil, nil) when the role does not exist.
	FindRole(roleID string) (Role, error)
}

// ResourceGateway resolves resources. Same freshness rule as RoleGateway.
type ResourceGateway interface {
	// ResourceExists reports whether a resource with the given id exists.
	ResourceExists(resourceID string) (bool, error)
}

// Security composes the four validators in the authenticate-path order.
type Security struct {
	roles     RoleGateway
	resources ResourceGateway
}

var _ authentication.SecurityValidator = (*Security)(nil)

// New builds the composite validator.
func New(roles RoleGateway, resources ResourceGateway) *Security {
	return &Security{roles: roles, resources: resources}
}

// Validate runs the authenticate-path chain: account exists, webservice is
// whitelisted, webservice exists, role can authenticate to it. The
// whitelist check runs before any webservice resource or user role lookup,
// so an administratively disabled authenticator is rejected cheaply.
func (s *Security) Validate(req authentication.AccessRequest) error {
	if err := s.ValidateAccountExists(req.Webservice.Account); err != nil {
		return err
	}
	if err := s.ValidateWebserviceIsWhitelisted(req.Webservice, req.Webservice.Account, req.WhitelistedWebservices); err != nil {
		return err
	}
	if err := s.ValidateWebserviceExists(req.Webservice, req.Webservice.Account); err != nil {
		return err
	}
	return s.ValidateRoleCanAccessWebservice(
		req.Webservice, req.Webservice.Account, req.UserID, authentication.PrivilegeAuthenticate,
	)
}
