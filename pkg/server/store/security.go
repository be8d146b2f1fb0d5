package store

import (
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication/security"
)

// SecurityGateways adapts the roles and resources stores onto the
// gateway interfaces the security validators consume. Every FindRole
// and ResourceExists call hits the store, so validators always observe
// current state.
type SecurityGateways struct {
	Roles     RolesStore
	Resources ResourcesStore
}

var (
	_ security.RoleGateway     = SecurityGateways{}
	_ security.ResourceGateway = SecurityGateways{}
)

func (g SecurityGateways) FindRole(roleID string) (security.Role, error) {
	exists, err := g.Roles.RoleExists(roleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return storedRole{roleID: roleID, roles: g.Roles}, nil
}

func (g SecurityGateways) ResourceExists(resourceID string) (bool, error) {
	return g.Resources.ResourceExists(resourceID)
}

type storedRole struct {
	roleID string
	roles  RolesStore
}

func (r storedRole) AllowedTo(privilege authentication.Privilege, resourceID string) (bool, error) {
	return r.roles.RoleAllowedTo(r.roleID, privilege.String(), resourceID)
}
