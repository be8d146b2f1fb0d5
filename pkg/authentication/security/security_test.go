package security

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
)

type fakeRole struct {
	allowed map[string]bool
	err     error
}

func (r *fakeRole) AllowedTo(privilege authentication.Privilege, resourceID string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.allowed[privilege.String()+" "+resourceID], nil
}

type fakeRoles struct {
	roles map[string]*fakeRole
	err   error

	lookups []string
}

func (g *fakeRoles) FindRole(roleID string) (Role, error) {
	g.lookups = append(g.lookups, roleID)
	if g.err != nil {
		return nil, g.err
	}
	role, ok := g.roles[roleID]
	if !ok {
		return nil, nil
	}
	return role, nil
}

type fakeResources struct {
	existing map[string]bool
	err      error

	lookups []string
}

func (g *fakeResources) ResourceExists(resourceID string) (bool, error) {
	g.lookups = append(g.lookups, resourceID)
	if g.err != nil {
		return false, g.err
	}
	return g.existing[resourceID], nil
}

const jwtProdResource = "cucumber:webservice:conjur/authn-jwt/prod"

// provisionedGateways returns gateways for an account with an admin role, a
// user allowed to authenticate with authn-jwt/prod, and that webservice.
func provisionedGateways() (*fakeRoles, *fakeResources) {
	roles := &fakeRoles{roles: map[string]*fakeRole{
		"cucumber:user:admin": {},
		"cucumber:user:alice": {allowed: map[string]bool{
			"authenticate " + jwtProdResource: true,
		}},
	}}
	resources := &fakeResources{existing: map[string]bool{
		jwtProdResource: true,
	}}
	return roles, resources
}

func accessRequest(enabled string) authentication.AccessRequest {
	return authentication.AccessRequest{
		Webservice:             authentication.WebserviceFromString("cucumber", "authn-jwt/prod"),
		WhitelistedWebservices: authentication.WebservicesFromString("cucumber", enabled),
		UserID:                 "alice",
	}
}

func TestValidatePasses(t *testing.T) {
	roles, resources := provisionedGateways()
	security := New(roles, resources)

	err := security.Validate(accessRequest("authn-jwt/prod"))

	require.NoError(t, err)
}

func TestValidateAccountNotDefined(t *testing.T) {
	security := New(&fakeRoles{roles: map[string]*fakeRole{}}, &fakeResources{})

	err := security.Validate(accessRequest("authn-jwt/prod"))

	var notDefined *AccountNotDefinedError
	require.ErrorAs(t, err, &notDefined)
	assert.Equal(t, "cucumber", notDefined.Account)
}

func TestValidateNotWhitelisted(t *testing.T) {
	roles, resources := provisionedGateways()
	security := New(roles, resources)

	err := security.Validate(accessRequest("authn-gcp"))

	var notWhitelisted *NotWhitelistedError
	require.ErrorAs(t, err, &notWhitelisted)
	assert.Equal(t, "authn-jwt/prod", notWhitelisted.ServiceName)

	// The rejection happens before any webservice or user role lookup:
	// only the account's admin role was resolved.
	assert.Empty(t, resources.lookups)
	assert.Equal(t, []string{"cucumber:user:admin"}, roles.lookups)
}

func TestValidateDefaultAuthenticatorAlwaysWhitelisted(t *testing.T) {
	roles := &fakeRoles{roles: map[string]*fakeRole{
		"cucumber:user:admin": {},
		"cucumber:user:alice": {allowed: map[string]bool{
			"authenticate cucumber:webservice:conjur/authn": true,
		}},
	}}
	resources := &fakeResources{existing: map[string]bool{
		"cucumber:webservice:conjur/authn": true,
	}}
	security := New(roles, resources)

	// authn is not in the configured whitelist, but passes anyway.
	req := authentication.AccessRequest{
		Webservice:             authentication.DefaultWebservice("cucumber"),
		WhitelistedWebservices: authentication.WebservicesFromString("cucumber", "authn-gcp"),
		UserID:                 "alice",
	}
	require.NoError(t, security.Validate(req))
}

func TestValidateWebserviceNotDefined(t *testing.T) {
	roles, resources := provisionedGateways()
	delete(resources.existing, jwtProdResource)
	security := New(roles, resources)

	err := security.Validate(accessRequest("authn-jwt/prod"))

	var notDefined *ServiceNotDefinedError
	require.ErrorAs(t, err, &notDefined)
	assert.Equal(t, "authn-jwt/prod", notDefined.ServiceName)
}

func TestValidateRoleNotDefined(t *testing.T) {
	roles, resources := provisionedGateways()
	delete(roles.roles, "cucumber:user:alice")
	security := New(roles, resources)

	err := security.Validate(accessRequest("authn-jwt/prod"))

	var notDefined *RoleNotDefinedError
	require.ErrorAs(t, err, &notDefined)
	assert.Equal(t, "cucumber:user:alice", notDefined.RoleID)
}

func TestValidateRoleNotAuthorized(t *testing.T) {
	roles, resources := provisionedGateways()
	roles.roles["cucumber:user:alice"].allowed = nil
	security := New(roles, resources)

	err := security.Validate(accessRequest("authn-jwt/prod"))

	var notAuthorized *RoleNotAuthorizedError
	require.ErrorAs(t, err, &notAuthorized)
	assert.Equal(t, "cucumber:user:alice", notAuthorized.RoleID)
	assert.Equal(t, "authenticate", notAuthorized.Privilege)
	assert.Equal(t, jwtProdResource, notAuthorized.Resource)
}

func TestValidateGatewayErrorPropagates(t *testing.T) {
	gatewayErr := errors.New("connection refused")
	security := New(&fakeRoles{err: gatewayErr}, &fakeResources{})

	err := security.Validate(accessRequest("authn-jwt/prod"))

	assert.ErrorIs(t, err, gatewayErr)
}

func TestValidateLooksUpRolesFresh(t *testing.T) {
	roles, resources := provisionedGateways()
	security := New(roles, resources)

	require.NoError(t, security.Validate(accessRequest("authn-jwt/prod")))
	require.NoError(t, security.Validate(accessRequest("authn-jwt/prod")))

	// Each Validate resolves the admin role (twice: account check and
	// webservice-exists re-check) and the user role, with no caching
	// between runs.
	admin, user := 0, 0
	for _, id := range roles.lookups {
		switch id {
		case "cucumber:user:admin":
			admin++
		case "cucumber:user:alice":
			user++
		}
	}
	assert.Equal(t, 4, admin)
	assert.Equal(t, 2, user)
}

func TestValidateRoleCanAccessWebserviceWithHostLogin(t *testing.T) {
	roles := &fakeRoles{roles: map[string]*fakeRole{
		"cucumber:host:my-vm": {allowed: map[string]bool{
			"read cucumber:webservice:conjur/authn-gcp/status": true,
		}},
	}}
	security := New(roles, &fakeResources{})

	ws := authentication.WebserviceFromString("cucumber", "authn-gcp").StatusWebservice()
	err := security.ValidateRoleCanAccessWebservice(ws, "cucumber", "host/my-vm", authentication.PrivilegeRead)

	require.NoError(t, err)
}

func TestValidateAccountExists(t *testing.T) {
	roles, resources := provisionedGateways()
	security := New(roles, resources)

	assert.NoError(t, security.ValidateAccountExists("cucumber"))

	err := security.ValidateAccountExists("missing")
	var notDefined *AccountNotDefinedError
	assert.ErrorAs(t, err, &notDefined)
}

func TestValidateWebserviceExistsChecksAccountFirst(t *testing.T) {
	roles, resources := provisionedGateways()
	security := New(roles, resources)

	ws := authentication.WebserviceFromString("missing", "authn-jwt/prod")
	err := security.ValidateWebserviceExists(ws, "missing")

	// A missing account surfaces as such, not as a missing webservice.
	var notDefined *AccountNotDefinedError
	require.ErrorAs(t, err, &notDefined)
	assert.Empty(t, resources.lookups)
}
