package authentication

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebserviceFromString(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Webservice
	}{
		{
			name:     "bare authenticator",
			input:    "authn-gcp",
			expected: Webservice{Account: "cucumber", AuthenticatorName: "authn-gcp"},
		},
		{
			name:     "authenticator with service id",
			input:    "authn-jwt/prod",
			expected: Webservice{Account: "cucumber", AuthenticatorName: "authn-jwt", ServiceID: "prod"},
		},
		{
			name:     "service id with nested path",
			input:    "authn-jwt/prod/eu-west",
			expected: Webservice{Account: "cucumber", AuthenticatorName: "authn-jwt", ServiceID: "prod/eu-west"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, WebserviceFromString("cucumber", tc.input))
		})
	}
}

func TestWebserviceName(t *testing.T) {
	assert.Equal(t, "authn", DefaultWebservice("cucumber").Name())
	assert.Equal(t, "authn-jwt/prod", WebserviceFromString("cucumber", "authn-jwt/prod").Name())
}

func TestWebserviceResourceID(t *testing.T) {
	ws := WebserviceFromString("cucumber", "authn-jwt/prod")
	assert.Equal(t, "cucumber:webservice:conjur/authn-jwt/prod", ws.ResourceID())

	assert.Equal(t, "cucumber:webservice:conjur/authn", DefaultWebservice("cucumber").ResourceID())
}

func TestWebserviceStatusWebservice(t *testing.T) {
	ws := WebserviceFromString("cucumber", "authn-jwt/prod").StatusWebservice()
	assert.Equal(t, "authn-jwt/prod/status", ws.Name())
	assert.Equal(t, "cucumber:webservice:conjur/authn-jwt/prod/status", ws.ResourceID())

	bare := WebserviceFromString("cucumber", "authn-gcp").StatusWebservice()
	assert.Equal(t, "authn-gcp/status", bare.Name())
}

func TestWebserviceDefault(t *testing.T) {
	assert.True(t, DefaultWebservice("cucumber").Default())
	assert.False(t, WebserviceFromString("cucumber", "authn-jwt/prod").Default())
	// A service-qualified "authn" instance is not the default authenticator.
	assert.False(t, WebserviceFromString("cucumber", "authn/special").Default())
}

func TestWebservicesFromString(t *testing.T) {
	ws := WebservicesFromString("cucumber", "authn-jwt/prod, authn-gcp , authn-oidc/keycloak")

	assert.True(t, ws.Include(Webservice{Account: "cucumber", AuthenticatorName: "authn-jwt", ServiceID: "prod"}))
	assert.True(t, ws.Include(Webservice{Account: "cucumber", AuthenticatorName: "authn-gcp"}))
	assert.True(t, ws.Include(Webservice{Account: "cucumber", AuthenticatorName: "authn-oidc", ServiceID: "keycloak"}))
	assert.False(t, ws.Include(Webservice{Account: "cucumber", AuthenticatorName: "authn-jwt", ServiceID: "staging"}))
	assert.False(t, ws.Include(Webservice{Account: "other", AuthenticatorName: "authn-gcp"}))

	// The default authenticator is always present.
	assert.True(t, ws.Include(DefaultWebservice("cucumber")))
}

func TestWebservicesFromEmptyString(t *testing.T) {
	ws := WebservicesFromString("cucumber", "")

	assert.Equal(t, []string{"authn"}, ws.Names())
}

func TestWebservicesNames(t *testing.T) {
	ws := WebservicesFromString("cucumber", "authn-jwt/prod,authn-gcp")

	assert.Equal(t, []string{"authn-jwt/prod", "authn-gcp", "authn"}, ws.Names())
}
