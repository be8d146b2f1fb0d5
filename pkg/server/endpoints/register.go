package endpoints

import (
	"github.com/doodlesbykumbi/conjur-authn/pkg/server"
)

// RegisterAll registers every endpoint on the server's router. Fixed
// routes are registered before the parameterized authenticator routes so
// they keep priority.
func RegisterAll(s *server.Server) {
	RegisterStatusEndpoints(s)
	RegisterLoginEndpoints(s)
	RegisterAuthenticateEndpoints(s)
}
