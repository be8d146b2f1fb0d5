package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server"
)

// RegisterLoginEndpoints registers the browser login route for
// authenticators that support a redirect flow.
func RegisterLoginEndpoints(s *server.Server) {
	// GET /{authenticator}/{service_id}/{account}/login
	s.Router.HandleFunc(
		"/{authenticator}/{service_id}/{account}/login",
		handleLoginURI(s),
	).Methods("GET")
}

func handleLoginURI(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		authenticator, ok := s.Registry.Lookup(vars["authenticator"], vars["service_id"])
		if !ok {
			respondWithError(w, http.StatusNotFound, "authenticator not found")
			return
		}

		provider, ok := authenticator.(authentication.LoginProvider)
		if !ok {
			respondWithError(w, http.StatusNotFound, "authenticator does not support login")
			return
		}

		loginURI, err := provider.LoginURI(r.Context(), vars["account"])
		if err != nil {
			respondWithError(w, http.StatusBadGateway, err.Error())
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]string{"login_uri": loginURI})
	}
}
