package endpoints

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/identity"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server"
)

// AuthenticatorsResponse is the payload of GET /authenticators.
type AuthenticatorsResponse struct {
	Installed []string `json:"installed"`
	Enabled   []string `json:"enabled"`
}

// RegisterStatusEndpoints registers the health and status routes. The
// per-authenticator status route requires an access token; whether the
// caller may see the result is decided by the status pipeline itself.
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/", handleInfo()).Methods("GET")
	s.Router.HandleFunc("/health", handleHealth(s)).Methods("GET")
	s.Router.HandleFunc("/authenticators", handleAuthenticators(s)).Methods("GET")

	authenticatorStatus := s.TokenAuth.Middleware(handleAuthenticatorStatus(s))
	s.Router.Handle("/{authenticator}/{account}/status", authenticatorStatus).Methods("GET")
	s.Router.Handle("/{authenticator}/{service_id}/{account}/status", authenticatorStatus).Methods("GET")
}

func handleInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("CONJUR_VERSION_DISPLAY")
		if version == "" {
			version = "0.1.0"
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"version": version})
	}
}

func handleHealth(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.HealthStore.Ping(); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "error",
				"error":  err.Error(),
			})
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleAuthenticators(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, AuthenticatorsResponse{
			Installed: s.Registry.Installed(),
			Enabled:   s.Config.Authenticators,
		})
	}
}

func handleAuthenticatorStatus(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := identity.Get(r.Context())
		if !ok {
			http.Error(w, "Authorization missing", http.StatusUnauthorized)
			return
		}

		vars := mux.Vars(r)
		input := authentication.AuthenticatorStatusInput{
			AuthenticatorName: vars["authenticator"],
			ServiceID:         vars["service_id"],
			Account:           vars["account"],
			Username:          caller.Login,
			ClientIP:          clientIP(r, s.Config),
			Request:           r,
		}

		if err := s.Status.Validate(r.Context(), input); err != nil {
			respondWithJSON(w, statusHTTPCode(err), map[string]string{
				"status": "error",
				"error":  err.Error(),
			})
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
