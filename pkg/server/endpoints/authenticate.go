package endpoints

import (
	"crypto/subtle"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server"
)

const acceptEncoding = "Accept-Encoding"

// RegisterAuthenticateEndpoints registers the authenticate routes. Every
// installed authenticator is served by the same handler; the strategy
// resolves the plugin from the URL.
func RegisterAuthenticateEndpoints(s *server.Server) {
	// POST /{authenticator}/{account}/{login}/authenticate
	s.Router.HandleFunc(
		"/{authenticator}/{account}/{login}/authenticate",
		handleAuthenticate(s),
	).Methods("POST")

	// POST /{authenticator}/{service_id}/{account}/{login}/authenticate
	s.Router.HandleFunc(
		"/{authenticator}/{service_id}/{account}/{login}/authenticate",
		handleAuthenticate(s),
	).Methods("POST")

	// GET /authn/{account}/login - Basic auth login, returns the API key
	s.Router.HandleFunc("/authn/{account}/login", handleLogin(s)).Methods("GET")
}

func handleAuthenticate(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credentials, err := io.ReadAll(r.Body)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		vars := mux.Vars(r)
		login, err := url.PathUnescape(vars["login"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		input := authentication.AuthenticatorInput{
			AuthenticatorName: vars["authenticator"],
			ServiceID:         vars["service_id"],
			Account:           vars["account"],
			Username:          login,
			Credentials:       credentials,
			ClientIP:          clientIP(r, s.Config),
			Request:           r,
		}

		accessToken, err := s.Strategy.Authenticate(r.Context(), input)
		if err != nil {
			// The precise cause is audited; the response does not reveal it.
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		writeToken(w, r, accessToken)
	}
}

// writeToken writes the access token, base64-wrapped when the client asks
// for it through Accept-Encoding.
func writeToken(w http.ResponseWriter, r *http.Request, accessToken []byte) {
	for _, enc := range strings.Split(r.Header.Get(acceptEncoding), ",") {
		if strings.TrimSpace(enc) == "base64" {
			w.Header().Add("Content-Encoding", "base64")
			encoder := base64.NewEncoder(base64.StdEncoding.Strict(), w)
			_, _ = encoder.Write(accessToken)
			_ = encoder.Close()
			return
		}
	}

	w.Header().Add("Content-Type", "application/json")
	_, _ = w.Write(accessToken)
}

func handleLogin(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := mux.Vars(r)["account"]

		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="Conjur"`)
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}

		roleID := authentication.RoleIDFromLogin(account, username)
		credential, err := s.Credentials.FetchCredential(roleID)
		if err != nil || credential == nil || len(credential.ApiKey) == 0 {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		if subtle.ConstantTimeCompare(credential.ApiKey, []byte(password)) != 1 {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write(credential.ApiKey)
	}
}
