package middleware

import (
	"encoding/base64"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/doodlesbykumbi/conjur-authn/pkg/identity"
	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo/token"
)

var tokenRegex = regexp.MustCompile(`^Token token="(.*)"`)

// VerifyingKey verifies token signatures and names the account it belongs to.
type VerifyingKey interface {
	Verify(value, signature []byte) error
	Account() string
}

// Keystore resolves verification keys by fingerprint.
type Keystore interface {
	ByFingerprint(fingerprint string) (VerifyingKey, error)
}

// TokenAuthenticator validates Conjur access tokens on incoming requests
// and stores the resolved identity on the request context.
type TokenAuthenticator struct {
	Keystore Keystore
}

func NewTokenAuthenticator(keystore Keystore) *TokenAuthenticator {
	return &TokenAuthenticator{Keystore: keystore}
}

// Middleware rejects requests without a valid access token. The expected
// header shape is `Authorization: Token token="<base64 token>"`.
func (t *TokenAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if len(authHeader) == 0 {
			http.Error(w, "Authorization missing", http.StatusUnauthorized)
			return
		}

		tokenMatches := tokenRegex.FindStringSubmatch(authHeader)
		if len(tokenMatches) != 2 {
			http.Error(w, "Malformed authorization header", http.StatusUnauthorized)
			return
		}

		rawToken, err := base64.URLEncoding.DecodeString(tokenMatches[1])
		if err != nil {
			http.Error(w, "Malformed authorization token", http.StatusUnauthorized)
			return
		}

		authToken, err := token.Parse(rawToken)
		if err != nil {
			http.Error(w, "Malformed authorization token", http.StatusUnauthorized)
			return
		}

		if authToken.Expired() {
			http.Error(w, "Token expired", http.StatusUnauthorized)
			return
		}

		account, verified := authToken.Verify(func(kid string, protected, payload, signature []byte) (string, bool) {
			stringToSign := strings.Join(
				[]string{
					base64.URLEncoding.EncodeToString(protected),
					base64.URLEncoding.EncodeToString(payload),
				},
				".",
			)

			key, err := t.Keystore.ByFingerprint(kid)
			if err != nil {
				return "", false
			}
			if err := key.Verify([]byte(stringToSign), signature); err != nil {
				return "", false
			}

			return key.Account(), true
		})
		if !verified {
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		id := identity.FromToken(authToken, account)
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			id.WithRemoteIP(net.ParseIP(host))
		}

		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}
