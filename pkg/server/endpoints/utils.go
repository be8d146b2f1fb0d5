package endpoints

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/doodlesbykumbi/conjur-authn/pkg/config"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// clientIP resolves the request's client address. X-Forwarded-For is only
// honored when the direct peer is a trusted proxy, in which case the
// left-most untrusted entry wins.
func clientIP(r *http.Request, cfg *config.Config) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" || cfg == nil || !cfg.IsTrustedProxy(peer) {
		return peer
	}

	entries := strings.Split(forwarded, ",")
	for i := len(entries) - 1; i >= 0; i-- {
		entry := strings.TrimSpace(entries[i])
		if entry == "" {
			continue
		}
		if !cfg.IsTrustedProxy(entry) {
			return entry
		}
	}
	return peer
}
