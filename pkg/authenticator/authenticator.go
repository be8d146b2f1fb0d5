package authenticator

import (
	"sort"
	"strings"
	"sync"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
)

// Registry maps authenticator names to plugin instances. Native
// authenticators are registered at startup; dynamically configured variants
// (e.g. one authn-jwt instance per service id) are registered as they are
// built, and a later registration with the same name overrides an earlier
// one.
type Registry struct {
	mu             sync.RWMutex
	authenticators map[string]authentication.Authenticator
}

var _ authentication.Authenticators = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{authenticators: make(map[string]authentication.Authenticator)}
}

// Register adds an authenticator under its own Name.
func (r *Registry) Register(authenticator authentication.Authenticator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authenticators[authenticator.Name()] = authenticator
}

// Lookup resolves a plugin instance. The fully-qualified "name/serviceID"
// entry wins over the bare name, so a per-service instance shadows a
// catch-all one.
func (r *Registry) Lookup(name string, serviceID string) (authentication.Authenticator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if serviceID != "" {
		if a, ok := r.authenticators[name+"/"+serviceID]; ok {
			return a, true
		}
	}
	a, ok := r.authenticators[name]
	return a, ok
}

// Installed returns all registered authenticator names, sorted.
func (r *Registry) Installed() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.authenticators))
	for name := range r.authenticators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoginAuthenticators returns the subset of registered authenticators that
// additionally support a browser login flow, sorted.
func (r *Registry) LoginAuthenticators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, a := range r.authenticators {
		if _, ok := a.(authentication.LoginProvider); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// InstalledTypes returns the distinct authenticator types (the part before
// any "/"), sorted.
func (r *Registry) InstalledTypes() []string {
	seen := map[string]struct{}{}
	var types []string
	for _, name := range r.Installed() {
		t, _, _ := strings.Cut(name, "/")
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	return types
}
