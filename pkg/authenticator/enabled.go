package authenticator

import (
	"strings"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
)

// ConfigGateway lists the authenticators enabled for an account through
// persisted configuration records (the `authenticator-enable` API), as
// combined "name/service-id" strings.
type ConfigGateway interface {
	PersistedEnabledAuthenticators(account string) ([]string, error)
}

// EnabledSource merges the two whitelist provenances: the environment /
// config file list, shared by all accounts, and the per-account persisted
// records. The base authn authenticator is always part of the result.
type EnabledSource struct {
	fromEnvironment func() string
	store           ConfigGateway
}

var _ authentication.EnabledAuthenticatorsSource = (*EnabledSource)(nil)

// NewEnabledSource builds an EnabledSource. store may be nil when no
// persisted configuration backend is wired (e.g. in tests).
func NewEnabledSource(fromEnvironment func() string, store ConfigGateway) *EnabledSource {
	return &EnabledSource{fromEnvironment: fromEnvironment, store: store}
}

// Enabled returns the merged comma-separated whitelist for an account.
// Environment entries come first so whitelisting messages are stable;
// persisted entries follow in store order, deduplicated.
func (s *EnabledSource) Enabled(account string) (string, error) {
	var entries []string
	seen := map[string]struct{}{}

	add := func(entry string) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return
		}
		if _, dup := seen[entry]; dup {
			return
		}
		seen[entry] = struct{}{}
		entries = append(entries, entry)
	}

	for _, entry := range strings.Split(s.fromEnvironment(), ",") {
		add(entry)
	}

	if s.store != nil {
		persisted, err := s.store.PersistedEnabledAuthenticators(account)
		if err != nil {
			return "", err
		}
		for _, entry := range persisted {
			add(entry)
		}
	}

	add(authentication.DefaultAuthenticatorName)

	return strings.Join(entries, ","), nil
}
