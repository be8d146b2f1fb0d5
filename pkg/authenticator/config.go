package authenticator

import "fmt"

// Secrets is the capability authenticators use to read their configuration
// from Conjur variables under conjur/<authenticator>/<service-id>/.
type Secrets interface {
	// FetchSecret returns the decrypted value of a variable resource.
	// ok is false when the variable does not exist or has no value.
	FetchSecret(resourceID string) (value string, ok bool, err error)
}

// VariablePrefix returns the resource id prefix of an authenticator
// instance's configuration variables.
func VariablePrefix(account string, authenticatorName string, serviceID string) string {
	prefix := account + ":variable:conjur/" + authenticatorName
	if serviceID != "" {
		prefix += "/" + serviceID
	}
	return prefix + "/"
}

// MissingConfigurationError reports a required configuration variable that
// is absent or empty. Distinct from InvalidConfigurationError: the setting
// was never provided, as opposed to provided but malformed.
type MissingConfigurationError struct {
	Name string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("required configuration '%s' is missing or empty", e.Name)
}

// InvalidConfigurationError reports a configuration variable that is
// present but malformed or contradictory.
type InvalidConfigurationError struct {
	Name   string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("configuration '%s' is invalid: %s", e.Name, e.Reason)
}
