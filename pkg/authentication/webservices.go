package authentication

import "strings"

// Webservices is the whitelist of webservices enabled by configuration.
// Iteration order matches configuration order; membership is the only
// semantically significant operation.
type Webservices []Webservice

// WebservicesFromString parses a comma-separated list of combined
// authenticator names into a whitelist. Whitespace around entries is
// ignored. The base authenticator for the account is always part of the
// result, whether or not the configuration lists it.
func WebservicesFromString(account string, enabledAuthenticators string) Webservices {
	var services Webservices
	for _, entry := range strings.Split(enabledAuthenticators, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		services = append(services, WebserviceFromString(account, entry))
	}
	if !services.Include(DefaultWebservice(account)) {
		services = append(services, DefaultWebservice(account))
	}
	return services
}

// Include tests membership. Webservices are compared by account,
// authenticator name and service id.
func (ws Webservices) Include(webservice Webservice) bool {
	for _, candidate := range ws {
		if candidate == webservice {
			return true
		}
	}
	return false
}

// Names returns the combined names in configuration order.
func (ws Webservices) Names() []string {
	names := make([]string, 0, len(ws))
	for _, w := range ws {
		names = append(names, w.Name())
	}
	return names
}
