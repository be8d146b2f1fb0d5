// Package restrictions validates resource restrictions: annotations on a
// host resource that narrow which verified credential values are acceptable
// for that host to authenticate. The same validator serves authn-jwt and
// authn-gcp; each authenticator contributes its permitted constraint set
// and a resolver into its verified credential.
package restrictions

import (
	"sort"
	"strings"
)

// Restriction is one constraint extracted from a host annotation, e.g.
// type "project-id" with the expected value.
type Restriction struct {
	Type  string
	Value string
}

// Restrictions is the ordered set of constraints present on a host.
type Restrictions []Restriction

// FromAnnotations extracts the restrictions addressed to one authenticator
// from a host's annotations. Generic annotations use the bare authenticator
// prefix ("authn-gcp/project-id"); service-specific annotations
// ("authn-jwt/prod/claim") take the service-qualified prefix and override
// the generic form for the same type.
func FromAnnotations(annotations map[string]string, authenticatorName string, serviceID string) Restrictions {
	generic := authenticatorName + "/"
	qualified := ""
	if serviceID != "" {
		qualified = authenticatorName + "/" + serviceID + "/"
	}

	byType := map[string]string{}
	for name, value := range annotations {
		if qualified != "" && strings.HasPrefix(name, qualified) {
			byType[strings.TrimPrefix(name, qualified)] = value
			continue
		}
		if strings.HasPrefix(name, generic) {
			restrictionType := strings.TrimPrefix(name, generic)
			// A service-qualified annotation wins over the generic one.
			if qualified != "" && strings.Contains(restrictionType, "/") {
				continue
			}
			if _, overridden := byType[restrictionType]; !overridden {
				byType[restrictionType] = value
			}
		}
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	restrictions := make(Restrictions, 0, len(types))
	for _, t := range types {
		restrictions = append(restrictions, Restriction{Type: t, Value: byType[t]})
	}
	return restrictions
}

// Types returns the restriction types in order.
func (rs Restrictions) Types() []string {
	types := make([]string, 0, len(rs))
	for _, r := range rs {
		types = append(types, r.Type)
	}
	return types
}
