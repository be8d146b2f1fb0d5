package authnjwt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authenticator"
)

// DiscoveryDocument is the subset of an OIDC provider's well-known
// configuration that the authenticators use.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
}

// DiscoverProvider fetches and parses the provider's well-known OIDC
// configuration document.
func DiscoverProvider(ctx context.Context, client *http.Client, providerURI string) (*DiscoveryDocument, error) {
	discoveryURL := strings.TrimSuffix(providerURI, "/") + "/.well-known/openid-configuration"
	body, err := httpGet(ctx, client, discoveryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OIDC discovery document: %w", err)
	}

	var discovery DiscoveryDocument
	if err := json.Unmarshal(body, &discovery); err != nil {
		return nil, fmt.Errorf("failed to parse OIDC discovery document: %w", err)
	}
	if discovery.JWKSURI == "" {
		return nil, &authenticator.InvalidConfigurationError{
			Name:   variableProviderURI,
			Reason: "discovery document has no jwks_uri",
		}
	}
	return &discovery, nil
}

// FetchKeys retrieves the discovered JWKS endpoint's key set and parses it
// into a kid-indexed RSA verification key map.
func (d *DiscoveryDocument) FetchKeys(ctx context.Context, client *http.Client) (map[string]interface{}, error) {
	body, err := httpGet(ctx, client, d.JWKSURI)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from '%s': %w", d.JWKSURI, err)
	}
	return parseJWKS(body)
}

// FetchProviderKeys discovers the provider's JWKS endpoint and fetches its
// key set.
func FetchProviderKeys(ctx context.Context, client *http.Client, providerURI string) (map[string]interface{}, error) {
	discovery, err := DiscoverProvider(ctx, client, providerURI)
	if err != nil {
		return nil, err
	}
	return discovery.FetchKeys(ctx, client)
}
