package authnjwt

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authenticator"
)

// Signing key material can come from exactly one of three sources:
// an OIDC provider (jwks discovered from its well-known configuration),
// a direct JWKS endpoint, or a static inline JWKS document.
const (
	variableProviderURI = "provider-uri"
	variableJWKSURI     = "jwks-uri"
	variablePublicKeys  = "public-keys"
)

// signingKeySettings is the resolved key-source configuration of one
// authenticator instance.
type signingKeySettings struct {
	providerURI string
	jwksURI     string
	publicKeys  string
}

// resolveSigningKeySettings reads the three source variables and enforces
// mutual exclusivity: none configured is MissingConfigurationError, more
// than one is InvalidConfigurationError.
func resolveSigningKeySettings(secrets authenticator.Secrets, prefix string) (*signingKeySettings, error) {
	settings := &signingKeySettings{}
	configured := 0

	for _, source := range []struct {
		name   string
		target *string
	}{
		{variableProviderURI, &settings.providerURI},
		{variableJWKSURI, &settings.jwksURI},
		{variablePublicKeys, &settings.publicKeys},
	} {
		value, ok, err := secrets.FetchSecret(prefix + source.name)
		if err != nil {
			return nil, err
		}
		if ok && value != "" {
			*source.target = value
			configured++
		}
	}

	switch {
	case configured == 0:
		return nil, &authenticator.MissingConfigurationError{
			Name: variableProviderURI + "/" + variableJWKSURI + "/" + variablePublicKeys,
		}
	case configured > 1:
		return nil, &authenticator.InvalidConfigurationError{
			Name:   variableProviderURI,
			Reason: "signing key sources are mutually exclusive",
		}
	}
	return settings, nil
}

// cacheKey distinguishes key material fetched from different sources.
func (s *signingKeySettings) cacheKey() string {
	switch {
	case s.providerURI != "":
		return "provider:" + s.providerURI
	case s.jwksURI != "":
		return "jwks:" + s.jwksURI
	default:
		return "static"
	}
}

// issuerHost derives the default issuer from the configured URI when no
// explicit issuer variable is set.
func (s *signingKeySettings) issuerHost() (string, error) {
	uri := s.providerURI
	if uri == "" {
		uri = s.jwksURI
	}
	if uri == "" {
		return "", &InvalidIssuerConfigurationError{}
	}
	if s.providerURI != "" {
		// The provider URI is the issuer verbatim, per OIDC discovery.
		return s.providerURI, nil
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return "", &InvalidURIFormatError{URI: uri}
	}
	if parsed.Hostname() == "" {
		return "", &FailedToParseHostnameError{URI: uri}
	}
	return parsed.Hostname(), nil
}

// fetchSigningKeys retrieves the JWKS for the configured source and parses
// it into a kid-indexed verification key map.
func (s *signingKeySettings) fetchSigningKeys(ctx context.Context, client *http.Client) (map[string]interface{}, error) {
	if s.publicKeys != "" {
		return parseStaticPublicKeys(s.publicKeys)
	}

	if s.jwksURI == "" {
		return FetchProviderKeys(ctx, client, s.providerURI)
	}

	body, err := httpGet(ctx, client, s.jwksURI)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from '%s': %w", s.jwksURI, err)
	}
	return parseJWKS(body)
}

func httpGet(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &InvalidURIFormatError{URI: rawURL}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// parseStaticPublicKeys parses the public-keys variable, which wraps a
// JWKS document: {"type": "jwks", "value": {"keys": [...]}}.
func parseStaticPublicKeys(raw string) (map[string]interface{}, error) {
	var wrapper struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
		return nil, &authenticator.InvalidConfigurationError{Name: variablePublicKeys, Reason: "not valid JSON"}
	}
	if wrapper.Type != "jwks" {
		return nil, &authenticator.InvalidConfigurationError{
			Name:   variablePublicKeys,
			Reason: fmt.Sprintf("unsupported type '%s'", wrapper.Type),
		}
	}
	return parseJWKS(wrapper.Value)
}

// parseJWKS parses a JWKS document into a kid-indexed map of RSA public
// keys. Non-RSA and malformed entries are skipped.
func parseJWKS(body []byte) (map[string]interface{}, error) {
	var jwks struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.Unmarshal(body, &jwks); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	keys := make(map[string]interface{})
	for _, key := range jwks.Keys {
		if key.Kty != "RSA" {
			continue
		}
		publicKey, err := parseRSAPublicKey(key.N, key.E)
		if err != nil {
			continue
		}
		keys[key.Kid] = publicKey
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("JWKS contains no usable RSA keys")
	}
	return keys, nil
}

// parseRSAPublicKey builds an RSA public key from base64url JWK components.
func parseRSAPublicKey(nBase64, eBase64 string) (*rsa.PublicKey, error) {
	nBytes, err := jwt.NewParser().DecodeSegment(nBase64)
	if err != nil {
		return nil, err
	}
	eBytes, err := jwt.NewParser().DecodeSegment(eBase64)
	if err != nil {
		return nil, err
	}

	var e int
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}
