package integration

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	jwtTestKeyID  = "test-key-1"
	jwtTestIssuer = "https://jwt.test.local"
)

// jwksDocument builds the static public-keys variable value expected by
// the authn-jwt configuration.
func jwksDocument(key *rsa.PublicKey) (string, error) {
	jwk := map[string]interface{}{
		"kty": "RSA",
		"kid": jwtTestKeyID,
		"use": "sig",
		"alg": "RS256",
		"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}
	doc := map[string]interface{}{
		"type": "jwks",
		"value": map[string]interface{}{
			"keys": []interface{}{jwk},
		},
	}
	raw, err := json.Marshal(doc)
	return string(raw), err
}

func (s *StepsContext) aJWTSigningKeyIsConfigured(serviceID, account string) error {
	if s.tc.JWTKey == nil {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return fmt.Errorf("failed to generate RSA key: %w", err)
		}
		s.tc.JWTKey = key
	}

	jwks, err := jwksDocument(&s.tc.JWTKey.PublicKey)
	if err != nil {
		return err
	}

	prefix := "conjur/authn-jwt/" + serviceID + "/"
	for name, value := range map[string]string{
		prefix + "public-keys":        jwks,
		prefix + "issuer":             jwtTestIssuer,
		prefix + "token-app-property": "host",
	} {
		if err := s.setVariable(account, name, value); err != nil {
			return err
		}
	}
	return nil
}

// signJWT mints an RS256 token carrying the host identity plus any extra
// claims the scenario wants to assert restrictions against.
func (s *StepsContext) signJWT(hostName string, extraClaims map[string]interface{}) (string, error) {
	if s.tc.JWTKey == nil {
		return "", fmt.Errorf("no JWT signing key configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  jwtTestIssuer,
		"iat":  now.Unix(),
		"exp":  now.Add(5 * time.Minute).Unix(),
		"host": hostName,
	}
	for name, value := range extraClaims {
		claims[name] = value
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = jwtTestKeyID
	return tok.SignedString(s.tc.JWTKey)
}

func (s *StepsContext) iAuthenticateWithJWTForHost(webserviceName, account, hostName string) error {
	return s.iAuthenticateWithJWTClaim(webserviceName, account, "", "", hostName)
}

func (s *StepsContext) iAuthenticateWithJWTClaim(webserviceName, account, claim, claimValue, hostName string) error {
	extra := map[string]interface{}{}
	if claim != "" {
		extra[claim] = claimValue
	}
	signed, err := s.signJWT(hostName, extra)
	if err != nil {
		return err
	}
	// The request body carries the raw JWT; the login URL segment is a
	// placeholder because the identity comes from the token claims.
	path := fmt.Sprintf("/%s/%s/%s/authenticate", webserviceName, account, url.PathEscape("host/"+hostName))
	return s.post(path, signed)
}
