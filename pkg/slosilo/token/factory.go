package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo"
)

// DefaultTTL is the token lifetime used when no TTL has been configured.
const DefaultTTL = 8 * time.Minute

// SigningKey signs token content and identifies itself by fingerprint.
type SigningKey interface {
	Fingerprint() string
	Sign(value, salt []byte) ([]byte, error)
}

// KeySource resolves the signing key for an account.
type KeySource interface {
	SigningKey(account string) (SigningKey, error)
}

// Factory mints access tokens in the slosilo v2 format: a JSON structure
// of base64url-encoded protected header, payload and signature. The
// protected header carries the signing key's fingerprint so verifiers can
// locate the key.
type Factory struct {
	keys    KeySource
	now     func() time.Time
	userTTL time.Duration
	hostTTL time.Duration
}

func NewFactory(keys KeySource) *Factory {
	return &Factory{keys: keys, now: time.Now, userTTL: DefaultTTL, hostTTL: DefaultTTL}
}

// SetClock overrides the issued-at clock. Tests use this to mint tokens
// at a chosen point in time.
func (f *Factory) SetClock(now func() time.Time) {
	f.now = now
}

// SetTTLs overrides the token lifetimes. Host logins (the "host/" prefix)
// get the host TTL, everything else the user TTL.
func (f *Factory) SetTTLs(user, host time.Duration) {
	f.userTTL = user
	f.hostTTL = host
}

// SignedToken issues a token for the login, signed with the account's key.
func (f *Factory) SignedToken(account string, login string) ([]byte, error) {
	key, err := f.keys.SigningKey(account)
	if err != nil {
		return nil, err
	}

	header, err := json.Marshal(map[string]interface{}{
		"alg": "conjur.org/slosilo/v2",
		"kid": key.Fingerprint(),
	})
	if err != nil {
		return nil, err
	}

	ttl := f.userTTL
	if strings.HasPrefix(login, "host/") {
		ttl = f.hostTTL
	}
	iat := f.now()

	claims, err := json.Marshal(map[string]interface{}{
		"iat": iat.Unix(),
		"exp": iat.Add(ttl).Unix(),
		"sub": login,
	})
	if err != nil {
		return nil, err
	}

	protected := base64.URLEncoding.EncodeToString(header)
	payload := base64.URLEncoding.EncodeToString(claims)

	salt, err := slosilo.RandomBytes(32)
	if err != nil {
		return nil, err
	}

	signature, err := key.Sign([]byte(protected+"."+payload), salt)
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]string{
		"protected": protected,
		"payload":   payload,
		"signature": base64.URLEncoding.EncodeToString(signature),
	})
}
