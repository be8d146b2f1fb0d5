package identity

import (
	"context"
	"net"
	"time"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo/token"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Key is the context key for Identity.
const Key ContextKey = "identity"

// Identity represents the authenticated caller of a request.
type Identity struct {
	RoleID    string
	Account   string
	Login     string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// RemoteIP is the client address the request arrived from.
	RemoteIP net.IP

	// Token is the underlying parsed access token.
	Token *token.Parsed
}

// FromToken creates an Identity from a parsed token and account.
func FromToken(tok *token.Parsed, account string) *Identity {
	login := tok.Sub()
	return &Identity{
		RoleID:    authentication.RoleIDFromLogin(account, login),
		Account:   account,
		Login:     login,
		IssuedAt:  tok.IAT(),
		ExpiresAt: tok.Exp(),
		Token:     tok,
	}
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
