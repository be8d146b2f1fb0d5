// Package token mints and parses Conjur access tokens in the slosilo v2
// wire format: a JSON object of base64url-encoded protected header,
// payload and signature.
//
// The Factory is the authenticate pipeline's token issuer; it signs with
// the account's keystore key and stamps iat, exp and sub claims. Parse is
// the middleware's side of the exchange:
//
//	tok, err := token.Parse(raw)
//	if err != nil || tok.Expired() {
//	    // reject
//	}
//	account, ok := tok.Verify(verifier)
//
// Verification itself is delegated to the caller's Verifier so key lookup
// stays with the keystore.
package token
