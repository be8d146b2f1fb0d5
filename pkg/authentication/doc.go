// Package authentication is the core of the authenticator strategy engine:
// the value types addressing authenticator webservices, the plugin
// contract, and the two orchestrators that sequence a request through the
// shared security gate.
//
// # Pipeline
//
// An authenticate request flows through:
//
//	AuthenticatorInput -> AccessRequest -> security chain -> origin check
//	  -> plugin Authenticate -> TokenFactory -> signed token
//
// The status (health check) path substitutes the plugin's optional Status
// capability for credential verification and gates on the ".../status"
// sub-resource instead of the authenticate resource.
//
// # Failure semantics
//
// Every validator and plugin reports failure through a specific typed
// error. The orchestrators never wrap or convert errors; the HTTP layer
// maps each kind to a status code and the audit sink records the precise
// cause. Role and resource lookups are performed fresh on every check,
// never memoized, so repeated validation observes state changes made
// between calls.
package authentication
