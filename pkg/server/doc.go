// Package server assembles the authentication pipeline and serves it over
// HTTP.
//
// NewServer wires the gorm-backed stores into the security validators, the
// authenticator registry, and the strategy and status orchestrators. The
// endpoints subpackage registers the routes:
//
//   - POST /{authenticator}(/{service-id})/{account}/{login}/authenticate
//   - GET  /{authenticator}(/{service-id})/{account}/status
//   - GET  /{authenticator}/{service-id}/{account}/login
//   - GET  /authn/{account}/login
//   - GET  /authenticators
//   - GET  /health
package server
