// Package model defines the database models for the authentication service.
//
// This package contains GORM models that map to the Conjur PostgreSQL
// schema; the tables are compatible with Ruby Conjur's database so the
// service can run against an existing deployment.
//
// # Core Models
//
//   - Key: RSA signing keys stored in slosilo_keystore
//   - Credential: API keys, password hashes and network restrictions
//   - Role: Identity principals (users, hosts, groups, layers, policies)
//   - Resource: Protected objects (variables, webservices, hosts, etc.)
//   - RoleMembership: Role hierarchy relationships
//   - Permission: Access control rules
//   - Secret: Encrypted variable values with versioning
//   - Annotation: Metadata key-value pairs on resources
//   - AuthenticatorConfig: Persisted per-webservice authenticator enablement
//
// Fields tagged `slosilo:"encrypted"` are encrypted at rest by the silo
// gorm plugin using the deployment's data key.
package model
