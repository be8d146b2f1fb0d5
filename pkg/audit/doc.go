// Package audit emits RFC5424-format audit records for authentication and
// authenticator status operations.
//
// Every terminal outcome of the authenticate and status pipelines produces
// exactly one event. Events carry the acting role, client IP, authenticator
// name and service id as structured data under Conjur's private enterprise
// number, and can optionally be persisted to an audit database alongside
// the syslog stream.
package audit
