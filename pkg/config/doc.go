// Package config loads server configuration from defaults, a YAML config
// file and environment variables, tracking the provenance of each value.
// A file watcher reloads configuration in place so authenticator
// whitelist changes apply without a restart.
package config
