// Command authnctl runs and manages the Conjur authentication service.
//
// The service issues Conjur access tokens through a pluggable set of
// authenticators (API key, JWT, GCP, OIDC), each gated by a common
// security validation pipeline.
//
// # Quick Start
//
//	# Generate a data key for encryption
//	authnctl data-key generate > data_key
//	export CONJUR_DATA_KEY=$(cat data_key)
//
//	# Run database migrations
//	authnctl db migrate
//
//	# Create an account
//	authnctl account create myorg
//
//	# Start the server
//	authnctl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - CONJUR_DATA_KEY: Base64-encoded 256-bit key for data encryption
//   - CONJUR_AUTHENTICATORS: Comma-separated list of enabled authenticators
//   - CONJUR_TRUSTED_PROXIES: Comma-separated proxy addresses trusted for X-Forwarded-For
//   - CONJUR_CONFIG_PATH: Config file location (default /etc/conjur/config/conjur.yml)
//   - CONJUR_LOG_LEVEL: Log level (debug, info, warn, error)
//   - PORT: Server port (default: 8000)
package main
