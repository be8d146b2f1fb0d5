package store

// SecretsStore fetches the latest version of a secret by resource ID.
// The second return value reports whether the secret exists.
type SecretsStore interface {
	FetchSecret(resourceID string) (string, bool, error)
}
