package store

// ResourcesStore exposes resource existence checks.
type ResourcesStore interface {
	ResourceExists(resourceID string) (bool, error)
}
