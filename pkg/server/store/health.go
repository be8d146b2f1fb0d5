package store

// HealthStore checks that the backing database is reachable.
type HealthStore interface {
	Ping() error
}
