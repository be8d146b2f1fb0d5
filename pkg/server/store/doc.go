// Package store defines the persistence interfaces the server depends
// on. Implementations live in subpackages, keyed by backend.
package store
