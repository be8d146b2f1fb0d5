// Package db opens the PostgreSQL connection through gorm and wires the
// silo encryption plugin into the session.
package db
