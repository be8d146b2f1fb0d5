// Package gorm implements the store interfaces against a PostgreSQL
// database through gorm.
package gorm
