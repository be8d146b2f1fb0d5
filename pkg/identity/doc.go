// Package identity carries the authenticated caller of a request.
//
// The token package handles parsing and validating the raw access token;
// this package builds the richer view handlers consume: the resolved role
// id, account and login plus the client IP, stored on the request context.
package identity
