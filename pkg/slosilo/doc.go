// Package slosilo provides the cryptographic primitives for token
// signing and secret storage: RSA signing keys in the slosilo salted
// PKCS1v15 format, and AES-256-GCM symmetric encryption with additional
// authenticated data.
package slosilo
