// Package secrets provides at-rest encryption for stored credentials.
//
// Fields tagged `gocrypt:"aes"` are AES-256 encrypted before they
// reach SQLite. Encryption is opt-in: without a configured key the Box
// passes values through unchanged.
package secrets
