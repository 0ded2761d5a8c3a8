// Package config loads and validates HomeDeck configuration.
//
// Configuration comes from a YAML file with hardcoded defaults and
// HOMEDECK_* environment variable overrides applied on top. Secrets
// (JWT signing key, hub credentials, InfluxDB token) should always be
// supplied via environment variables rather than the file.
package config
