// Package settings persists dashboard client state as a key-value
// store: language, theme, onboarding progress and integration
// credentials, the latter AES-encrypted at rest.
package settings
