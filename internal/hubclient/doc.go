// Package hubclient is the typed REST client for automation hubs.
//
// It covers the full hub surface consumed by the gateway: health,
// devices, voice, Wi-Fi, Spotify, scenarios, chat and settings.
//
// Error handling follows a two-class taxonomy. Transport failures
// (unreachable host, timeout, DNS) are *ConnError; application
// failures (non-2xx with an optional JSON error body) are *APIError.
// Callers convert both into user-facing notifications rather than
// propagating them.
package hubclient
