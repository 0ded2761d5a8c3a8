// Package offline keeps the dashboard usable when the hub is not:
// a caching proxy layer that classifies each request and serves
// cache-first, network-first, or network-only accordingly, with
// generation-scoped stores and TTL-bounded API fallbacks.
package offline
