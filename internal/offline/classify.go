package offline

import (
	"path"
	"strings"
)

// Class is the caching strategy chosen for a request.
type Class int

const (
	// ClassStatic serves from cache first, falling back to the network.
	ClassStatic Class = iota
	// ClassCacheableAPI goes to the network first with a TTL-bounded
	// cached fallback.
	ClassCacheableAPI
	// ClassStreaming never touches the cache: live audio, auth
	// callbacks, anything side-effecting.
	ClassStreaming
	// ClassDefault goes to the network first and caches opportunistically.
	ClassDefault
)

// staticPrefixes and staticExtensions identify asset requests.
var staticPrefixes = []string{
	"/static/",
	"/assets/",
	"/icons/",
	"/fonts/",
}

var staticExtensions = map[string]bool{
	".html":        true,
	".css":         true,
	".js":          true,
	".png":         true,
	".jpg":         true,
	".jpeg":        true,
	".svg":         true,
	".ico":         true,
	".woff":        true,
	".woff2":       true,
	".webmanifest": true,
}

// cacheableAPIPaths is the allow-list of idempotent hub endpoints
// worth serving stale when the hub is down.
var cacheableAPIPaths = map[string]bool{
	"/devices":        true,
	"/health":         true,
	"/voice/status":   true,
	"/wifi/status":    true,
	"/spotify/status": true,
	"/scenarios":      true,
}

// streamingPaths must always hit the network: they stream, mutate, or
// carry one-shot tokens.
var streamingPaths = map[string]bool{
	"/voice/listen":     true,
	"/voice/speak":      true,
	"/wifi/connect":     true,
	"/spotify/auth":     true,
	"/spotify/callback": true,
}

// Classify picks the caching strategy for a request path. Streaming
// wins over everything; the static check runs before the API
// allow-list so an asset named like an endpoint stays an asset.
func Classify(requestPath string) Class {
	p := strings.TrimSuffix(requestPath, "/")
	if p == "" {
		p = "/"
	}

	if streamingPaths[p] {
		return ClassStreaming
	}
	for _, prefix := range staticPrefixes {
		if strings.HasPrefix(requestPath, prefix) {
			return ClassStatic
		}
	}
	if staticExtensions[path.Ext(p)] || p == "/" {
		return ClassStatic
	}
	if cacheableAPIPaths[p] {
		return ClassCacheableAPI
	}
	return ClassDefault
}
