package offline

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// Logger defines the logging interface used by the Layer.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// maxCachedBodySize bounds what a single cache entry may hold.
const maxCachedBodySize = 4 << 20 // 4MB

// UpstreamProvider returns the base URL of the current hub.
type UpstreamProvider func() string

// Layer is the offline-capable proxy in front of the current hub.
//
// Each request is classified and served by the matching strategy:
// static assets cache-first, allow-listed API reads network-first with
// a TTL-bounded cached fallback, streaming endpoints network-only, and
// everything else network-first with opportunistic caching. When both
// the network and the cache come up empty, document requests get an
// inline offline page and API requests a 503 with offline:true.
type Layer struct {
	cache    *Cache
	upstream UpstreamProvider
	httpc    *http.Client
	ttl      time.Duration
	logger   Logger
}

// NewLayer creates the offline proxy layer. ttl bounds dynamic cache
// entries; requestTimeout bounds each upstream fetch.
func NewLayer(cache *Cache, upstream UpstreamProvider, ttl, requestTimeout time.Duration) *Layer {
	return &Layer{
		cache:    cache,
		upstream: upstream,
		httpc:    &http.Client{Timeout: requestTimeout},
		ttl:      ttl,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the layer.
func (l *Layer) SetLogger(logger Logger) {
	l.logger = logger
}

// Clear drops every entry of the active cache generation.
func (l *Layer) Clear() {
	l.cache.Clear()
	l.logger.Info("offline cache cleared", "generation", l.cache.Generation())
}

// ServeHTTP dispatches the request to its strategy.
func (l *Layer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch Classify(r.URL.Path) {
	case ClassStatic:
		l.cacheFirst(w, r)
	case ClassCacheableAPI:
		l.networkFirst(w, r, true)
	case ClassStreaming:
		l.networkOnly(w, r)
	default:
		l.networkFirst(w, r, true)
	}
}

// cacheFirst serves static assets from cache when present, otherwise
// fetches and caches them.
func (l *Layer) cacheFirst(w http.ResponseWriter, r *http.Request) {
	key := cacheKey(r)
	if r.Method == http.MethodGet {
		if e, ok := l.cache.GetStatic(key); ok {
			writeEntry(w, e)
			return
		}
	}

	entry, complete, err := l.forward(w, r)
	if err != nil {
		l.logger.Warn("static fetch failed", "path", r.URL.Path, "error", err)
		l.writeOffline(w, r)
		return
	}
	if complete && cacheable(r, entry) {
		l.cache.PutStatic(key, entry)
	}
}

// networkFirst tries the hub and falls back to a still-valid dynamic
// entry. cacheResult controls opportunistic population.
func (l *Layer) networkFirst(w http.ResponseWriter, r *http.Request, cacheResult bool) {
	key := cacheKey(r)

	entry, complete, err := l.forward(w, r)
	if err == nil {
		if cacheResult && complete && cacheable(r, entry) {
			l.cache.PutDynamic(key, entry, l.ttl)
		}
		return
	}

	l.logger.Debug("upstream unreachable, trying cache", "path", r.URL.Path, "error", err)
	if r.Method == http.MethodGet {
		if e, ok := l.cache.GetDynamic(key); ok {
			writeEntry(w, e)
			return
		}
	}
	l.writeOffline(w, r)
}

// networkOnly streams the hub response straight through, never
// consulting or populating the cache. Voice audio can far exceed the
// cache bound, so nothing is buffered here.
func (l *Layer) networkOnly(w http.ResponseWriter, r *http.Request) {
	resp, err := l.fetch(r)
	if err != nil {
		l.logger.Warn("streaming route unreachable", "path", r.URL.Path, "error", err)
		l.writeOffline(w, r)
		return
	}
	defer resp.Body.Close() //nolint:errcheck

	copyHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		l.logger.Warn("streaming copy interrupted", "path", r.URL.Path, "error", err)
	}
}

// fetch issues the upstream request for r against the current hub.
func (l *Layer) fetch(r *http.Request) (*http.Response, error) {
	upstreamURL := strings.TrimRight(l.upstream(), "/") + r.URL.Path
	if r.URL.RawQuery != "" {
		upstreamURL += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, upstreamURL, r.Body)
	if err != nil {
		return nil, err
	}
	copyHeader(req.Header, r.Header)
	return l.httpc.Do(req)
}

// forward proxies the request to the current hub, streaming the full
// response to the client while mirroring it into a bounded buffer for
// the cache. A non-nil error means nothing was written to w. complete
// is false when the body outgrew the cache bound or the stream broke
// mid-copy; the client still gets the bytes untouched, but such a
// response must not be stored.
func (l *Layer) forward(w http.ResponseWriter, r *http.Request) (entry Entry, complete bool, err error) {
	resp, err := l.fetch(r)
	if err != nil {
		return Entry{}, false, err
	}
	defer resp.Body.Close() //nolint:errcheck

	copyHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	capture := &captureWriter{limit: maxCachedBodySize}
	if _, err := io.Copy(io.MultiWriter(w, capture), resp.Body); err != nil {
		l.logger.Warn("upstream body copy interrupted", "path", r.URL.Path, "error", err)
		return Entry{}, false, nil
	}
	if capture.overflow {
		l.logger.Debug("response too large to cache", "path", r.URL.Path)
		return Entry{}, false, nil
	}

	entry = Entry{
		Data:   capture.buf.Bytes(),
		Header: cloneHeader(resp.Header),
		Status: resp.StatusCode,
	}
	return entry, true, nil
}

// captureWriter mirrors streamed bytes into a bounded buffer. Past the
// bound the capture is abandoned, but writes keep reporting success so
// the client copy continues.
type captureWriter struct {
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (c *captureWriter) Write(p []byte) (int, error) {
	if !c.overflow {
		if c.buf.Len()+len(p) > c.limit {
			c.overflow = true
			c.buf.Reset()
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}

// Prewarm fetches the given paths from the hub and stores them as
// static entries. Failures are logged and skipped; prewarming is best
// effort.
func (l *Layer) Prewarm(ctx context.Context, paths []string) {
	base := strings.TrimRight(l.upstream(), "/")
	warmed := 0

	for _, p := range paths {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+p, nil)
		if err != nil {
			continue
		}
		resp, err := l.httpc.Do(req)
		if err != nil {
			l.logger.Debug("prewarm skipped", "path", p, "error", err)
			continue
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxCachedBodySize+1))
		resp.Body.Close() //nolint:errcheck
		if err != nil || resp.StatusCode < 200 || resp.StatusCode > 299 || len(body) > maxCachedBodySize {
			continue
		}
		l.cache.PutStatic(p, Entry{Data: body, Header: cloneHeader(resp.Header), Status: resp.StatusCode})
		warmed++
	}
	l.logger.Info("cache prewarmed", "requested", len(paths), "stored", warmed)
}

// writeOffline renders the terminal offline response: an inline HTML
// page for document requests, a JSON 503 for everything else.
func (l *Layer) writeOffline(w http.ResponseWriter, r *http.Request) {
	if wantsDocument(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(offlinePage)) //nolint:errcheck
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte(`{"error":"hub unreachable and no cached copy","offline":true}`)) //nolint:errcheck
}

func wantsDocument(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func cacheKey(r *http.Request) string {
	if r.URL.RawQuery != "" {
		return r.URL.Path + "?" + r.URL.RawQuery
	}
	return r.URL.Path
}

// cacheable limits cache population to successful idempotent reads.
func cacheable(r *http.Request, e Entry) bool {
	return r.Method == http.MethodGet && e.Status >= 200 && e.Status <= 299
}

func writeEntry(w http.ResponseWriter, e Entry) {
	copyHeader(w.Header(), e.Header)
	w.WriteHeader(e.Status)
	w.Write(e.Data) //nolint:errcheck
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	copyHeader(out, h)
	return out
}

// offlinePage is the inline fallback shown when a document request
// cannot be served from network or cache.
const offlinePage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>HomeDeck - Offline</title>
<style>
body { font-family: system-ui, sans-serif; background: #0f172a; color: #e2e8f0;
       display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; }
main { text-align: center; }
h1 { font-size: 1.5rem; }
p { color: #94a3b8; }
</style>
</head>
<body>
<main>
<h1>You&rsquo;re offline</h1>
<p>HomeDeck can&rsquo;t reach your hub right now. It will reconnect automatically.</p>
</main>
</body>
</html>
`
