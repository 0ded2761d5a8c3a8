package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// testClock drives cache expiry deterministically.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLayer(t *testing.T, upstream string, ttl time.Duration) (*Layer, *Cache, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewCache("v1")
	cache.now = clock.Now
	layer := NewLayer(cache, func() string { return upstream }, ttl, 2*time.Second)
	return layer, cache, clock
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Class
	}{
		{"/", ClassStatic},
		{"/static/app.js", ClassStatic},
		{"/assets/logo.png", ClassStatic},
		{"/index.html", ClassStatic},
		{"/manifest.webmanifest", ClassStatic},
		{"/devices", ClassCacheableAPI},
		{"/health", ClassCacheableAPI},
		{"/voice/status", ClassCacheableAPI},
		{"/wifi/status", ClassCacheableAPI},
		{"/spotify/status", ClassCacheableAPI},
		{"/scenarios", ClassCacheableAPI},
		{"/scenarios/", ClassCacheableAPI},
		{"/voice/listen", ClassStreaming},
		{"/voice/speak", ClassStreaming},
		{"/wifi/connect", ClassStreaming},
		{"/spotify/auth", ClassStreaming},
		{"/spotify/callback", ClassStreaming},
		{"/chat", ClassDefault},
		{"/devices/lamp-1/action", ClassDefault},
	}

	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestStaticCacheFirstServedWithNetworkDown(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/css")
		w.Write([]byte("body{}")) //nolint:errcheck
	}))
	layer, _, _ := newTestLayer(t, srv.URL, 30*time.Second)

	// First request populates the cache.
	rec := httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Fatalf("first fetch: code=%d body=%q", rec.Code, rec.Body.String())
	}

	// Kill the network; the cached copy must be served unchanged.
	srv.Close()
	rec = httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Errorf("offline fetch: code=%d body=%q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/css" {
		t.Errorf("Content-Type = %q", got)
	}
	if hits != 1 {
		t.Errorf("upstream hit %d times, cache-first should hit once", hits)
	}
}

func TestNetworkFirstPrefersFreshResponse(t *testing.T) {
	version := "one"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(version)) //nolint:errcheck
	}))
	defer srv.Close()
	layer, _, _ := newTestLayer(t, srv.URL, 30*time.Second)

	rec := httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices", nil))
	if rec.Body.String() != "one" {
		t.Fatalf("body = %q", rec.Body.String())
	}

	// Upstream changes; network-first must serve the new value even
	// though a cached one exists.
	version = "two"
	rec = httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices", nil))
	if rec.Body.String() != "two" {
		t.Errorf("body = %q, network-first served stale data", rec.Body.String())
	}
}

func TestTTLBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"devices":[]}`)) //nolint:errcheck
	}))
	layer, _, clock := newTestLayer(t, srv.URL, 30*time.Second)

	rec := httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("populate: code=%d", rec.Code)
	}
	srv.Close()

	// Just inside the TTL: the cached copy is served.
	clock.Advance(30*time.Second - time.Millisecond)
	rec = httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != `{"devices":[]}` {
		t.Errorf("at TTL-1ms: code=%d body=%q, want cached copy", rec.Code, rec.Body.String())
	}

	// Just past the TTL: rejected, offline JSON.
	clock.Advance(2 * time.Millisecond)
	rec = httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("at TTL+1ms: code=%d, want 503", rec.Code)
	}
	var resp struct {
		Offline bool `json:"offline"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || !resp.Offline {
		t.Errorf("offline body = %q", rec.Body.String())
	}
}

func TestStreamingNeverCached(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write([]byte("transcript")) //nolint:errcheck
	}))
	layer, cache, _ := newTestLayer(t, srv.URL, 30*time.Second)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/voice/listen", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d", rec.Code)
		}
	}
	if hits != 2 {
		t.Errorf("upstream hit %d times, streaming must never cache", hits)
	}
	if cache.Len() != 0 {
		t.Errorf("cache holds %d entries after streaming requests", cache.Len())
	}

	// With the network down, streaming routes fail terminally.
	srv.Close()
	rec := httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/voice/listen", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("offline streaming code = %d, want 503", rec.Code)
	}
}

func TestStreamingBodyLargerThanCacheBound(t *testing.T) {
	// Voice audio regularly exceeds the cache bound; every byte must
	// reach the client.
	audio := bytes.Repeat([]byte("a"), maxCachedBodySize+512)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(audio) //nolint:errcheck
	}))
	defer srv.Close()
	layer, cache, _ := newTestLayer(t, srv.URL, 30*time.Second)

	rec := httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/voice/listen", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if rec.Body.Len() != len(audio) {
		t.Errorf("body = %d bytes, want the full %d", rec.Body.Len(), len(audio))
	}
	if cache.Len() != 0 {
		t.Errorf("cache holds %d entries after a streaming request", cache.Len())
	}
}

func TestOversizedResponseServedIntactAndNotCached(t *testing.T) {
	big := bytes.Repeat([]byte("x"), maxCachedBodySize+1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(big)))
		w.Write(big) //nolint:errcheck
	}))
	defer srv.Close()
	layer, cache, _ := newTestLayer(t, srv.URL, 30*time.Second)

	rec := httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	// The advertised Content-Length and the delivered body must agree.
	if rec.Body.Len() != len(big) {
		t.Errorf("body = %d bytes, want %d", rec.Body.Len(), len(big))
	}
	if got := rec.Header().Get("Content-Length"); got != strconv.Itoa(len(big)) {
		t.Errorf("Content-Length = %q, want %d", got, len(big))
	}
	if cache.Len() != 0 {
		t.Errorf("cache holds %d entries, oversized bodies must not be stored", cache.Len())
	}
}

func TestBodyAtCacheBoundStillCached(t *testing.T) {
	exact := bytes.Repeat([]byte("y"), maxCachedBodySize)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(exact) //nolint:errcheck
	}))
	layer, cache, _ := newTestLayer(t, srv.URL, 30*time.Second)

	rec := httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices", nil))
	if rec.Body.Len() != len(exact) {
		t.Fatalf("body = %d bytes", rec.Body.Len())
	}
	if cache.Len() != 1 {
		t.Fatalf("cache holds %d entries, want the at-bound body stored", cache.Len())
	}

	srv.Close()
	rec = httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != len(exact) {
		t.Errorf("cached replay: code=%d body=%d bytes", rec.Code, rec.Body.Len())
	}
}

func TestPrewarmSkipsOversizedAssets(t *testing.T) {
	big := bytes.Repeat([]byte("z"), maxCachedBodySize+1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/static/huge.bin" {
			w.Write(big) //nolint:errcheck
			return
		}
		io.WriteString(w, "ok") //nolint:errcheck
	}))
	defer srv.Close()
	layer, cache, _ := newTestLayer(t, srv.URL, 30*time.Second)

	layer.Prewarm(context.Background(), []string{"/", "/static/huge.bin"})
	if cache.Len() != 1 {
		t.Errorf("Len() = %d after prewarm, oversized asset must be skipped", cache.Len())
	}
}

func TestOfflineDocumentGetsHTMLPage(t *testing.T) {
	layer, _, _ := newTestLayer(t, "http://127.0.0.1:1", 30*time.Second)

	req := httptest.NewRequest(http.MethodGet, "/dashboard.html", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	layer.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "offline") {
		t.Error("offline page body missing")
	}
}

func TestNonSuccessResponsesNotCached(t *testing.T) {
	code := http.StatusInternalServerError
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	}))
	defer srv.Close()
	layer, cache, _ := newTestLayer(t, srv.URL, 30*time.Second)

	rec := httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, upstream errors pass through", rec.Code)
	}
	if cache.Len() != 0 {
		t.Errorf("cache holds %d entries after a 500", cache.Len())
	}
}

func TestGenerationActivatePurgesOldStores(t *testing.T) {
	cache := NewCache("v2")
	cache.AdoptStores(map[string]map[string]Entry{
		"static-v1":  {"/static/app.css": {Data: []byte("old"), Status: 200}},
		"dynamic-v1": {"/devices": {Data: []byte("old"), Status: 200}},
	})
	cache.PutStatic("/static/app.css", Entry{Data: []byte("new"), Status: 200})

	cache.Activate()

	if e, ok := cache.GetStatic("/static/app.css"); !ok || string(e.Data) != "new" {
		t.Errorf("active generation entry = %+v, ok=%v", e, ok)
	}
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	if _, ok := cache.stores["static-v1"]; ok {
		t.Error("old static store survived Activate")
	}
	if _, ok := cache.stores["dynamic-v1"]; ok {
		t.Error("old dynamic store survived Activate")
	}
}

func TestClear(t *testing.T) {
	cache := NewCache("v1")
	cache.PutStatic("/a", Entry{Data: []byte("a"), Status: 200})
	cache.PutDynamic("/b", Entry{Data: []byte("b"), Status: 200}, time.Minute)

	if cache.Len() != 2 {
		t.Fatalf("Len() = %d", cache.Len())
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len() = %d after Clear", cache.Len())
	}
}

func TestPrewarm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.css" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, "asset:"+r.URL.Path) //nolint:errcheck
	}))
	layer, cache, _ := newTestLayer(t, srv.URL, 30*time.Second)

	layer.Prewarm(context.Background(), []string{"/", "/static/app.js", "/missing.css"})
	srv.Close()

	if cache.Len() != 2 {
		t.Errorf("Len() = %d after prewarm, want 2 (404 skipped)", cache.Len())
	}

	// Prewarmed entries serve offline.
	rec := httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "asset:/static/app.js" {
		t.Errorf("prewarmed fetch: code=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestQueryStringsGetSeparateEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "q="+r.URL.RawQuery) //nolint:errcheck
	}))
	layer, _, _ := newTestLayer(t, srv.URL, 30*time.Second)

	for _, q := range []string{"room=kitchen", "room=lounge"} {
		rec := httptest.NewRecorder()
		layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices?"+q, nil))
		if rec.Body.String() != "q="+q {
			t.Fatalf("body = %q", rec.Body.String())
		}
	}
	srv.Close()

	rec := httptest.NewRecorder()
	layer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices?room=kitchen", nil))
	if rec.Body.String() != "q=room=kitchen" {
		t.Errorf("cached body = %q, entries must key on path+query", rec.Body.String())
	}
}
