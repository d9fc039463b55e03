// Package cache gives the API client resilience against transient network
// loss. It is an http.RoundTripper layered under the client, with two cache
// levels: a TTL'd in-memory cache (ccache) for the fast path and a durable
// on-disk store that survives restarts for offline fallback.
//
// Strategy by request class:
//   - API GET requests (path under /api): network-first. Successful
//     responses for the critical list endpoints are written through to the
//     cache; on network failure the stored response for the exact request
//     is served, else the failure propagates.
//   - other GET requests (report images, tiles): cache-first. On a miss the
//     response is fetched and stored best-effort; store failures are
//     swallowed.
//   - mutations (POST/PUT/DELETE) always pass through untouched.
//
// The disk store lives in a versioned directory (httpcache-v2). On startup
// directories from older versions are deleted, the same way the service
// worker's activate step drops outdated named caches.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/gusgushz/baches/internal/logbook"
)

// Version is bumped whenever the stored entry format or the set of
// precached endpoints changes; old cache directories are then discarded.
const Version = "v2"

const dirPrefix = "httpcache-"

// PrecachePaths are the critical list endpoints warmed after login so the
// dashboard still renders something when the backend drops out.
var PrecachePaths = []string{"/workers", "/vehicles", "/assignments", "/reports"}

// entry is one stored response.
type entry struct {
	Status  int         `json:"status"`
	Header  http.Header `json:"header"`
	Body    []byte      `json:"body"`
	SavedAt time.Time   `json:"savedAt"`
}

// Transport implements http.RoundTripper with the strategies above.
type Transport struct {
	inner     http.RoundTripper
	memory    *ccache.Cache[*entry]
	dir       string
	ttl       time.Duration
	log       *logbook.Logbook
	apiMarker string
}

// New creates the transport rooted at baseDir (the .bachadmin/cache
// directory). Older versioned directories under baseDir are pruned.
func New(inner http.RoundTripper, baseDir string, ttl time.Duration, maxEntries int, log *logbook.Logbook) (*Transport, error) {
	if inner == nil {
		inner = http.DefaultTransport
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 500
	}
	dir := filepath.Join(baseDir, dirPrefix+Version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	t := &Transport{
		inner:     inner,
		memory:    ccache.New(ccache.Configure[*entry]().MaxSize(int64(maxEntries))),
		dir:       dir,
		ttl:       ttl,
		log:       log.Scoped("cache"),
		apiMarker: "/api/",
	}
	t.pruneOldVersions(baseDir)
	return t, nil
}

// pruneOldVersions deletes sibling cache directories left by previous
// versions of the entry format.
func (t *Transport) pruneOldVersions(baseDir string) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), dirPrefix) {
			continue
		}
		if e.Name() == dirPrefix+Version {
			continue
		}
		if err := os.RemoveAll(filepath.Join(baseDir, e.Name())); err == nil {
			t.log.Info("pruned stale cache %s", e.Name())
		}
	}
}

// RoundTrip dispatches the request per its class.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.inner.RoundTrip(req)
	}
	if t.isAPI(req) {
		return t.networkFirst(req)
	}
	return t.cacheFirst(req)
}

func (t *Transport) isAPI(req *http.Request) bool {
	return strings.Contains(req.URL.Path, t.apiMarker) || strings.HasPrefix(req.URL.Path, strings.TrimSuffix(t.apiMarker, "/"))
}

// networkFirst tries the backend and falls back to the stored response for
// the exact request. Only precache-listed endpoints are written through.
func (t *Transport) networkFirst(req *http.Request) (*http.Response, error) {
	key := requestKey(req)
	res, err := t.inner.RoundTrip(req)
	if err != nil {
		if ent := t.lookup(key); ent != nil {
			t.log.Warn("network failed for %s, serving cached copy from %s", req.URL.Path, ent.SavedAt.Format(time.RFC3339))
			return ent.response(req, true), nil
		}
		return nil, err
	}
	if res.StatusCode >= 200 && res.StatusCode < 300 && t.isPrecachePath(req.URL.Path) {
		t.storeResponse(key, res)
	}
	return res, nil
}

// cacheFirst serves stored static content and only reaches for the network
// on a miss.
func (t *Transport) cacheFirst(req *http.Request) (*http.Response, error) {
	key := requestKey(req)
	if ent := t.lookup(key); ent != nil {
		return ent.response(req, true), nil
	}
	res, err := t.inner.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		t.storeResponse(key, res)
	}
	return res, nil
}

// Warm prefetches the critical endpoints through this transport so their
// responses are available offline ("install" step of the old worker).
func (t *Transport) Warm(baseURL, token string, paths []string) {
	client := &http.Client{Transport: t, Timeout: 10 * time.Second}
	base := strings.TrimRight(baseURL, "/")
	for _, p := range paths {
		url := base + "/" + strings.TrimLeft(p, "/")
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			continue
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		res, err := client.Do(req)
		if err != nil {
			t.log.Warn("precache %s: %v", p, err)
			continue
		}
		io.Copy(io.Discard, res.Body)
		res.Body.Close()
	}
}

func (t *Transport) isPrecachePath(path string) bool {
	for _, p := range PrecachePaths {
		if strings.HasSuffix(strings.TrimRight(path, "/"), p) {
			return true
		}
	}
	return false
}

// lookup checks memory first, then disk, promoting disk hits into memory.
func (t *Transport) lookup(key string) *entry {
	if item := t.memory.Get(key); item != nil && !item.Expired() {
		return item.Value()
	}
	data, err := os.ReadFile(t.entryPath(key))
	if err != nil {
		return nil
	}
	var ent entry
	if err := json.Unmarshal(data, &ent); err != nil {
		// Corrupt entry: drop it rather than serve garbage.
		_ = os.Remove(t.entryPath(key))
		return nil
	}
	t.memory.Set(key, &ent, t.ttl)
	return &ent
}

// storeResponse persists a response to both levels, replacing the response
// body with a replayable reader. Disk failures are swallowed.
func (t *Transport) storeResponse(key string, res *http.Response) {
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		res.Body = io.NopCloser(bytes.NewReader(nil))
		return
	}
	res.Body = io.NopCloser(bytes.NewReader(body))

	ent := &entry{
		Status:  res.StatusCode,
		Header:  res.Header.Clone(),
		Body:    body,
		SavedAt: time.Now().UTC(),
	}
	t.memory.Set(key, ent, t.ttl)
	if data, err := json.Marshal(ent); err == nil {
		_ = os.WriteFile(t.entryPath(key), data, 0o600)
	}
}

func (t *Transport) entryPath(key string) string {
	return filepath.Join(t.dir, key+".json")
}

// requestKey identifies the exact request: method, host, path and query.
func requestKey(req *http.Request) string {
	sum := sha256.Sum256([]byte(req.Method + " " + req.URL.Host + req.URL.RequestURI()))
	return hex.EncodeToString(sum[:])
}

// response rebuilds an http.Response from a stored entry. fromCache adds a
// marker header so screens can tell the user they are looking at old data.
func (e *entry) response(req *http.Request, fromCache bool) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if fromCache {
		header.Set("X-Bachadmin-Cache", e.SavedAt.Format(time.RFC3339))
	}
	return &http.Response{
		StatusCode:    e.Status,
		Status:        http.StatusText(e.Status),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
