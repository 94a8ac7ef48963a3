package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

type entry struct {
	body        []byte
	contentType string
	storedAt    time.Time
}

var (
	mu      sync.RWMutex
	entries = map[string]entry{}
)

// Key generates an xxHash key for the given request path and query.
func Key(path, rawQuery string) string {
	hash := xxhash.Sum64String(path + "?" + rawQuery)
	return fmt.Sprintf("%016x", hash)
}

// Write stores a response body under the given key.
func Write(key string, body []byte, contentType string) {
	mu.Lock()
	defer mu.Unlock()
	entries[key] = entry{
		body:        append([]byte(nil), body...),
		contentType: contentType,
		storedAt:    time.Now(),
	}
}

// Read returns a cached response if it exists and is not expired.
func Read(key string, maxAge time.Duration) ([]byte, string, bool) {
	mu.RLock()
	e, ok := entries[key]
	mu.RUnlock()

	if !ok {
		return nil, "", false
	}
	if time.Since(e.storedAt) > maxAge {
		mu.Lock()
		delete(entries, key)
		mu.Unlock()
		return nil, "", false
	}
	return e.body, e.contentType, true
}

// Clear removes a specific cache entry.
func Clear(key string) {
	mu.Lock()
	defer mu.Unlock()
	delete(entries, key)
}

// ClearAll drops every cached response.
func ClearAll() {
	mu.Lock()
	defer mu.Unlock()
	entries = map[string]entry{}
}
