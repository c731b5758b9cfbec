package validate

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/corevalidate/middleware/pkg/constants"
	"github.com/corevalidate/middleware/pkg/logger"
)

var cacheLog = logger.New("validate:cache")

// resultCacheEntry is the Result Cache's cache entry: the memoized
// result plus the content hash of every file it was computed from, so a
// lookup can detect the rare key collision where the path set matches but
// content differs.
type resultCacheEntry struct {
	result     ValidatorResult
	createdAt  time.Time
	fileHashes map[string]string
}

// ResultCache is a content-hash-keyed memoization of validator results,
// with a TTL and a bounded size enforced by evicting the oldest entries.
// Safe for concurrent use by parallel-mode validator execution.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[string]*resultCacheEntry
	maxAge     time.Duration
	maxEntries int
	now        func() time.Time
}

// NewResultCache creates a ResultCache with the given TTL and maximum
// entry count. A zero maxAge or maxEntries falls back to the defaults
// (5 minutes, 1000 entries).
func NewResultCache(maxAge time.Duration, maxEntries int) *ResultCache {
	if maxAge <= 0 {
		maxAge = constants.DefaultCacheMaxAge
	}
	if maxEntries <= 0 {
		maxEntries = constants.DefaultCacheMaxEntries
	}
	return &ResultCache{
		entries:    make(map[string]*resultCacheEntry),
		maxAge:     maxAge,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// contentHash returns a stable hex-encoded sha256 of content.
func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// fileHashesOf computes the path -> content hash map for ctx.Files.
func fileHashesOf(files []CandidateFile) map[string]string {
	hashes := make(map[string]string, len(files))
	for _, f := range files {
		hashes[f.Path] = contentHash(f.Content)
	}
	return hashes
}

// cacheKey is validator_id : hash_of_sorted(path + ":" + content_hash).
func cacheKey(validatorID string, hashes map[string]string) string {
	paths := make([]string, 0, len(hashes))
	for p := range hashes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		b.WriteString(":")
		b.WriteString(hashes[p])
		b.WriteString("|")
	}
	digest := sha256.Sum256([]byte(b.String()))
	return validatorID + ":" + hex.EncodeToString(digest[:])
}

// Get returns a cached result for (validatorID, ctx.Files), or false if
// there is no valid cached entry. A stale (TTL-expired) or hash-mismatched
// entry is treated as a miss and evicted.
func (c *ResultCache) Get(validatorID string, ctx *ValidationContext) (ValidatorResult, bool) {
	hashes := fileHashesOf(ctx.Files)
	key := cacheKey(validatorID, hashes)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return ValidatorResult{}, false
	}

	if c.now().Sub(entry.createdAt) > c.maxAge {
		delete(c.entries, key)
		return ValidatorResult{}, false
	}

	for path, hash := range hashes {
		if entry.fileHashes[path] != hash {
			delete(c.entries, key)
			return ValidatorResult{}, false
		}
	}

	result := entry.result
	result.Cached = true
	return result, true
}

// Set stores result for (validatorID, ctx.Files). The caller is
// responsible for only calling Set when the validator's behavior is
// cacheable and the result is neither TimedOut nor Skipped.
func (c *ResultCache) Set(validatorID string, ctx *ValidationContext, result ValidatorResult) {
	hashes := fileHashesOf(ctx.Files)
	key := cacheKey(validatorID, hashes)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &resultCacheEntry{
		result:     result,
		createdAt:  c.now(),
		fileHashes: hashes,
	}

	if len(c.entries) > c.maxEntries {
		c.evictOldestLocked()
	}
}

// evictOldestLocked drops the oldest ~10% of entries by createdAt. Caller
// must hold c.mu.
func (c *ResultCache) evictOldestLocked() {
	type keyed struct {
		key       string
		createdAt time.Time
	}
	all := make([]keyed, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, keyed{k, e.createdAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].createdAt.Before(all[j].createdAt) })

	n := int(float64(len(all)) * constants.CacheEvictionFraction)
	if n < 1 {
		n = 1
	}
	for i := 0; i < n && i < len(all); i++ {
		delete(c.entries, all[i].key)
	}
	cacheLog.Printf("evicted %d oldest result cache entries (size now %d)", n, len(c.entries))
}

// InvalidateByFile drops every entry whose file_hashes map contains path.
func (c *ResultCache) InvalidateByFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if _, ok := entry.fileHashes[path]; ok {
			delete(c.entries, key)
		}
	}
}

// Clear empties the cache entirely.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*resultCacheEntry)
}

// Size reports the current number of entries, for tests and diagnostics.
func (c *ResultCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
