package rules

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/corevalidate/middleware/pkg/logger"
)

var resolveLog = logger.New("rules:resolver")

// ContextFileName is the name of a directory-level rule file, merged for
// every path beneath the directory it lives in.
const ContextFileName = "context.md"

// cacheEntry mirrors the Context Resolver's cache entry: the merged
// result plus the mtime of every rule file that contributed to it, so a
// hit can be validated even without an explicit watcher event.
type cacheEntry struct {
	merged   *MergedRules
	mtimes   map[string]time.Time
	cachedAt time.Time
}

// Resolver computes, for a given candidate file path, the merged rule set
// formed by walking from the repository root down to that file's own
// directory (each context.md along the way, coarsest first) and finally
// any file-specific "<name>.md" sitting next to the candidate file.
//
// Results are cached by resolved path and invalidated either by a Watcher
// Event or, lazily, when a cached entry's recorded mtimes no longer match
// the filesystem.
type Resolver struct {
	root string

	mu    sync.RWMutex
	cache map[string]*cacheEntry
}

// NewResolver creates a Resolver rooted at root, the repository (or
// workspace) root directory used to stop the upward directory walk.
func NewResolver(root string) *Resolver {
	return &Resolver{
		root:  filepath.Clean(root),
		cache: make(map[string]*cacheEntry),
	}
}

// Resolve returns the merged rules applicable to path, which must be a
// path to a candidate source file (not a directory).
func (r *Resolver) Resolve(path string) (*MergedRules, error) {
	key := filepath.Clean(path)

	if entry, ok := r.lookup(key); ok {
		return entry.merged, nil
	}

	candidates := r.candidateFiles(key)

	var chain []*ParsedContext
	mtimes := make(map[string]time.Time)
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		content, err := os.ReadFile(c)
		if err != nil {
			resolveLog.Printf("failed to read rule file %s: %v", c, err)
			continue
		}
		mtimes[c] = info.ModTime()
		chain = append(chain, ParseMarkdown(string(content), c))
	}

	merged := MergeChain(chain)

	r.mu.Lock()
	r.cache[key] = &cacheEntry{merged: merged, mtimes: mtimes, cachedAt: time.Now()}
	r.mu.Unlock()

	return merged, nil
}

// lookup returns a cached entry only if every rule file it recorded still
// exists with the same mtime; any mismatch evicts the entry.
func (r *Resolver) lookup(key string) (*cacheEntry, bool) {
	r.mu.RLock()
	entry, ok := r.cache[key]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	for path, mtime := range entry.mtimes {
		info, err := os.Stat(path)
		if err != nil || !info.ModTime().Equal(mtime) {
			r.mu.Lock()
			delete(r.cache, key)
			r.mu.Unlock()
			return nil, false
		}
	}
	return entry, true
}

// candidateFiles computes the ordered list of rule files for path:
// the global root context.md, a context.md at each directory prefix, and
// finally a file-specific "<basename-without-ext>.md" sidecar.
func (r *Resolver) candidateFiles(path string) []string {
	dir := filepath.Dir(path)
	rel, err := filepath.Rel(r.root, dir)
	if err != nil {
		rel = "."
	}

	var dirs []string
	cur := r.root
	dirs = append(dirs, cur)
	if rel != "." && rel != "" {
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			cur = filepath.Join(cur, part)
			dirs = append(dirs, cur)
		}
	}

	var candidates []string
	for _, d := range dirs {
		candidates = append(candidates, filepath.Join(d, ContextFileName))
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	fileSpecific := filepath.Join(dir, strings.TrimSuffix(base, ext)+".md")
	candidates = append(candidates, fileSpecific)

	return candidates
}

// Invalidate drops every cache entry whose recorded mtime map mentions
// changedPath. If changedPath is the root context.md, every entry is
// evicted, since any resolve may transitively depend on it.
func (r *Resolver) Invalidate(changedPath string) {
	changedPath = filepath.Clean(changedPath)

	if changedPath == filepath.Join(r.root, ContextFileName) {
		resolveLog.Printf("root context changed, evicting entire cache")
		r.InvalidateAll()
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, entry := range r.cache {
		if _, ok := entry.mtimes[changedPath]; ok {
			delete(r.cache, key)
		}
	}
}

// InvalidateAll drops the entire resolution cache unconditionally.
func (r *Resolver) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*cacheEntry)
}

// Size reports the number of cached resolutions, for tests and diagnostics.
func (r *Resolver) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// WatchAndInvalidate subscribes to w and invalidates the resolver's cache
// as rule-file events arrive, until w is closed. Intended to run in its
// own goroutine.
func (r *Resolver) WatchAndInvalidate(w *Watcher) {
	for evt := range w.Subscribe() {
		r.Invalidate(evt.Path)
	}
}

// IsRuleFile reports whether path looks like a rule file the resolver
// would read: a context.md at any directory level, or a "<source>.md"
// file-specific sidecar.
func IsRuleFile(path string) bool {
	base := filepath.Base(path)
	if base == ContextFileName {
		return true
	}
	return strings.HasSuffix(base, ".md")
}
