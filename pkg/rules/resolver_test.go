package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolverMergesHierarchy(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "context.md"), "# Patterns\n\n- root level rule\n")
	writeFile(t, filepath.Join(root, "pkg", "context.md"), "# Patterns\n\n- pkg level rule\n")
	writeFile(t, filepath.Join(root, "pkg", "handler.go"), "package pkg\n")

	r := NewResolver(root)
	merged, err := r.Resolve(filepath.Join(root, "pkg", "handler.go"))
	require.NoError(t, err)
	require.Len(t, merged.Patterns, 2)
	require.Equal(t, "root level rule", merged.Patterns[0].Description)
	require.Equal(t, "pkg level rule", merged.Patterns[1].Description)
}

func TestResolverFileSpecificRules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "handler.go"), "package root\n")
	writeFile(t, filepath.Join(root, "handler.md"), "# Patterns\n\n- file specific rule\n")

	r := NewResolver(root)
	merged, err := r.Resolve(filepath.Join(root, "handler.go"))
	require.NoError(t, err)
	require.Len(t, merged.Patterns, 1)
	require.Equal(t, "file specific rule", merged.Patterns[0].Description)
}

func TestResolverCachesResults(t *testing.T) {
	root := t.TempDir()
	ctxPath := filepath.Join(root, "context.md")
	writeFile(t, ctxPath, "# Patterns\n\n- v1\n")
	target := filepath.Join(root, "main.go")
	writeFile(t, target, "package root\n")

	r := NewResolver(root)
	first, err := r.Resolve(target)
	require.NoError(t, err)
	require.Equal(t, "v1", first.Patterns[0].Description)

	// A second resolve with nothing changed on disk must hit the cache
	// rather than re-reading and re-parsing.
	second, err := r.Resolve(target)
	require.NoError(t, err)
	require.Equal(t, "v1", second.Patterns[0].Description)
	require.Same(t, first, second, "unchanged rule files should return the cached merge result")

	// Force the mtime forward so a content change is unambiguously
	// observed even on filesystems with coarse mtime resolution, then
	// resolve again: the stale cache entry must be detected and evicted
	// without an explicit Invalidate call.
	writeFile(t, ctxPath, "# Patterns\n\n- v2\n")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(ctxPath, future, future))

	third, err := r.Resolve(target)
	require.NoError(t, err)
	require.Equal(t, "v2", third.Patterns[0].Description)
}

func TestResolverRootChangeEvictsEverything(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "context.md"), "# Patterns\n\n- rule\n")
	a := filepath.Join(root, "a.go")
	b := filepath.Join(root, "sub", "b.go")
	writeFile(t, a, "package root\n")
	writeFile(t, b, "package sub\n")

	r := NewResolver(root)
	_, err := r.Resolve(a)
	require.NoError(t, err)
	_, err = r.Resolve(b)
	require.NoError(t, err)
	require.Equal(t, 2, r.Size())

	r.Invalidate(filepath.Join(root, "context.md"))
	require.Equal(t, 0, r.Size())
}

func TestIsRuleFile(t *testing.T) {
	require.True(t, IsRuleFile("/a/b/context.md"))
	require.True(t, IsRuleFile("/a/b/handler.go.md"))
	require.False(t, IsRuleFile("/a/b/handler.go"))
}
