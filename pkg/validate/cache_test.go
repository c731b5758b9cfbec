package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ctxWithFiles(files ...CandidateFile) *ValidationContext {
	return &ValidationContext{Files: files}
}

func TestResultCacheMissThenHit(t *testing.T) {
	c := NewResultCache(time.Minute, 100)
	ctx := ctxWithFiles(CandidateFile{Path: "a.ts", Content: "const x = 1;"})

	_, ok := c.Get("v1", ctx)
	require.False(t, ok)

	c.Set("v1", ctx, ValidatorResult{ValidatorID: "v1", Status: StatusApproved})

	result, ok := c.Get("v1", ctx)
	require.True(t, ok)
	require.True(t, result.Cached)
	require.Equal(t, StatusApproved, result.Status)
}

func TestResultCacheKeyPurity(t *testing.T) {
	ctx1 := ctxWithFiles(CandidateFile{Path: "a.ts", Content: "x"}, CandidateFile{Path: "b.ts", Content: "y"})
	ctx2 := ctxWithFiles(CandidateFile{Path: "b.ts", Content: "y"}, CandidateFile{Path: "a.ts", Content: "x"})

	require.Equal(t, cacheKey("v1", fileHashesOf(ctx1.Files)), cacheKey("v1", fileHashesOf(ctx2.Files)))
}

func TestResultCacheMissOnContentChange(t *testing.T) {
	c := NewResultCache(time.Minute, 100)
	ctx1 := ctxWithFiles(CandidateFile{Path: "a.ts", Content: "v1"})
	ctx2 := ctxWithFiles(CandidateFile{Path: "a.ts", Content: "v2"})

	c.Set("v1", ctx1, ValidatorResult{ValidatorID: "v1", Status: StatusApproved})

	_, ok := c.Get("v1", ctx2)
	require.False(t, ok)
}

func TestResultCacheInvarianceUnderNonContentChanges(t *testing.T) {
	c := NewResultCache(time.Minute, 100)
	ctx1 := &ValidationContext{
		Files:     []CandidateFile{{Path: "a.ts", Content: "x"}},
		SessionID: "session-1",
		Timestamp: 1,
	}
	c.Set("v1", ctx1, ValidatorResult{ValidatorID: "v1", Status: StatusApproved})

	ctx2 := &ValidationContext{
		Files:     []CandidateFile{{Path: "a.ts", Content: "x"}},
		SessionID: "session-2",
		Timestamp: 999,
		RecentActions: []Action{{Kind: "edit"}},
	}

	result, ok := c.Get("v1", ctx2)
	require.True(t, ok)
	require.Equal(t, StatusApproved, result.Status)
}

func TestResultCacheTTLExpiry(t *testing.T) {
	c := NewResultCache(10*time.Millisecond, 100)
	ctx := ctxWithFiles(CandidateFile{Path: "a.ts", Content: "x"})
	c.Set("v1", ctx, ValidatorResult{ValidatorID: "v1", Status: StatusApproved})

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("v1", ctx)
	require.False(t, ok)
}

func TestResultCacheBoundedSizeEvictsOldest(t *testing.T) {
	c := NewResultCache(time.Minute, 10)
	base := time.Now()
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i := 0; i < 11; i++ {
		ctx := ctxWithFiles(CandidateFile{Path: "a.ts", Content: string(rune('a' + i))})
		c.Set("v1", ctx, ValidatorResult{ValidatorID: "v1", Status: StatusApproved})
	}

	require.LessOrEqual(t, c.Size(), 10)
}

func TestResultCacheInvalidateByFile(t *testing.T) {
	c := NewResultCache(time.Minute, 100)
	ctx := ctxWithFiles(CandidateFile{Path: "a.ts", Content: "x"})
	c.Set("v1", ctx, ValidatorResult{ValidatorID: "v1", Status: StatusApproved})

	c.InvalidateByFile("a.ts")

	_, ok := c.Get("v1", ctx)
	require.False(t, ok)
}
