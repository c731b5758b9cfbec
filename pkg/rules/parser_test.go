package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMarkdownPatterns(t *testing.T) {
	content := `# Patterns

- Always validate input at the boundary
- Use context.Context for cancellation

# Anti-Patterns

- ` + "`panic(err)`" + ` → return the error to the caller (keeps control flow explicit)
- Global mutable state

# Conventions

- Exported functions get a doc comment
`
	ctx := ParseMarkdown(content, "src/api/context.md")

	require.Len(t, ctx.Patterns, 2)
	require.Equal(t, "Always validate input at the boundary", ctx.Patterns[0].Description)

	require.Len(t, ctx.AntiPatterns, 2)
	require.Equal(t, "panic(err)", ctx.AntiPatterns[0].Forbidden)
	require.Equal(t, "return the error to the caller", ctx.AntiPatterns[0].Alternative)
	require.Equal(t, "keeps control flow explicit", ctx.AntiPatterns[0].Reason)
	require.Equal(t, "Global mutable state", ctx.AntiPatterns[1].Forbidden)
	require.Equal(t, "(see context for alternatives)", ctx.AntiPatterns[1].Alternative)

	require.Len(t, ctx.Conventions, 1)
}

func TestParseMarkdownOverrides(t *testing.T) {
	content := `@override: "src-api-context-1" use structured logging instead
@disable: "src-api-context-2"
`
	ctx := ParseMarkdown(content, "src/api/nested/context.md")
	require.Len(t, ctx.Overrides, 2)
	require.Equal(t, OverrideReplace, ctx.Overrides[0].Kind)
	require.Equal(t, "src-api-context-1", ctx.Overrides[0].TargetID)
	require.Equal(t, "use structured logging instead", ctx.Overrides[0].NewValue)
	require.Equal(t, OverrideDisable, ctx.Overrides[1].Kind)
}

func TestParseMarkdownCodeBlockExamples(t *testing.T) {
	content := "# Patterns\n\n- Wrap errors with context\n\n# Examples\n\n- Wrap errors with context\n```go\nfmt.Errorf(\"doing x: %w\", err)\n```\n"
	ctx := ParseMarkdown(content, "context.md")
	require.Len(t, ctx.Patterns, 1)
	require.Len(t, ctx.Patterns[0].Examples, 1)
	require.Contains(t, ctx.Patterns[0].Examples[0], "fmt.Errorf")
}

func TestParseMarkdownArchitectureNotes(t *testing.T) {
	content := "This service is organized into handlers, a domain layer, and storage.\nHandlers never talk to storage directly.\n"
	ctx := ParseMarkdown(content, "context.md")
	require.Contains(t, ctx.ArchitectureNotes, "handlers, a domain layer")
}

func TestParseMarkdownIDsAreStableAndUnique(t *testing.T) {
	content := "# Patterns\n\n- one\n- two\n- three\n"
	ctx := ParseMarkdown(content, "a/b/context.md")
	require.Len(t, ctx.Patterns, 3)
	seen := map[string]bool{}
	for _, p := range ctx.Patterns {
		require.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		require.Contains(t, p.ID, "a-b-context")
	}
}
