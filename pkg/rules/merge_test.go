package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeChainAdditive(t *testing.T) {
	root := &ParsedContext{
		SourceFile: "context.md",
		Patterns:   []Pattern{{ID: "p1", Description: "root pattern"}},
	}
	nested := &ParsedContext{
		SourceFile: "pkg/context.md",
		Patterns:   []Pattern{{ID: "p2", Description: "nested pattern"}},
	}

	merged := MergeChain([]*ParsedContext{root, nested})
	require.Len(t, merged.Patterns, 2)
	require.Equal(t, "p1", merged.Patterns[0].ID)
	require.Equal(t, "p2", merged.Patterns[1].ID)
}

func TestMergeChainDisable(t *testing.T) {
	root := &ParsedContext{
		Patterns: []Pattern{{ID: "p1", Description: "root pattern"}},
	}
	nested := &ParsedContext{
		Overrides: []Override{{Kind: OverrideDisable, TargetID: "p1"}},
	}

	merged := MergeChain([]*ParsedContext{root, nested})
	require.Empty(t, merged.Patterns)
}

func TestMergeChainOverrideReplacesDescription(t *testing.T) {
	root := &ParsedContext{
		Patterns: []Pattern{{ID: "p1", Description: "old description"}},
	}
	nested := &ParsedContext{
		Overrides: []Override{{Kind: OverrideReplace, TargetID: "p1", NewValue: "new description"}},
	}

	merged := MergeChain([]*ParsedContext{root, nested})
	require.Len(t, merged.Patterns, 1)
	require.Equal(t, "new description", merged.Patterns[0].Description)
}

func TestMergeChainExtendAppends(t *testing.T) {
	root := &ParsedContext{
		Patterns: []Pattern{{ID: "p1", Description: "base rule"}},
	}
	nested := &ParsedContext{
		Overrides: []Override{{Kind: OverrideExtend, TargetID: "p1", NewValue: "plus a caveat"}},
	}

	merged := MergeChain([]*ParsedContext{root, nested})
	require.Equal(t, "base rule plus a caveat", merged.Patterns[0].Description)
}

func TestMergeChainEmpty(t *testing.T) {
	merged := MergeChain(nil)
	require.True(t, merged.Empty())
}
