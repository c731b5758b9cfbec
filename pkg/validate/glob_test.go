package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"**/*.ts", "a.ts", true},
		{"**/*.ts", "src/a.ts", true},
		{"**/*.ts", "src/deep/nested/a.ts", true},
		{"**/*.ts", "a.tsx", false},
		{"*.go", "main.go", true},
		{"*.go", "pkg/main.go", false},
		{"src/**/*.go", "src/a/b/c.go", true},
		{"src/**/*.go", "other/a.go", false},
		{"**", "anything/at/all.txt", true},
	}

	for _, tt := range tests {
		got := MatchGlob(tt.pattern, tt.path)
		require.Equal(t, tt.want, got, "pattern=%q path=%q", tt.pattern, tt.path)
	}
}

func TestMatchAnyGlobEmptyMatchesEverything(t *testing.T) {
	require.True(t, MatchAnyGlob(nil, "anything.rs"))
	require.True(t, MatchAnyGlob([]string{}, "anything.rs"))
}

func TestMatchAnyGlob(t *testing.T) {
	patterns := []string{"**/*.ts", "**/*.tsx"}
	require.True(t, MatchAnyGlob(patterns, "src/a.tsx"))
	require.False(t, MatchAnyGlob(patterns, "src/a.go"))
}
