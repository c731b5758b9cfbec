package validate

import (
	"regexp"
	"strings"
	"sync"
)

var (
	globCacheMu sync.Mutex
	globCache   = map[string]*regexp.Regexp{}
)

// MatchGlob reports whether path matches pattern under the pipeline's glob
// rules: a leading "**/ " matches zero or more directory segments (so the
// pattern also matches an unprefixed path), "*" inside a segment matches
// any run of non-separator characters, and "**" elsewhere matches
// anything including separators.
func MatchGlob(pattern, path string) bool {
	re := compileGlob(pattern)
	return re.MatchString(path)
}

// MatchAnyGlob reports whether path matches at least one pattern. An empty
// pattern list matches everything, matching the orchestrator's
// applicability rule that an absent file_patterns list is unrestricted.
func MatchAnyGlob(patterns []string, path string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if MatchGlob(p, path) {
			return true
		}
	}
	return false
}

func compileGlob(pattern string) *regexp.Regexp {
	globCacheMu.Lock()
	defer globCacheMu.Unlock()

	if re, ok := globCache[pattern]; ok {
		return re
	}

	re := regexp.MustCompile(globToRegexp(pattern))
	globCache[pattern] = re
	return re
}

// globToRegexp translates a glob into an anchored regexp. A pattern
// starting with "**/" is compiled to also match the suffix without that
// prefix, by making the prefix optional.
func globToRegexp(pattern string) string {
	hasDoubleStarPrefix := strings.HasPrefix(pattern, "**/")

	var b strings.Builder
	b.WriteString("^")
	if hasDoubleStarPrefix {
		b.WriteString("(?:.*/)?")
		pattern = strings.TrimPrefix(pattern, "**/")
	}

	i := 0
	for i < len(pattern) {
		switch {
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i += 2
		case pattern[i] == '*':
			b.WriteString("[^/]*")
			i++
		case pattern[i] == '?':
			b.WriteString("[^/]")
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(pattern[i])))
			i++
		}
	}
	b.WriteString("$")
	return b.String()
}
