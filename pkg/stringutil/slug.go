package stringutil

import "strings"

// Slugify converts a path or title into a lowercase, hyphen-separated
// identifier fragment, suitable for combining with a sequential index to
// build a stable rule id.
//
// Examples:
//
//	Slugify("src/a/b/context.md")  // returns "src-a-b-context-md"
//	Slugify("Anti Patterns!!")     // returns "anti-patterns"
func Slugify(s string) string {
	var b strings.Builder
	lastWasHyphen := true // avoid leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasHyphen = false
		default:
			if !lastWasHyphen {
				b.WriteByte('-')
				lastWasHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
