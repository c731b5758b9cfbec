package gitutil

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// FileDiff is a single file's change extracted from a unified git diff.
type FileDiff struct {
	OldPath  string
	NewPath  string
	IsNew    bool
	IsDelete bool
	Hunks    []string
}

// ParseUnifiedDiff parses a full `git diff` (or `git diff --cached`) document
// into per-file hunks, so the AI Critic prompt builder can attach only the
// hunks relevant to a given candidate file instead of the whole diff blob.
func ParseUnifiedDiff(diff string) ([]FileDiff, error) {
	if strings.TrimSpace(diff) == "" {
		return nil, nil
	}

	files, _, err := gitdiff.Parse(strings.NewReader(diff))
	if err != nil {
		return nil, err
	}

	result := make([]FileDiff, 0, len(files))
	for _, f := range files {
		fd := FileDiff{
			OldPath:  f.OldName,
			NewPath:  f.NewName,
			IsNew:    f.IsNew,
			IsDelete: f.IsDelete,
		}
		for _, frag := range f.TextFragments {
			var b strings.Builder
			fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@ %s\n",
				frag.OldPosition, frag.OldLines, frag.NewPosition, frag.NewLines, frag.Comment)
			for _, line := range frag.Lines {
				prefix := " "
				switch line.Op {
				case gitdiff.OpAdd:
					prefix = "+"
				case gitdiff.OpDelete:
					prefix = "-"
				}
				b.WriteString(prefix)
				b.WriteString(line.Line)
			}
			fd.Hunks = append(fd.Hunks, b.String())
		}
		result = append(result, fd)
	}
	return result, nil
}

// DiffForPath returns the hunks belonging to path, matching against either
// the old or new name so renames and deletes still resolve.
func DiffForPath(diffs []FileDiff, path string) (FileDiff, bool) {
	for _, fd := range diffs {
		if fd.NewPath == path || fd.OldPath == path {
			return fd, true
		}
	}
	return FileDiff{}, false
}
