package rules

import (
	"strings"

	"github.com/corevalidate/middleware/pkg/sliceutil"
)

// MergeChain merges a chain of ParsedContext values, ordered coarsest scope
// first (global context, then each directory level down to the file's own
// directory, then a file-specific rule file last).
//
// For each context in order, its own overrides are applied against
// whatever has accumulated so far, before its own Patterns/AntiPatterns/
// Conventions are appended. This lets a child file disable a parent's rule
// without immediately re-adding it under the same id — a file can never
// disable an item it is about to introduce itself.
func MergeChain(chain []*ParsedContext) *MergedRules {
	merged := &MergedRules{}
	if len(chain) == 0 {
		return merged
	}

	var archNotes []string

	for _, ctx := range chain {
		if ctx == nil {
			continue
		}

		for _, ov := range ctx.Overrides {
			applyOverride(merged, ov)
			merged.Overrides = append(merged.Overrides, ov)
		}

		mergeItems(merged, ctx)

		if ctx.ArchitectureNotes != "" {
			archNotes = append(archNotes, ctx.ArchitectureNotes)
		}
	}

	merged.ArchitectureNotes = strings.Join(archNotes, "\n\n")
	return merged
}

// matches reports whether an item (by id and primary string) is the
// target of an override directive: either the id contains target, or the
// primary string case-insensitively contains target.
func matches(id, primary, target string) bool {
	if strings.Contains(id, target) {
		return true
	}
	return sliceutil.ContainsIgnoreCase(primary, target)
}

func applyOverride(merged *MergedRules, ov Override) {
	switch ov.Kind {
	case OverrideDisable:
		merged.Patterns = filterPatterns(merged.Patterns, func(p Pattern) bool {
			return !matches(p.ID, p.Description, ov.TargetID)
		})
		merged.AntiPatterns = filterAntiPatterns(merged.AntiPatterns, func(a AntiPattern) bool {
			return !matches(a.ID, a.Forbidden, ov.TargetID)
		})
		merged.Conventions = filterConventions(merged.Conventions, func(c Convention) bool {
			return !matches(c.ID, c.Description, ov.TargetID)
		})

	case OverrideReplace:
		for i, p := range merged.Patterns {
			if matches(p.ID, p.Description, ov.TargetID) {
				merged.Patterns[i].Description = ov.NewValue
				merged.Patterns[i].SourceFile = ov.SourceFile
			}
		}
		for i, a := range merged.AntiPatterns {
			if matches(a.ID, a.Forbidden, ov.TargetID) {
				merged.AntiPatterns[i].Forbidden = ov.NewValue
				merged.AntiPatterns[i].SourceFile = ov.SourceFile
			}
		}
		for i, c := range merged.Conventions {
			if matches(c.ID, c.Description, ov.TargetID) {
				merged.Conventions[i].Description = ov.NewValue
				merged.Conventions[i].SourceFile = ov.SourceFile
			}
		}

	case OverrideExtend:
		// Only Patterns are extended, per the merge grammar.
		for i, p := range merged.Patterns {
			if matches(p.ID, p.Description, ov.TargetID) {
				merged.Patterns[i].Description = p.Description + " " + ov.NewValue
			}
		}
	}
}

func mergeItems(merged *MergedRules, ctx *ParsedContext) {
	patternIdx := indexPatterns(merged.Patterns)
	for _, p := range ctx.Patterns {
		if i, ok := patternIdx[p.ID]; ok {
			merged.Patterns[i] = p
		} else {
			patternIdx[p.ID] = len(merged.Patterns)
			merged.Patterns = append(merged.Patterns, p)
		}
	}

	antiIdx := indexAntiPatterns(merged.AntiPatterns)
	for _, a := range ctx.AntiPatterns {
		if i, ok := antiIdx[a.ID]; ok {
			merged.AntiPatterns[i] = a
		} else {
			antiIdx[a.ID] = len(merged.AntiPatterns)
			merged.AntiPatterns = append(merged.AntiPatterns, a)
		}
	}

	convIdx := indexConventions(merged.Conventions)
	for _, c := range ctx.Conventions {
		if i, ok := convIdx[c.ID]; ok {
			merged.Conventions[i] = c
		} else {
			convIdx[c.ID] = len(merged.Conventions)
			merged.Conventions = append(merged.Conventions, c)
		}
	}
}

func indexPatterns(items []Pattern) map[string]int {
	idx := make(map[string]int, len(items))
	for i, p := range items {
		idx[p.ID] = i
	}
	return idx
}

func indexAntiPatterns(items []AntiPattern) map[string]int {
	idx := make(map[string]int, len(items))
	for i, a := range items {
		idx[a.ID] = i
	}
	return idx
}

func indexConventions(items []Convention) map[string]int {
	idx := make(map[string]int, len(items))
	for i, c := range items {
		idx[c.ID] = i
	}
	return idx
}

func filterPatterns(items []Pattern, keep func(Pattern) bool) []Pattern {
	out := items[:0:0]
	for _, p := range items {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func filterAntiPatterns(items []AntiPattern, keep func(AntiPattern) bool) []AntiPattern {
	out := items[:0:0]
	for _, a := range items {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func filterConventions(items []Convention, keep func(Convention) bool) []Convention {
	out := items[:0:0]
	for _, c := range items {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
