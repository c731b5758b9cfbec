// Package rules implements the hierarchical context resolver: the Rule
// Model, the markdown Context Parser, the directory Context Watcher, and
// the Context Resolver that merges rule files from coarsest to most
// specific scope for a given source path.
package rules

// Pattern is a requirement to follow, sourced from a "Pattern" /
// "Required Pattern" / "Best Practice" section of a rule file.
type Pattern struct {
	ID          string
	Description string
	SourceFile  string
	Examples    []string
}

// AntiPattern is a thing to avoid and what to use instead.
type AntiPattern struct {
	ID         string
	Forbidden  string
	Alternative string
	Reason     string
	SourceFile string
	Examples   []string
}

// Convention is a stylistic rule.
type Convention struct {
	ID          string
	Description string
	SourceFile  string
	Examples    []string
}

// OverrideKind identifies what an Override directive does to a coarser
// scope's item.
type OverrideKind string

const (
	OverrideExtend  OverrideKind = "extend"
	OverrideReplace OverrideKind = "override"
	OverrideDisable OverrideKind = "disable"
)

// Override modifies items introduced by a coarser scope. NewValue is unused
// for Disable.
type Override struct {
	Kind       OverrideKind
	TargetID   string
	NewValue   string
	SourceFile string
}

// ParsedContext is the output of parsing a single rule file.
type ParsedContext struct {
	Patterns          []Pattern
	AntiPatterns      []AntiPattern
	Conventions       []Convention
	ArchitectureNotes string
	Overrides         []Override
	SourceFile        string
}

// MergedRules is the result of hierarchically merging a chain of
// ParsedContext values, coarsest first. It carries no top-level
// SourceFile — each item keeps its own provenance.
type MergedRules struct {
	Patterns          []Pattern
	AntiPatterns      []AntiPattern
	Conventions       []Convention
	ArchitectureNotes string
	Overrides         []Override
}

// Empty reports whether the merged rule set contributes nothing.
func (m *MergedRules) Empty() bool {
	return m == nil || (len(m.Patterns) == 0 && len(m.AntiPatterns) == 0 &&
		len(m.Conventions) == 0 && m.ArchitectureNotes == "")
}
