// Package validate implements the validation pipeline: the registry of
// validator definitions, the runners that execute them, the result cache,
// the orchestrator that sequences and aggregates their results, and the
// consensus evaluation that decides whether a Summary needs a human
// decision.
package validate

import (
	"github.com/corevalidate/middleware/pkg/rules"
)

// TriggerKind identifies the event at which the pipeline was invoked.
type TriggerKind string

const (
	TriggerPreToolUse TriggerKind = "pre_tool"
	TriggerOnChange   TriggerKind = "on_change"
	TriggerPreWrite   TriggerKind = "pre_write"
	TriggerPostTool   TriggerKind = "post_tool"
	TriggerPreCommit  TriggerKind = "pre_commit"
	TriggerPeriodic   TriggerKind = "periodic"
	TriggerOnDemand   TriggerKind = "on_demand"
)

// Status is the verdict a single validator reached.
type Status string

const (
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusNeedsRevision Status = "needs_revision"
	StatusSkipped       Status = "skipped"
	StatusTimedOut      Status = "timed_out"
)

// Severity classifies how seriously a result should be treated.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeverityInfo       Severity = "info"
	SeveritySuggestion Severity = "suggestion"
)

// Overall is the aggregated outcome of one validate call.
type Overall string

const (
	OverallApproved      Overall = "approved"
	OverallRejected      Overall = "rejected"
	OverallNeedsRevision Overall = "needs_revision"
	OverallBlocked       Overall = "blocked"
)

// OnFailure controls how a non-approved result affects the pipeline.
type OnFailure string

const (
	OnFailureWarning OnFailure = "warning"
	OnFailureError   OnFailure = "error"
)

// OnTimeout controls the synthetic result produced when a validator
// exceeds its timeout.
type OnTimeout string

const (
	OnTimeoutSkip    OnTimeout = "skip"
	OnTimeoutWarning OnTimeout = "warning"
	OnTimeoutError   OnTimeout = "error"
)

// Kind is the discriminant recorded on a ValidatorDefinition alongside its
// KindConfig; useful for config (de)serialization and logging where a
// plain string is more convenient than a type switch.
type Kind string

const (
	KindStatic    Kind = "static"
	KindAiCritic  Kind = "ai_critic"
	KindCustom    Kind = "custom"
	KindComposite Kind = "composite"
)

// KindConfig is a closed sum type: only StaticConfig, AiCriticConfig,
// CustomConfig, and CompositeConfig implement it. This statically rules
// out the illegal combinations a loosely-typed "kind + optional fields"
// struct would allow (e.g. an AiCritic validator missing a system prompt).
type KindConfig interface {
	kindConfig()
}

// StaticConfig configures a Static validator: a shell command run against
// the candidate files.
type StaticConfig struct {
	Command string
}

func (StaticConfig) kindConfig() {}

// AiCriticConfig configures an AiCritic validator: an LLM asked to review
// the changes.
type AiCriticConfig struct {
	Provider     string
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

func (AiCriticConfig) kindConfig() {}

// CustomFunc is the signature a Custom validator's user-provided function
// must implement.
type CustomFunc func(ctx *ValidationContext) (*ValidatorResult, error)

// CustomConfig configures a Custom validator: a plain Go function value.
type CustomConfig struct {
	Fn CustomFunc
}

func (CustomConfig) kindConfig() {}

// CompositeConfig configures a Composite validator: no extra payload of
// its own beyond the ValidatorDefinition.Children id list.
type CompositeConfig struct{}

func (CompositeConfig) kindConfig() {}

// Behavior controls how a validator's result affects pipeline execution.
type Behavior struct {
	OnFailure       OnFailure
	BlockOnFailure  bool
	Required        bool
	TimeoutMS       uint32
	OnTimeout       OnTimeout
	Cacheable       bool
	Weight          uint32
	HasWeight       bool
}

// ContextConfig controls what rule-derived and diff information the
// AI Critic prompt builder attaches for a given validator.
type ContextConfig struct {
	IncludeDiff     bool
	IncludeFullFile bool
}

// ValidatorDefinition is the full configuration of one validator.
type ValidatorDefinition struct {
	ID            string
	Name          string
	Kind          Kind
	Enabled       bool
	Priority      int32
	Triggers      map[TriggerKind]struct{}
	FilePatterns  []string
	ContextConfig *ContextConfig
	Behavior      Behavior
	KindConfig    KindConfig
	Children      []string

	// registrationOrder records the sequence number of the latest Register
	// call for this definition; set by the Registry, never by the caller.
	// Priority ties are broken by Registry.List order, not by this field.
	registrationOrder int
}

// Details carries the optional, runner-specific detail attached to a
// ValidatorResult.
type Details struct {
	File         string
	Line         int
	Column       int
	SuggestedFix string
	Reasoning    string
}

// ValidatorResult is the outcome of running a single validator once.
type ValidatorResult struct {
	ValidatorID string
	Status      Status
	Severity    Severity
	Message     string
	Details     *Details
	DurationMS  int64
	Cached      bool
	Metadata    map[string]any
}

// CandidateFile is one file under validation. ResolvedRules is populated
// by the orchestrator before validators run; validators read it, they
// never write it.
type CandidateFile struct {
	Path          string
	Content       string
	Diff          string
	Language      string
	RelatedFiles  []string
	ResolvedRules *rules.MergedRules
}

// GitStatus is caller-populated repository state consumed by the AI
// Critic prompt builder's "Git Diff" section.
type GitStatus struct {
	Branch    string
	Staged    []string
	Unstaged  []string
	Untracked []string
}

// Action is a single recent editor/agent action, used only as opaque
// context for AI critics; the core never interprets it.
type Action struct {
	Kind      string
	Timestamp int64
	Detail    string
}

// ToolCall and ToolResult are opaque context carried through a
// ValidationContext for AI Critic prompts; the core never interprets
// them beyond passing them to the prompt builder.
type ToolCall struct {
	Name string
	Args map[string]any
}

type ToolResult struct {
	Output string
	Error  string
}

// ValidationContext is the input bundle for one validate call. The
// orchestrator mutates it only to attach ResolvedRules to each file.
type ValidationContext struct {
	Trigger       TriggerKind
	Timestamp     int64
	Files         []CandidateFile
	GitDiff       string
	GitStatus     *GitStatus
	SessionID     string
	RecentActions []Action
	ToolCall      *ToolCall
	ToolResult    *ToolResult
}

// ValidationSummary is the aggregated outcome of one validate call.
type ValidationSummary struct {
	Overall               Overall
	Results               []ValidatorResult
	RequiresHumanDecision bool
	ConsensusReached      bool
	BlockedBy             []string
	Warnings              []ValidatorResult
	Errors                []ValidatorResult
}
