package validate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/corevalidate/middleware/pkg/constants"
	"github.com/corevalidate/middleware/pkg/logger"
	"github.com/corevalidate/middleware/pkg/rules"
)

var pipelineLog = logger.New("validate:pipeline")

// ExecutionModel is a pipeline-level setting; validators cannot override
// it.
type ExecutionModel string

const (
	ExecutionTurnBased ExecutionModel = "turn_based"
	ExecutionParallel  ExecutionModel = "parallel"
)

// Config configures a Pipeline.
type Config struct {
	ExecutionModel   ExecutionModel
	DefaultTimeoutMS uint32
	CacheEnabled     bool
	CacheMaxAge      time.Duration
	CacheMaxEntries  int
	Consensus        ConsensusConfig
	ContextDir       string
}

// HumanHandler is the subset of the Human-Decision Handler's surface the
// Pipeline depends on.
type HumanHandler interface {
	RequestDecision(kind DecisionKind, title, description string, summary *ValidationSummary, relevant []ValidatorResult, requestContext string, opts *RequestOptions) (*Response, error)
	HasPending() bool
}

// Pipeline is the orchestrator: applicability, ordering, execution,
// timeout, short-circuit, aggregation, consensus.
type Pipeline struct {
	config   Config
	registry *Registry
	cache    *ResultCache
	resolver *rules.Resolver

	staticRunner StaticRunnerIface
	criticRunner CriticRunnerIface

	handler HumanHandler
}

// StaticRunnerIface and CriticRunnerIface are the Pipeline's external
// collaborator boundaries, expressed as Go interfaces so the Pipeline can be
// constructed with fakes in tests.
type StaticRunnerIface interface {
	Run(ctx context.Context, def *ValidatorDefinition, vctx *ValidationContext) (*ValidatorResult, error)
}

type CriticRunnerIface interface {
	Run(ctx context.Context, def *ValidatorDefinition, vctx *ValidationContext) (*ValidatorResult, error)
}

// New creates a Pipeline. staticRunner/criticRunner may be nil if the
// pipeline will never register a Static or AiCritic validator.
func New(config Config, staticRunner StaticRunnerIface, criticRunner CriticRunnerIface) *Pipeline {
	if config.ExecutionModel == "" {
		config.ExecutionModel = ExecutionTurnBased
	}
	contextDir := config.ContextDir
	if contextDir == "" {
		contextDir = "."
	}

	return &Pipeline{
		config:       config,
		registry:     NewRegistry(),
		cache:        NewResultCache(config.CacheMaxAge, config.CacheMaxEntries),
		resolver:     rules.NewResolver(contextDir),
		staticRunner: staticRunner,
		criticRunner: criticRunner,
	}
}

func (p *Pipeline) RegisterValidator(def *ValidatorDefinition) error { return p.registry.Register(def) }
func (p *Pipeline) UnregisterValidator(id string) bool               { return p.registry.Unregister(id) }
func (p *Pipeline) SetEnabled(id string, enabled bool) bool           { return p.registry.SetEnabled(id, enabled) }
func (p *Pipeline) Get(id string) *ValidatorDefinition                { return p.registry.Get(id) }
func (p *Pipeline) List() []*ValidatorDefinition                      { return p.registry.List() }
func (p *Pipeline) ClearCache()                                       { p.cache.Clear() }
func (p *Pipeline) InvalidateCacheForFile(path string)                { p.cache.InvalidateByFile(path) }
func (p *Pipeline) ContextResolver() *rules.Resolver                  { return p.resolver }
func (p *Pipeline) SetHumanHandler(h HumanHandler)                    { p.handler = h }
func (p *Pipeline) HasPendingHumanDecision() bool {
	return p.handler != nil && p.handler.HasPending()
}

// Validate runs every applicable validator for trigger against ctx and
// returns the aggregated Summary.
func (p *Pipeline) Validate(ctx context.Context, trigger TriggerKind, vctx *ValidationContext) (*ValidationSummary, error) {
	vctx.Trigger = trigger

	p.resolveContext(vctx)

	applicable := p.applicableValidators(trigger, vctx)

	var results []ValidatorResult
	switch p.config.ExecutionModel {
	case ExecutionParallel:
		results = p.runParallel(ctx, applicable, vctx)
	default:
		results = p.runTurnBased(ctx, applicable, vctx)
	}

	defs := make(map[string]*ValidatorDefinition, len(applicable))
	for _, d := range applicable {
		defs[d.ID] = d
	}
	// Blocked-by/error/warning accounting in Aggregate only looks at
	// definitions that produced a result, but a short-circuited pipeline
	// still needs every *registered* definition reachable for children of
	// a composite that executed — include the full registry.
	for _, d := range p.registry.List() {
		defs[d.ID] = d
	}

	summary := Aggregate(defs, results, p.config.Consensus)
	return summary, nil
}

// ValidateWithHumanApproval runs Validate, then if the summary requires a
// human decision and a handler is set, awaits a decision and folds it
// into overall. A Deferred decision leaves the summary unchanged.
func (p *Pipeline) ValidateWithHumanApproval(ctx context.Context, trigger TriggerKind, vctx *ValidationContext) (*ValidationSummary, *Response, error) {
	summary, err := p.Validate(ctx, trigger, vctx)
	if err != nil {
		return nil, nil, err
	}

	if !summary.RequiresHumanDecision || p.handler == nil {
		return summary, nil, nil
	}

	relevant := blockingResults(summary)
	requestContext := fmt.Sprintf("trigger=%s", trigger)
	resp, err := p.handler.RequestDecision(DecisionApproveReject, "Validation requires a decision",
		"One or more validators blocked this change.", summary, relevant, requestContext, nil)
	if err != nil {
		return summary, nil, err
	}

	switch resp.Decision {
	case DecisionApproved:
		summary.Overall = OverallApproved
		summary.RequiresHumanDecision = false
	case DecisionRejected, DecisionOverridden:
		summary.Overall = OverallRejected
		summary.RequiresHumanDecision = false
	case DecisionDeferred, DecisionCancelled:
		// Summary unchanged.
	}

	return summary, resp, nil
}

// blockingResults returns the subset of summary.Results that caused
// summary.BlockedBy, falling back to Errors when nothing is explicitly
// blocking (e.g. a NeedsRevision overall with no required validator).
func blockingResults(summary *ValidationSummary) []ValidatorResult {
	if len(summary.BlockedBy) == 0 {
		return summary.Errors
	}
	blocked := make(map[string]bool, len(summary.BlockedBy))
	for _, id := range summary.BlockedBy {
		blocked[id] = true
	}
	relevant := make([]ValidatorResult, 0, len(summary.BlockedBy))
	for _, r := range summary.Results {
		if blocked[r.ValidatorID] {
			relevant = append(relevant, r)
		}
	}
	return relevant
}

func (p *Pipeline) resolveContext(vctx *ValidationContext) {
	for i := range vctx.Files {
		merged, err := p.resolver.Resolve(vctx.Files[i].Path)
		if err != nil {
			pipelineLog.Printf("context resolution failed for %s: %v", vctx.Files[i].Path, err)
			merged = &rules.MergedRules{}
		}
		vctx.Files[i].ResolvedRules = merged
	}
}

// applicableValidators filters by enabled/trigger/file_patterns, then
// stable-sorts by ascending priority (ties broken by registration order).
func (p *Pipeline) applicableValidators(trigger TriggerKind, vctx *ValidationContext) []*ValidatorDefinition {
	var applicable []*ValidatorDefinition
	for _, def := range p.registry.List() {
		if !def.Enabled {
			continue
		}
		if _, ok := def.Triggers[trigger]; !ok {
			continue
		}
		if len(def.FilePatterns) > 0 && !anyFileMatches(def.FilePatterns, vctx.Files) {
			continue
		}
		applicable = append(applicable, def)
	}

	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].Priority < applicable[j].Priority
	})
	return applicable
}

func anyFileMatches(patterns []string, files []CandidateFile) bool {
	for _, f := range files {
		if MatchAnyGlob(patterns, f.Path) {
			return true
		}
	}
	return false
}

func (p *Pipeline) runTurnBased(ctx context.Context, defs []*ValidatorDefinition, vctx *ValidationContext) []ValidatorResult {
	var results []ValidatorResult
	for _, def := range defs {
		result := p.executeOne(ctx, def, vctx)
		results = append(results, *result)

		if stopPredicate(def, result) {
			pipelineLog.Printf("stop predicate fired at validator %s, halting turn-based execution", def.ID)
			break
		}
	}
	return results
}

func (p *Pipeline) runParallel(ctx context.Context, defs []*ValidatorDefinition, vctx *ValidationContext) []ValidatorResult {
	pl := pool.NewWithResults[*ValidatorResult]().WithMaxGoroutines(constants.MaxParallelValidators)
	for _, def := range defs {
		def := def
		pl.Go(func() *ValidatorResult {
			return p.executeOne(ctx, def, vctx)
		})
	}
	raw := pl.Wait()

	results := make([]ValidatorResult, 0, len(raw))
	for _, r := range raw {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results
}

// stopPredicate implements the turn-based short-circuit rule: required and
// not approved, or rejected with block_on_failure.
func stopPredicate(def *ValidatorDefinition, result *ValidatorResult) bool {
	if def.Behavior.Required && result.Status != StatusApproved {
		return true
	}
	if result.Status == StatusRejected && def.Behavior.BlockOnFailure {
		return true
	}
	return false
}

// executeOne runs a single validator (cache lookup, timeout enforcement,
// cache store) regardless of execution model; composite validators
// recurse back into this same path for each child.
func (p *Pipeline) executeOne(ctx context.Context, def *ValidatorDefinition, vctx *ValidationContext) *ValidatorResult {
	if def.Behavior.Cacheable && p.config.CacheEnabled {
		if cached, ok := p.cache.Get(def.ID, vctx); ok {
			return &cached
		}
	}

	result := p.runWithTimeout(ctx, def, vctx)

	if def.Behavior.HasWeight && result.Metadata == nil {
		result.Metadata = map[string]any{}
	}
	if def.Behavior.HasWeight {
		result.Metadata["weight"] = def.Behavior.Weight
	}

	if def.Behavior.Cacheable && p.config.CacheEnabled && result.Status != StatusTimedOut && result.Status != StatusSkipped {
		p.cache.Set(def.ID, vctx, *result)
	}

	return result
}

func (p *Pipeline) runWithTimeout(ctx context.Context, def *ValidatorDefinition, vctx *ValidationContext) *ValidatorResult {
	timeoutMS := def.Behavior.TimeoutMS
	if timeoutMS == 0 {
		timeoutMS = p.config.DefaultTimeoutMS
	}

	timeout := constants.DefaultValidatorTimeout
	if timeoutMS != 0 {
		timeout = time.Duration(timeoutMS) * time.Millisecond
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan *ValidatorResult, 1)

	go func() {
		done <- p.execute(runCtx, def, vctx)
	}()

	select {
	case result := <-done:
		result.DurationMS = time.Since(start).Milliseconds()
		return result
	case <-runCtx.Done():
		status := StatusTimedOut
		severity := SeverityWarning
		switch def.Behavior.OnTimeout {
		case OnTimeoutSkip:
			status = StatusSkipped
		case OnTimeoutError:
			severity = SeverityError
		}
		return &ValidatorResult{
			ValidatorID: def.ID,
			Status:      status,
			Severity:    severity,
			Message:     "validator exceeded its timeout",
			DurationMS:  time.Since(start).Milliseconds(),
		}
	}
}

// execute dispatches to the runner matching def.Kind, mapping runner
// errors to a Rejected/Error result rather than propagating.
func (p *Pipeline) execute(ctx context.Context, def *ValidatorDefinition, vctx *ValidationContext) *ValidatorResult {
	switch def.Kind {
	case KindStatic:
		if p.staticRunner == nil {
			return &ValidatorResult{ValidatorID: def.ID, Status: StatusSkipped, Severity: SeverityWarning, Message: "no static runner configured"}
		}
		result, err := p.staticRunner.Run(ctx, def, vctx)
		if err != nil {
			return &ValidatorResult{ValidatorID: def.ID, Status: StatusRejected, Severity: SeverityError, Message: err.Error()}
		}
		return result

	case KindAiCritic:
		if p.criticRunner == nil {
			return &ValidatorResult{ValidatorID: def.ID, Status: StatusSkipped, Severity: SeverityWarning, Message: "no critic runner configured"}
		}
		result, err := p.criticRunner.Run(ctx, def, vctx)
		if err != nil {
			return &ValidatorResult{ValidatorID: def.ID, Status: StatusRejected, Severity: SeverityError, Message: err.Error()}
		}
		return result

	case KindCustom:
		return runCustom(def, vctx)

	case KindComposite:
		return p.executeComposite(ctx, def, vctx)

	default:
		return &ValidatorResult{ValidatorID: def.ID, Status: StatusRejected, Severity: SeverityError, Message: "unknown validator kind"}
	}
}

// executeComposite recursively executes def's children through the same
// orchestrator path, honoring the active execution model, then aggregates
// their statuses into a single result.
func (p *Pipeline) executeComposite(ctx context.Context, def *ValidatorDefinition, vctx *ValidationContext) *ValidatorResult {
	start := time.Now()

	var children []*ValidatorDefinition
	for _, childID := range def.Children {
		child := p.registry.Get(childID)
		if child == nil {
			pipelineLog.Printf("composite %s references unknown child %s", def.ID, childID)
			continue
		}
		children = append(children, child)
	}

	var childResults []ValidatorResult
	if p.config.ExecutionModel == ExecutionParallel {
		childResults = p.runParallel(ctx, children, vctx)
	} else {
		for _, child := range children {
			childResults = append(childResults, *p.executeOne(ctx, child, vctx))
		}
	}

	status := aggregateCompositeStatus(childResults)
	metadata := map[string]any{"child_results": childResults}

	return &ValidatorResult{
		ValidatorID: def.ID,
		Status:      status,
		Severity:    severityForStatus(status),
		Message:     "composite validator",
		DurationMS:  time.Since(start).Milliseconds(),
		Metadata:    metadata,
	}
}

func aggregateCompositeStatus(results []ValidatorResult) Status {
	if len(results) == 0 {
		return StatusSkipped
	}

	allApprovedOrSkipped := true
	anyRejected := false
	anyNeedsRevision := false
	for _, r := range results {
		if r.Status != StatusApproved && r.Status != StatusSkipped {
			allApprovedOrSkipped = false
		}
		if r.Status == StatusRejected {
			anyRejected = true
		}
		if r.Status == StatusNeedsRevision {
			anyNeedsRevision = true
		}
	}

	switch {
	case allApprovedOrSkipped:
		return StatusApproved
	case anyRejected:
		return StatusRejected
	case anyNeedsRevision:
		return StatusNeedsRevision
	default:
		return StatusSkipped
	}
}

func severityForStatus(status Status) Severity {
	switch status {
	case StatusRejected:
		return SeverityError
	case StatusNeedsRevision:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
