// Package constants centralizes default values shared across the
// validation pipeline that would otherwise be duplicated as magic
// numbers in the orchestrator, the rule-file watcher, and the AI critic
// runner.
package constants

import "time"

// DefaultValidatorTimeout is used when neither a validator definition nor
// the pipeline config supplies a timeout.
const DefaultValidatorTimeout = 30 * time.Second

// RuleWatchDebounce is the window over which rapid successive rule-file
// writes collapse into a single watcher event.
const RuleWatchDebounce = 100 * time.Millisecond

// DefaultCacheMaxAge and DefaultCacheMaxEntries are the Result Cache's
// fallback TTL and capacity when a pipeline config leaves them unset.
const (
	DefaultCacheMaxAge     = 5 * time.Minute
	DefaultCacheMaxEntries = 1000
)

// CacheEvictionFraction is the share of entries removed, oldest first,
// when the Result Cache exceeds DefaultCacheMaxEntries.
const CacheEvictionFraction = 0.10

// DefaultCriticTemperature is used when an AI Critic validator's config
// does not specify one.
const DefaultCriticTemperature = 0.3

// CriticFullFileTruncation is the character limit applied to a
// candidate file's full content in an AI Critic prompt before an
// explicit truncation marker is appended.
const CriticFullFileTruncation = 10000

// DefaultConsensusMinimumResponses is used when a ConsensusConfig leaves
// minimum_responses unset (zero), meaning any number of voting results
// is sufficient.
const DefaultConsensusMinimumResponses = 0

// MaxParallelValidators bounds concurrent validator execution in
// parallel execution mode.
const MaxParallelValidators = 8

// CLIName is the binary name used in cobra's Use field and in usage
// examples printed by validatectl's subcommands.
const CLIName = "validatectl"

// HumanDecisionTimeout is a five-minute response window for a
// RequestDecision call. decision.Handler does not apply it: a request
// without a positive RequestOptions.TimeoutMS waits until it is answered
// or cancelled.
const HumanDecisionTimeout = 5 * time.Minute
