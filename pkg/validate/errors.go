package validate

import "fmt"

// ErrorKind is the internal error taxonomy. Only ErrorKinds documented as
// "surfaced" in the component design escape the pipeline as a returned
// error; everything else is folded into a ValidatorResult instead.
type ErrorKind string

const (
	ErrValidatorNotFound        ErrorKind = "validator_not_found"
	ErrValidatorExecutionFailed ErrorKind = "validator_execution_failed"
	ErrValidatorTimeout         ErrorKind = "validator_timeout"
	ErrInvalidValidatorConfig   ErrorKind = "invalid_validator_config"
	ErrContextResolutionFailed  ErrorKind = "context_resolution_failed"
	ErrContextParseError        ErrorKind = "context_parse_error"
	ErrCacheError               ErrorKind = "cache_error"
	ErrConsensusNotReached      ErrorKind = "consensus_not_reached"
	ErrPipelineExecutionFailed  ErrorKind = "pipeline_execution_failed"
)

// Error wraps an ErrorKind with context, compatible with errors.Is and
// errors.As via Unwrap.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, &Error{Kind: X}) to match any *Error carrying
// the same Kind, regardless of Message or wrapped Err.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewInvalidConfigError constructs the error surfaced at registration or
// config-load time when a definition or document fails its invariants.
func NewInvalidConfigError(message string) *Error {
	return newError(ErrInvalidValidatorConfig, message, nil)
}
