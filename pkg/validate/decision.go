package validate

import "time"

// DecisionKind distinguishes the shape of a human decision request.
type DecisionKind string

const (
	DecisionApproveReject DecisionKind = "approve_reject"
	DecisionChoice        DecisionKind = "choice"
	DecisionFreeform      DecisionKind = "freeform"
	// DecisionOverride asks whether a blocking result should be overridden
	// rather than simply approved or rejected outright.
	DecisionOverride DecisionKind = "override"
)

// Decision is the outcome a human (or a decision-subscriber acting on
// their behalf) returns for a request.
type Decision string

const (
	DecisionApproved   Decision = "approved"
	DecisionRejected   Decision = "rejected"
	DecisionOverridden Decision = "overridden"
	DecisionDeferred   Decision = "deferred"
	DecisionCancelled  Decision = "cancelled"
)

// RequestOptions customizes a decision request: a set of named choices
// for DecisionChoice, and an optional timeout after which the request
// resolves to DecisionDeferred, or to DecisionRejected when the handler
// rejects on expiry.
type RequestOptions struct {
	Choices   []string
	TimeoutMS uint32
}

// Response is the resolved outcome of a decision request.
type Response struct {
	Decision    Decision
	Choice      string
	Comment     string
	RespondedAt time.Time
}
