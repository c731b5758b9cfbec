package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func approvedVote(id string) ValidatorResult { return ValidatorResult{ValidatorID: id, Status: StatusApproved} }
func rejectedVote(id string) ValidatorResult { return ValidatorResult{ValidatorID: id, Status: StatusRejected} }

func TestConsensusInsufficientResponses(t *testing.T) {
	cfg := ConsensusConfig{Strategy: ConsensusUnanimous, MinimumResponses: 3}
	result := EvaluateConsensus([]ValidatorResult{approvedVote("a")}, cfg)
	require.False(t, result.Reached)
	require.Equal(t, "insufficient_responses", result.Reason)
}

func TestConsensusUnanimous(t *testing.T) {
	cfg := ConsensusConfig{Strategy: ConsensusUnanimous, MinimumResponses: 1}
	require.True(t, EvaluateConsensus([]ValidatorResult{approvedVote("a"), approvedVote("b")}, cfg).Approved)
	require.False(t, EvaluateConsensus([]ValidatorResult{approvedVote("a"), rejectedVote("b")}, cfg).Approved)
}

func TestConsensusMajorityStrictGreaterThan(t *testing.T) {
	cfg := ConsensusConfig{Strategy: ConsensusMajority, MinimumResponses: 1}
	// S6: Approved, Approved, Rejected -> 2/3 approved, majority passes.
	r := EvaluateConsensus([]ValidatorResult{approvedVote("a"), approvedVote("b"), rejectedVote("c")}, cfg)
	require.True(t, r.Reached)
	require.True(t, r.Approved)

	// Tie: 1 approved, 1 rejected -> not strictly greater than half, fails.
	tie := EvaluateConsensus([]ValidatorResult{approvedVote("a"), rejectedVote("b")}, cfg)
	require.False(t, tie.Approved)
}

func TestConsensusAnyApprove(t *testing.T) {
	cfg := ConsensusConfig{Strategy: ConsensusAnyApprove, MinimumResponses: 1}
	require.True(t, EvaluateConsensus([]ValidatorResult{rejectedVote("a"), approvedVote("b")}, cfg).Approved)
	require.False(t, EvaluateConsensus([]ValidatorResult{rejectedVote("a"), rejectedVote("b")}, cfg).Approved)
}

func TestConsensusNoRejections(t *testing.T) {
	cfg := ConsensusConfig{Strategy: ConsensusNoRejections, MinimumResponses: 1}
	require.True(t, EvaluateConsensus([]ValidatorResult{approvedVote("a"), {ValidatorID: "b", Status: StatusNeedsRevision}}, cfg).Approved)
	require.False(t, EvaluateConsensus([]ValidatorResult{approvedVote("a"), rejectedVote("b")}, cfg).Approved)
}

func TestConsensusWeighted(t *testing.T) {
	cfg := ConsensusConfig{Strategy: ConsensusWeighted, MinimumResponses: 1}
	heavy := ValidatorResult{ValidatorID: "a", Status: StatusApproved, Metadata: map[string]any{"weight": 3}}
	light := ValidatorResult{ValidatorID: "b", Status: StatusRejected, Metadata: map[string]any{"weight": 1}}
	require.True(t, EvaluateConsensus([]ValidatorResult{heavy, light}, cfg).Approved)
}

func TestConsensusSkippedAndTimedOutExcludedFromVote(t *testing.T) {
	cfg := ConsensusConfig{Strategy: ConsensusUnanimous, MinimumResponses: 1}
	skipped := ValidatorResult{ValidatorID: "a", Status: StatusSkipped}
	approved := approvedVote("b")
	result := EvaluateConsensus([]ValidatorResult{skipped, approved}, cfg)
	require.True(t, result.Reached)
	require.True(t, result.Approved)
}
