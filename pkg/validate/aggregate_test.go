package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func defMap(defs ...*ValidatorDefinition) map[string]*ValidatorDefinition {
	m := make(map[string]*ValidatorDefinition, len(defs))
	for _, d := range defs {
		m[d.ID] = d
	}
	return m
}

func TestAggregateApprovedHappyPath(t *testing.T) {
	def := staticDef("v_ok", 10)
	results := []ValidatorResult{{ValidatorID: "v_ok", Status: StatusApproved, Severity: SeverityInfo}}

	summary := Aggregate(defMap(def), results, ConsensusConfig{Strategy: ConsensusAnyApprove, MinimumResponses: 1, EscalateToHuman: true})
	require.Equal(t, OverallApproved, summary.Overall)
	require.Empty(t, summary.BlockedBy)
	require.False(t, summary.RequiresHumanDecision)
}

func TestAggregateBlockedByRequired(t *testing.T) {
	def := staticDef("v_req", 10)
	def.Behavior.Required = true
	results := []ValidatorResult{{ValidatorID: "v_req", Status: StatusRejected, Severity: SeverityError}}

	summary := Aggregate(defMap(def), results, ConsensusConfig{Strategy: ConsensusAnyApprove, MinimumResponses: 1, EscalateToHuman: true})
	require.Equal(t, OverallBlocked, summary.Overall)
	require.Equal(t, []string{"v_req"}, summary.BlockedBy)
	require.True(t, summary.RequiresHumanDecision)
}

func TestAggregateBlockedByBlockOnFailure(t *testing.T) {
	def := staticDef("v_block", 10)
	def.Behavior.BlockOnFailure = true
	results := []ValidatorResult{{ValidatorID: "v_block", Status: StatusRejected, Severity: SeverityError}}

	summary := Aggregate(defMap(def), results, ConsensusConfig{Strategy: ConsensusAnyApprove, MinimumResponses: 1})
	require.Equal(t, OverallBlocked, summary.Overall)
}

func TestAggregateRejectedWithoutBlocking(t *testing.T) {
	// S6: three validators Approved, Approved, Rejected, none required or
	// blocking -> overall Rejected, no human decision.
	a := staticDef("a", 1)
	b := staticDef("b", 2)
	c := staticDef("c", 3)
	results := []ValidatorResult{
		{ValidatorID: "a", Status: StatusApproved},
		{ValidatorID: "b", Status: StatusApproved},
		{ValidatorID: "c", Status: StatusRejected, Severity: SeverityError},
	}

	summary := Aggregate(defMap(a, b, c), results, ConsensusConfig{Strategy: ConsensusMajority, MinimumResponses: 1, EscalateToHuman: true})
	require.Equal(t, OverallRejected, summary.Overall)
	require.Empty(t, summary.BlockedBy)
	require.False(t, summary.RequiresHumanDecision)
	require.True(t, summary.ConsensusReached)
}

func TestAggregateNeedsRevision(t *testing.T) {
	def := staticDef("v", 1)
	results := []ValidatorResult{{ValidatorID: "v", Status: StatusNeedsRevision}}

	summary := Aggregate(defMap(def), results, ConsensusConfig{Strategy: ConsensusAnyApprove, MinimumResponses: 1})
	require.Equal(t, OverallNeedsRevision, summary.Overall)
}

func TestAggregateVacuousApprovedWhenOnlySkipped(t *testing.T) {
	def := staticDef("v", 1)
	results := []ValidatorResult{{ValidatorID: "v", Status: StatusSkipped}}

	summary := Aggregate(defMap(def), results, ConsensusConfig{Strategy: ConsensusAnyApprove, MinimumResponses: 1})
	require.Equal(t, OverallApproved, summary.Overall)
}

func TestAggregateErrorsAndWarningsPartition(t *testing.T) {
	def1 := staticDef("v1", 1)
	def2 := staticDef("v2", 2)
	results := []ValidatorResult{
		{ValidatorID: "v1", Status: StatusRejected, Severity: SeverityError},
		{ValidatorID: "v2", Status: StatusApproved, Severity: SeverityWarning},
	}

	summary := Aggregate(defMap(def1, def2), results, ConsensusConfig{Strategy: ConsensusAnyApprove, MinimumResponses: 1})
	require.Len(t, summary.Errors, 1)
	require.Len(t, summary.Warnings, 1)
}
