package validate

// Aggregate computes a ValidationSummary from a set of
// validator results, the definitions that produced them (for the
// required/block_on_failure test), and the pipeline's consensus config.
func Aggregate(defs map[string]*ValidatorDefinition, results []ValidatorResult, consensus ConsensusConfig) *ValidationSummary {
	summary := &ValidationSummary{Results: results}

	for _, r := range results {
		switch r.Severity {
		case SeverityError:
			summary.Errors = append(summary.Errors, r)
		case SeverityWarning:
			summary.Warnings = append(summary.Warnings, r)
		}

		def := defs[r.ValidatorID]
		if def == nil {
			continue
		}
		blocking := (def.Behavior.Required && r.Status != StatusApproved) ||
			(def.Behavior.BlockOnFailure && r.Status == StatusRejected)
		if blocking {
			summary.BlockedBy = append(summary.BlockedBy, def.ID)
		}
	}

	summary.Overall = overallFrom(summary.BlockedBy, results)

	cr := EvaluateConsensus(results, consensus)
	summary.ConsensusReached = cr.Reached

	summary.RequiresHumanDecision = (len(summary.BlockedBy) > 0 || !cr.Reached) && consensus.EscalateToHuman

	return summary
}

func overallFrom(blockedBy []string, results []ValidatorResult) Overall {
	if len(blockedBy) > 0 {
		return OverallBlocked
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
		return OverallApproved
	case anyRejected:
		return OverallRejected
	case anyNeedsRevision:
		return OverallNeedsRevision
	default:
		return OverallApproved
	}
}
