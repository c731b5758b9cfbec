package validate

// runCustom invokes a Custom validator's user-provided function. Errors
// from the function map to a Rejected/Error result rather than
// propagating, so a single misbehaving validator can't fail the whole
// pipeline run.
func runCustom(def *ValidatorDefinition, vctx *ValidationContext) *ValidatorResult {
	cfg, ok := def.KindConfig.(CustomConfig)
	if !ok {
		return &ValidatorResult{
			ValidatorID: def.ID,
			Status:      StatusRejected,
			Severity:    SeverityError,
			Message:     "custom runner invoked on non-custom validator",
		}
	}

	result, err := cfg.Fn(vctx)
	if err != nil {
		return &ValidatorResult{
			ValidatorID: def.ID,
			Status:      StatusRejected,
			Severity:    SeverityError,
			Message:     err.Error(),
		}
	}
	result.ValidatorID = def.ID
	return result
}
