package console

import (
	"strings"
	"testing"

	"github.com/corevalidate/middleware/pkg/validate"
)

func TestFormatValidationSummary_Empty(t *testing.T) {
	output := FormatValidationSummary(&validate.ValidationSummary{}, false)
	if output != "" {
		t.Errorf("expected empty output for a summary with no results, got: %s", output)
	}
}

func TestFormatValidationSummary_Nil(t *testing.T) {
	output := FormatValidationSummary(nil, false)
	if output != "" {
		t.Errorf("expected empty output for a nil summary, got: %s", output)
	}
}

func TestFormatValidationSummary_SingleError(t *testing.T) {
	summary := &validate.ValidationSummary{
		Overall: validate.OverallRejected,
		Results: []validate.ValidatorResult{
			{
				ValidatorID: "eslint",
				Status:      validate.StatusRejected,
				Severity:    validate.SeverityError,
				Message:     "Invalid field 'enginee', did you mean 'engine'?",
				Details: &validate.Details{
					File: "src/main.ts",
					Line: 5,
				},
			},
		},
		Errors: []validate.ValidatorResult{
			{ValidatorID: "eslint", Status: validate.StatusRejected, Severity: validate.SeverityError},
		},
	}

	output := FormatValidationSummary(summary, true)

	if !strings.Contains(output, "1 validator(s) reported errors") {
		t.Errorf("expected error count in output, got: %s", output)
	}
	if !strings.Contains(output, "eslint") {
		t.Errorf("expected validator id in output, got: %s", output)
	}
	if !strings.Contains(output, "src/main.ts:5") {
		t.Errorf("expected file location in verbose output, got: %s", output)
	}
}

func TestFormatValidationSummary_BlockedBy(t *testing.T) {
	summary := &validate.ValidationSummary{
		Overall: validate.OverallBlocked,
		Results: []validate.ValidatorResult{
			{ValidatorID: "required-check", Status: validate.StatusRejected, Severity: validate.SeverityError, Message: "failed"},
		},
		BlockedBy:             []string{"required-check"},
		RequiresHumanDecision: true,
	}

	output := FormatValidationSummary(summary, false)

	if !strings.Contains(output, "Blocked By:") {
		t.Errorf("expected blocked-by section, got: %s", output)
	}
	if !strings.Contains(output, "required-check") {
		t.Errorf("expected blocking validator id, got: %s", output)
	}
	if !strings.Contains(output, "requires a human decision") {
		t.Errorf("expected human decision notice, got: %s", output)
	}
}

func TestFormatValidationSummary_CachedResultNoted(t *testing.T) {
	summary := &validate.ValidationSummary{
		Overall: validate.OverallApproved,
		Results: []validate.ValidatorResult{
			{ValidatorID: "lint", Status: validate.StatusApproved, Severity: validate.SeverityInfo, Message: "ok", Cached: true},
		},
	}

	output := FormatValidationSummary(summary, false)
	if !strings.Contains(output, "(cached result)") {
		t.Errorf("expected cached result marker, got: %s", output)
	}
}

func TestFormatValidationSummary_NonVerboseHidesDetails(t *testing.T) {
	summary := &validate.ValidationSummary{
		Overall: validate.OverallRejected,
		Results: []validate.ValidatorResult{
			{
				ValidatorID: "eslint",
				Status:      validate.StatusRejected,
				Severity:    validate.SeverityError,
				Message:     "bad",
				Details:     &validate.Details{File: "src/main.ts", Line: 5},
			},
		},
		Errors: []validate.ValidatorResult{{ValidatorID: "eslint"}},
	}

	output := FormatValidationSummary(summary, false)
	if strings.Contains(output, "Location:") {
		t.Errorf("expected no location detail in non-verbose output, got: %s", output)
	}
	if !strings.Contains(output, "Use --verbose") {
		t.Errorf("expected verbose hint, got: %s", output)
	}
}
