package console

import (
	"fmt"
	"sort"
	"strings"

	"github.com/corevalidate/middleware/pkg/validate"
)

// severityOrder defines the display order for severity levels.
var severityOrder = map[validate.Severity]int{
	validate.SeverityError:      1,
	validate.SeverityWarning:    2,
	validate.SeverityInfo:       3,
	validate.SeveritySuggestion: 4,
}

// statusEmoji maps a validator status to an emoji for quick scanning.
var statusEmoji = map[validate.Status]string{
	validate.StatusApproved:      "✅",
	validate.StatusRejected:      "❌",
	validate.StatusNeedsRevision: "✏️",
	validate.StatusSkipped:       "⏭️",
	validate.StatusTimedOut:      "⏱️",
}

// overallEmoji maps the aggregated verdict to an emoji for the header.
var overallEmoji = map[validate.Overall]string{
	validate.OverallApproved:      "✅",
	validate.OverallRejected:      "❌",
	validate.OverallNeedsRevision: "✏️",
	validate.OverallBlocked:       "🚫",
}

// FormatValidationSummary formats a pipeline ValidationSummary into a
// user-friendly report.
func FormatValidationSummary(summary *validate.ValidationSummary, verbose bool) string {
	if summary == nil || len(summary.Results) == 0 {
		return ""
	}

	var output strings.Builder

	emoji := overallEmoji[summary.Overall]
	output.WriteString(fmt.Sprintf("%s Overall: %s\n\n", emoji, strings.ReplaceAll(string(summary.Overall), "_", " ")))

	if len(summary.Errors) > 0 {
		output.WriteString(FormatErrorMessage(fmt.Sprintf("%d validator(s) reported errors", len(summary.Errors))))
		output.WriteString("\n\n")
	}

	if len(summary.BlockedBy) > 0 {
		output.WriteString(FormatListHeader("Blocked By:"))
		output.WriteString("\n")
		for _, id := range summary.BlockedBy {
			output.WriteString(fmt.Sprintf("  - %s\n", id))
		}
		output.WriteString("\n")
	}

	output.WriteString(FormatListHeader("Results:"))
	output.WriteString("\n")

	sorted := make([]validate.ValidatorResult, len(summary.Results))
	copy(sorted, summary.Results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return severityOrder[sorted[i].Severity] < severityOrder[sorted[j].Severity]
	})

	for _, r := range sorted {
		e := statusEmoji[r.Status]
		if e == "" {
			e = "•"
		}
		output.WriteString(fmt.Sprintf("  %s %s [%s] %s\n", e, r.ValidatorID, strings.ToUpper(string(r.Severity)), r.Message))

		if verbose && r.Details != nil {
			if r.Details.File != "" {
				location := r.Details.File
				if r.Details.Line > 0 {
					location = fmt.Sprintf("%s:%d", location, r.Details.Line)
					if r.Details.Column > 0 {
						location = fmt.Sprintf("%s:%d", location, r.Details.Column)
					}
				}
				output.WriteString(fmt.Sprintf("     Location: %s\n", location))
			}
			if r.Details.SuggestedFix != "" {
				output.WriteString(fmt.Sprintf("     Suggested fix: %s\n", r.Details.SuggestedFix))
			}
			if r.Details.Reasoning != "" {
				output.WriteString(fmt.Sprintf("     Reasoning: %s\n", r.Details.Reasoning))
			}
		}

		if r.Cached {
			output.WriteString("     (cached result)\n")
		}
	}
	output.WriteString("\n")

	if summary.RequiresHumanDecision {
		output.WriteString(FormatWarningMessage("This change requires a human decision before proceeding"))
		output.WriteString("\n")
	}

	if !verbose && len(summary.Errors) > 0 {
		output.WriteString(FormatInfoMessage("Use --verbose to see full validator details"))
		output.WriteString("\n")
	}

	return output.String()
}
