package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corevalidate/middleware/pkg/console"
	"github.com/corevalidate/middleware/pkg/decision"
	"github.com/corevalidate/middleware/pkg/validate"
)

// NewDecideCommand creates the decide command: run validate and, if the
// pipeline escalates to a human decision, prompt interactively for one
// instead of auto-deferring.
func NewDecideCommand() *cobra.Command {
	var configPath, contextDir, trigger string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "decide [files...]",
		Short: "Validate files, prompting interactively for any required human decision",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(configPath, contextDir)
			if err != nil {
				return err
			}
			app.Decision.Subscribe(interactiveSubscriber(app.Decision))

			files, err := loadCandidateFiles(args)
			if err != nil {
				return err
			}

			vctx := &validate.ValidationContext{Files: files}
			summary, resp, err := app.Pipeline.ValidateWithHumanApproval(cmd.Context(), validate.TriggerKind(trigger), vctx)
			if err != nil {
				return err
			}

			fmt.Println(console.FormatValidationSummary(summary, verbose))
			if resp != nil {
				fmt.Println(console.FormatInfoMessage(fmt.Sprintf("decision: %s (%s)", resp.Decision, resp.Comment)))
			}

			if summary.Overall == validate.OverallRejected || summary.Overall == validate.OverallBlocked {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "pipeline.yaml", "path to the pipeline config YAML file")
	cmd.Flags().StringVar(&contextDir, "context-dir", "", "root directory to resolve hierarchical rule files from (overrides config)")
	cmd.Flags().StringVar(&trigger, "trigger", string(validate.TriggerOnDemand), "trigger kind to evaluate validators against")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show per-result detail")

	return cmd
}

// interactiveSubscriber builds a decision.Subscriber that prompts on the
// terminal and resolves the request itself via h.Respond, since there is
// no separate resolution path in single-shot CLI usage (unlike a
// long-running server that notifies an external channel and waits for a
// separate Respond call).
func interactiveSubscriber(h *decision.Handler) decision.Subscriber {
	return func(req decision.Request) {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(req.Title))
		if req.Description != "" {
			fmt.Fprintln(os.Stderr, req.Description)
		}
		if req.Context != "" {
			fmt.Fprintln(os.Stderr, console.FormatInfoMessage(req.Context))
		}
		if req.Summary != nil {
			fmt.Fprintln(os.Stderr, console.FormatValidationSummary(req.Summary, true))
		}

		choices := []console.SelectOption{
			{Label: "Approve", Value: string(validate.DecisionApproved)},
			{Label: "Reject", Value: string(validate.DecisionRejected)},
			{Label: "Defer", Value: string(validate.DecisionDeferred)},
		}

		choice, err := console.PromptSelect("Decision required", "How should this change be handled?", choices)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("no interactive terminal available, deferring: %v", err)))
			choice = string(validate.DecisionDeferred)
		}

		h.Respond(req.ID, validate.Response{Decision: validate.Decision(choice)})
	}
}
