package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/corevalidate/middleware/pkg/console"
	"github.com/corevalidate/middleware/pkg/constants"
	"github.com/corevalidate/middleware/pkg/validate"
)

// NewValidateCommand creates the validate command: load a pipeline
// config, run it against the given files at the given trigger, and print
// the aggregated summary.
func NewValidateCommand() *cobra.Command {
	var configPath, contextDir, trigger string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Run the validation pipeline against a set of candidate files",
		Long: `Run every applicable validator against the given files and print the
aggregated verdict.

Examples:
  ` + constants.CLIName + ` validate --config pipeline.yaml src/main.go
  ` + constants.CLIName + ` validate --config pipeline.yaml --trigger pre_commit src/*.go`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(configPath, contextDir)
			if err != nil {
				return err
			}

			files, err := loadCandidateFiles(args)
			if err != nil {
				return err
			}

			vctx := &validate.ValidationContext{
				Timestamp: time.Now().Unix(),
				Files:     files,
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			spinner := console.NewSpinner("running validators...")
			spinner.Start()
			summary, resp, err := app.Pipeline.ValidateWithHumanApproval(ctx, validate.TriggerKind(trigger), vctx)
			if err != nil {
				spinner.Stop()
				return err
			}
			spinner.StopWithMessage(fmt.Sprintf("validation finished: %s", summary.Overall))

			fmt.Println(console.FormatValidationSummary(summary, verbose))
			if resp != nil {
				fmt.Println(console.FormatInfoMessage(fmt.Sprintf("human decision: %s", resp.Decision)))
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
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show per-result detail (location, suggested fix, reasoning)")

	return cmd
}
