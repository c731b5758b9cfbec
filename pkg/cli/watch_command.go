package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corevalidate/middleware/pkg/console"
	"github.com/corevalidate/middleware/pkg/logger"
	"github.com/corevalidate/middleware/pkg/rules"
	"github.com/corevalidate/middleware/pkg/validate"
)

var watchCmdLog = logger.New("cli:watch")

// NewWatchCommand creates the watch command: re-run the pipeline against
// the given files every time a rule file under context-dir changes, until
// interrupted.
func NewWatchCommand() *cobra.Command {
	var configPath, contextDir, trigger string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "watch [files...]",
		Short: "Re-validate files whenever their resolved rule files change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(configPath, contextDir)
			if err != nil {
				return err
			}

			watcher, err := rules.NewWatcher(rules.IsRuleFile)
			if err != nil {
				return fmt.Errorf("failed to create rule file watcher: %w", err)
			}
			defer watcher.Close()

			root := contextDir
			if root == "" {
				root = "."
			}
			if err := watcher.AddDir(root); err != nil {
				return fmt.Errorf("failed to watch %s: %w", root, err)
			}
			events := watcher.Subscribe()
			go watcher.Run()
			go app.Pipeline.ContextResolver().WatchAndInvalidate(watcher)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			runOnce := func() {
				files, err := loadCandidateFiles(args)
				if err != nil {
					fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
					return
				}
				vctx := &validate.ValidationContext{Timestamp: time.Now().Unix(), Files: files}
				ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
				defer cancel()
				spinner := console.NewSpinner("re-validating...")
				spinner.Start()
				summary, err := app.Pipeline.Validate(ctx, validate.TriggerKind(trigger), vctx)
				if err != nil {
					spinner.Stop()
					fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
					return
				}
				spinner.StopWithMessage(fmt.Sprintf("re-validation finished: %s", summary.Overall))
				fmt.Println(console.FormatValidationSummary(summary, verbose))
			}

			fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("watching rule files under %s (ctrl-c to stop)...", root)))
			runOnce()

			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					watchCmdLog.Printf("rule file event: %s %s", ev.Path, ev.Kind)
					fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("rule change detected (%s), re-validating...", ev.Path)))
					runOnce()
				case <-sigCh:
					fmt.Fprintln(os.Stderr, console.FormatInfoMessage("stopping watch"))
					return nil
				case <-cmd.Context().Done():
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "pipeline.yaml", "path to the pipeline config YAML file")
	cmd.Flags().StringVar(&contextDir, "context-dir", "", "root directory to watch for rule file changes (overrides config)")
	cmd.Flags().StringVar(&trigger, "trigger", string(validate.TriggerOnChange), "trigger kind to evaluate validators against")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show per-result detail")

	return cmd
}
