package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corevalidate/middleware/pkg/console"
	"github.com/corevalidate/middleware/pkg/tty"
)

// NewCacheCommand creates the cache command group: clear and invalidate.
func NewCacheCommand() *cobra.Command {
	var configPath, contextDir string
	var yes bool

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the validator result cache",
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Evict every cached validator result",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(configPath, contextDir)
			if err != nil {
				return err
			}

			if !yes && tty.IsStderrTerminal() {
				confirmed, err := console.ConfirmAction(
					"Clear the entire validator result cache?",
					"Yes, clear it",
					"No, cancel",
				)
				if err != nil {
					return fmt.Errorf("confirmation failed: %w", err)
				}
				if !confirmed {
					fmt.Println(console.FormatInfoMessage("cache clear cancelled"))
					return nil
				}
			}

			app.Pipeline.ClearCache()
			fmt.Println(console.FormatSuccessMessage("validator result cache cleared"))
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	invalidateCmd := &cobra.Command{
		Use:   "invalidate [file]",
		Short: "Evict cached results keyed to a specific file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(configPath, contextDir)
			if err != nil {
				return err
			}
			app.Pipeline.InvalidateCacheForFile(args[0])
			fmt.Println(console.FormatSuccessMessage(fmt.Sprintf("invalidated cached results for %s", args[0])))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "pipeline.yaml", "path to the pipeline config YAML file")
	cmd.PersistentFlags().StringVar(&contextDir, "context-dir", "", "root directory to resolve hierarchical rule files from (overrides config)")
	cmd.AddCommand(clearCmd, invalidateCmd)
	return cmd
}
