package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corevalidate/middleware/pkg/cli"
	"github.com/corevalidate/middleware/pkg/console"
	"github.com/corevalidate/middleware/pkg/constants"
)

// version is set by GoReleaser at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     constants.CLIName,
	Short:   "Run configured validators against candidate file changes",
	Version: version,
	Long: `validatectl runs a configured validation pipeline against candidate file
changes at a given trigger point and prints the aggregated verdict.

Common Tasks:
  validatectl list                     # Show validators registered by a config
  validatectl validate FILE...         # Validate files once
  validatectl watch FILE...            # Re-validate on every rule-file change
  validatectl decide FILE...           # Validate, prompting for any required decision
  validatectl cache clear              # Evict every cached validator result

For detailed help on any command, use:
  validatectl [command] --help`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.SetOut(os.Stderr)
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s\n", console.FormatInfoMessage(fmt.Sprintf("%s version {{.Version}}", constants.CLIName))))

	cli.SetVersionInfo(version)

	rootCmd.AddCommand(
		cli.NewValidateCommand(),
		cli.NewWatchCommand(),
		cli.NewDecideCommand(),
		cli.NewCacheCommand(),
		cli.NewListCommand(),
		cli.NewVersionCommand(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
