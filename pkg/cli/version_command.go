package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corevalidate/middleware/pkg/console"
	"github.com/corevalidate/middleware/pkg/constants"
)

var versionInfo = "dev"

// SetVersionInfo sets the version string printed by the version command,
// assigned by main from a build-time ldflags variable.
func SetVersionInfo(version string) {
	versionInfo = version
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(console.FormatInfoMessage(fmt.Sprintf("%s version %s", constants.CLIName, versionInfo)))
		},
	}
}
