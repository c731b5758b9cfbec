package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corevalidate/middleware/pkg/console"
)

// validatorRow is the reflection-rendered view of a registered validator,
// built from a *validate.ValidatorDefinition rather than exporting one
// directly so the table's columns stay independent of the type's field
// order and internal bookkeeping (registrationOrder, etc).
type validatorRow struct {
	ID       string `console:"header:ID"`
	Name     string `console:"header:Name"`
	Kind     string `console:"header:Kind"`
	Enabled  bool   `console:"header:Enabled"`
	Priority int32  `console:"header:Priority"`
	Required bool   `console:"header:Required"`
}

// NewListCommand creates the list command: show every validator
// registered from the loaded config.
func NewListCommand() *cobra.Command {
	var configPath, contextDir string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the validators registered by a pipeline config",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(configPath, contextDir)
			if err != nil {
				return err
			}

			defs := app.Pipeline.List()
			rows := make([]validatorRow, 0, len(defs))
			for _, def := range defs {
				rows = append(rows, validatorRow{
					ID:       def.ID,
					Name:     def.Name,
					Kind:     string(def.Kind),
					Enabled:  def.Enabled,
					Priority: def.Priority,
					Required: def.Behavior.Required,
				})
			}

			if len(rows) == 0 && !asJSON {
				fmt.Println(console.FormatInfoMessage("no validators registered"))
				return nil
			}
			return console.OutputStructOrJSON(rows, asJSON)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "pipeline.yaml", "path to the pipeline config YAML file")
	cmd.Flags().StringVar(&contextDir, "context-dir", "", "root directory to resolve hierarchical rule files from (overrides config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the validator list as JSON instead of a table")
	return cmd
}
