package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/serverfence/serverfence/internal/config"
)

// NewValidateConfigCommand creates the validate-config command.
func NewValidateConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config <path>",
		Short: "Validate a config file against the configuration schema",
		Long: `Validate a .serverfence.yaml file against the configuration schema and
report every violation with its field path.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			path := args[0]

			issues, err := config.ValidateFile(path)
			if err != nil {
				return err
			}

			out := cobraCmd.OutOrStdout()

			if len(issues) == 0 {
				color.New(color.FgGreen).Fprintf(out, "%s is valid\n", path)

				return nil
			}

			color.New(color.FgRed).Fprintf(out, "%s has %d issue(s):\n", path, len(issues))

			for _, issue := range issues {
				fmt.Fprintf(out, "  - %s: %s\n", issue.Field, issue.Description)
			}

			return fmt.Errorf("config validation failed: %s", path)
		},
	}
}
