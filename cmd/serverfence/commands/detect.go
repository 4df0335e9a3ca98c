package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/serverfence/serverfence/internal/framework"
)

// detectOutput is the JSON shape of the detect command.
type detectOutput struct {
	Framework           string   `json:"framework"`
	Root                string   `json:"root"`
	ClientFilePatterns  []string `json:"clientFilePatterns,omitempty"`
	ServerFilePatterns  []string `json:"serverFilePatterns,omitempty"`
	ServerFunctionNames []string `json:"serverFunctionNames,omitempty"`
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "detect [dir]",
		Short: "Detect the project's meta-framework",
		Long: `Detect inspects the nearest package.json (falling back to framework config
files) to classify the project as tanstack-start, next, solid-start, remix, or
unknown, and prints the analysis presets the framework implies.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			name, root := framework.DetectRoot(dir)
			preset, _ := framework.PresetFor(name)

			if jsonOutput {
				enc := json.NewEncoder(cobraCmd.OutOrStdout())

				return enc.Encode(detectOutput{
					Framework:           name,
					Root:                root,
					ClientFilePatterns:  preset.ClientFilePatterns,
					ServerFilePatterns:  preset.ServerFilePatterns,
					ServerFunctionNames: preset.ServerFunctionNames,
				})
			}

			out := cobraCmd.OutOrStdout()

			if root == "" {
				fmt.Fprintf(out, "%s (no package.json found)\n", name)

				return nil
			}

			fmt.Fprintf(out, "%s (root: %s)\n", name, root)
			printPatterns(out, "client file patterns", preset.ClientFilePatterns)
			printPatterns(out, "server file patterns", preset.ServerFilePatterns)
			printPatterns(out, "server function names", preset.ServerFunctionNames)

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")

	return cmd
}

func printPatterns(out io.Writer, label string, values []string) {
	if len(values) == 0 {
		return
	}

	fmt.Fprintf(out, "  %s:\n", label)

	for _, v := range values {
		fmt.Fprintf(out, "    - %s\n", v)
	}
}
