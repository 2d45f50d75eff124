package cli

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
)

// rootCmd is the root command for treetx.
var rootCmd = &cobra.Command{
	Use:     "treetx",
	Version: "dev",
	Short:   "Transactional tree restructuring",
	Long: `treetx realizes a batch of structural changes to a directory tree -
renames, creations, deletions - in one safe ordered pass, even when the
target placement contains cycles such as two directories swapping names.

Changes are described in a YAML batch file and staged against temporary
copies; nothing touches the tree until the whole plan is generated.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(lsCmd)
}
