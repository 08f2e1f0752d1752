package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/habitus/internal/migration"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Displays version, commit, build date and the backup format version.`,
	RunE:  runVersion,
}

var versionJSON bool

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output as JSON")
}

func runVersion(cmd *cobra.Command, args []string) error {
	if versionJSON {
		output := map[string]any{
			"version":        Version,
			"commit":         GitCommit,
			"build_date":     BuildDate,
			"backup_format":  migration.FormatVersion,
			"backup_columns": migration.Header,
			"supported_commands": []string{
				"export", "import", "backfill-goals", "history", "migrate", "version",
			},
			"supported_formats": []string{"json", "yaml", "tsv", "table"},
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "habitus version %s\n", Version)
	fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", GitCommit)
	fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", BuildDate)
	fmt.Fprintf(cmd.OutOrStdout(), "  backup format: %s\n", migration.FormatVersion)

	return nil
}
