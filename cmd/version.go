package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/pagekit/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for pagekit including the semantic version,
git commit hash, build timestamp, Go version, and target platform.

Examples:
  pagekit version               # Show detailed version info
  pagekit version --short       # Show the short version string
  pagekit version --format json # Output as JSON`,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	switch versionFormat {
	case "json":
		data, err := json.MarshalIndent(version.Get(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "text":
		if versionShort {
			fmt.Fprintln(out, version.Short())
		} else {
			fmt.Fprintln(out, version.Detailed())
		}
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", versionFormat)
	}

	return nil
}
