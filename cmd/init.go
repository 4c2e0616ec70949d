package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/pagekit/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"i"},
	Short:   "Write a starter .pagekit.yml configuration file",
	Long: `Write a starter .pagekit.yml in the current directory with the default
settings for the asset pipeline, contact form behavior, SEO metadata, and the
preview server. The command refuses to overwrite an existing file.

Examples:
  pagekit init                     # Write .pagekit.yml
  pagekit init --output site.yml   # Write to a custom path`,
	RunE: runInit,
}

var initOutput string

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initOutput, "output", "o", ".pagekit.yml", "Path to write the config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := config.Scaffold(initOutput); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", initOutput)

	return nil
}
