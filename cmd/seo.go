package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/pagekit/internal/config"
	"github.com/conneroisu/pagekit/internal/seo"
)

var seoCmd = &cobra.Command{
	Use:   "seo <file.html> [file.html...]",
	Short: "Inject SEO meta tags into HTML pages",
	Long: `Inject the configured SEO metadata into one or more HTML pages in place:
the document title, meta description, canonical link, robots directive, and
Open Graph / Twitter Card tags. Existing tags are updated rather than
duplicated, so the command is safe to run repeatedly.

Examples:
  pagekit seo dist/index.html
  pagekit seo dist/*.html --title "Bright Minds Tutoring"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSEO,
}

func init() {
	rootCmd.AddCommand(seoCmd)

	seoCmd.Flags().String("title", "", "Page title")
	seoCmd.Flags().String("description", "", "Meta description")
	seoCmd.Flags().String("canonical", "", "Canonical URL")
	seoCmd.Flags().String("image", "", "Social share image URL")

	viper.BindPFlag("seo.title", seoCmd.Flags().Lookup("title"))
	viper.BindPFlag("seo.description", seoCmd.Flags().Lookup("description"))
	viper.BindPFlag("seo.canonical", seoCmd.Flags().Lookup("canonical"))
	viper.BindPFlag("seo.image", seoCmd.Flags().Lookup("image"))
}

func runSEO(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	meta := seoMetadata(cfg)
	for _, path := range args {
		if err := seo.InjectFile(path, meta); err != nil {
			return fmt.Errorf("injecting meta tags into %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", path)
	}

	return nil
}
