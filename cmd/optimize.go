package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/pagekit/internal/assets"
	"github.com/conneroisu/pagekit/internal/config"
	"github.com/conneroisu/pagekit/internal/logging"
	"github.com/conneroisu/pagekit/internal/seo"
)

var optimizeCmd = &cobra.Command{
	Use:     "optimize",
	Aliases: []string{"o", "build"},
	Short:   "Run the asset pipeline over the source directory",
	Long: `Run the asset pipeline: minify CSS and JavaScript, re-encode images,
precompress text assets with gzip, and write the optimized tree to the output
directory. SEO meta tags from the config are injected into output HTML pages.

Examples:
  pagekit optimize                         # assets/ -> dist/
  pagekit optimize --source web --output public
  pagekit optimize --watch                 # Rebuild on file changes
  pagekit optimize --report dist/report.json`,
	RunE: runOptimize,
}

var (
	optimizeWatch  bool
	optimizeReport string
	optimizeNoSEO  bool
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringP("source", "s", "", "Source directory (default from config)")
	optimizeCmd.Flags().StringP("output", "o", "", "Output directory (default from config)")
	optimizeCmd.Flags().Int("jpeg-quality", 0, "JPEG re-encode quality 1-100")
	optimizeCmd.Flags().Bool("no-precompress", false, "Skip writing .gz siblings")
	optimizeCmd.Flags().BoolVarP(&optimizeWatch, "watch", "w", false, "Watch the source directory and rebuild on changes")
	optimizeCmd.Flags().StringVar(&optimizeReport, "report", "", "Write a JSON report to this path")
	optimizeCmd.Flags().BoolVar(&optimizeNoSEO, "no-seo", false, "Skip SEO meta tag injection into output HTML")

	viper.BindPFlag("assets.source_dir", optimizeCmd.Flags().Lookup("source"))
	viper.BindPFlag("assets.output_dir", optimizeCmd.Flags().Lookup("output"))
	viper.BindPFlag("assets.jpeg_quality", optimizeCmd.Flags().Lookup("jpeg-quality"))
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg)

	noPrecompress, _ := cmd.Flags().GetBool("no-precompress")
	options := assets.DefaultOptions()
	options.JPEGQuality = cfg.Assets.JPEGQuality
	options.Precompress = cfg.Assets.Precompress && !noPrecompress
	options.Ignore = cfg.Assets.Ignore

	optimizer := assets.NewOptimizer(options, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOnce := func() error {
		report, err := optimizer.Optimize(ctx, cfg.Assets.SourceDir, cfg.Assets.OutputDir)
		if err != nil {
			return err
		}

		if !optimizeNoSEO {
			if err := injectSEO(ctx, cfg, logger); err != nil {
				return err
			}
		}

		for _, warning := range report.Warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"Optimized %d files: %d minified, %d images, %d copied (%.1f%% smaller)\n",
			report.FilesProcessed, report.FilesMinified, report.ImagesOptimized,
			report.FilesCopied, report.SavingsPct)

		if optimizeReport != "" {
			if err := report.WriteReport(optimizeReport); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
		}

		return nil
	}

	if err := runOnce(); err != nil {
		return err
	}
	if !optimizeWatch {
		return nil
	}

	watcher, err := assets.NewWatcher(cfg.Assets.SourceDir, cfg.Forms.DebounceDelay, logger)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes, press Ctrl+C to stop")

	err = watcher.Run(ctx, func() {
		if err := runOnce(); err != nil {
			logger.Error(ctx, err, "rebuild failed")
		}
	})
	if err != nil && err != context.Canceled {
		return err
	}

	return nil
}

// injectSEO applies the configured metadata to every HTML page in the output
// tree. Pages are skipped, not failed, when no metadata is configured.
func injectSEO(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	meta := seoMetadata(cfg)
	if meta.Title == "" && meta.Description == "" && meta.Canonical == "" {
		return nil
	}

	return filepath.Walk(cfg.Assets.OutputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(strings.ToLower(path), ".html") {
			return nil
		}

		if err := seo.InjectFile(path, meta); err != nil {
			return fmt.Errorf("injecting meta tags into %s: %w", path, err)
		}
		logger.Debug(ctx, "injected meta tags", "path", path)

		return nil
	})
}

func seoMetadata(cfg *config.Config) seo.Metadata {
	return seo.Metadata{
		Title:       cfg.SEO.Title,
		Description: cfg.SEO.Description,
		Canonical:   cfg.SEO.Canonical,
		SiteName:    cfg.SEO.SiteName,
		Image:       cfg.SEO.Image,
		TwitterCard: cfg.SEO.TwitterCard,
		Robots:      cfg.SEO.Robots,
	}
}
