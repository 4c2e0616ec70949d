package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/pagekit/internal/assets"
	"github.com/conneroisu/pagekit/internal/config"
	"github.com/conneroisu/pagekit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Preview the optimized output with live reload",
	Long: `Serve the optimized output directory for local preview. With live reload
enabled (the default), the server watches the source directory, reruns the
asset pipeline on changes, and tells connected pages to reload.

Examples:
  pagekit serve                    # Serve dist/ on localhost:8080
  pagekit serve --port 3000
  pagekit serve --no-reload        # Plain static server`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("no-reload", false, "Disable live reload")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	noReload, _ := cmd.Flags().GetBool("no-reload")
	liveReload := cfg.Server.LiveReload && !noReload

	logger := newLogger(cfg)

	if _, err := os.Stat(cfg.Assets.OutputDir); err != nil {
		return fmt.Errorf("output directory %s not found, run 'pagekit optimize' first", cfg.Assets.OutputDir)
	}

	srv := server.New(cfg.Server.Host, cfg.Server.Port, cfg.Assets.OutputDir, liveReload, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if liveReload {
		if _, err := os.Stat(cfg.Assets.SourceDir); err == nil {
			watcher, err := assets.NewWatcher(cfg.Assets.SourceDir, cfg.Forms.DebounceDelay, logger)
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}

			options := assets.DefaultOptions()
			options.JPEGQuality = cfg.Assets.JPEGQuality
			options.Precompress = cfg.Assets.Precompress
			options.Ignore = cfg.Assets.Ignore
			optimizer := assets.NewOptimizer(options, logger)

			go func() {
				_ = watcher.Run(ctx, func() {
					if _, err := optimizer.Optimize(ctx, cfg.Assets.SourceDir, cfg.Assets.OutputDir); err != nil {
						logger.Error(ctx, err, "rebuild failed")

						return
					}
					srv.NotifyReload()
				})
			}()
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at http://%s\n", cfg.Assets.OutputDir, srv.Addr())

	if err := srv.Start(ctx); err != nil &&
		err != context.Canceled && err != http.ErrServerClosed {
		return err
	}

	return nil
}
