package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pagekit",
	Short: "Build tooling for static marketing landing pages",
	Long: `Pagekit optimizes and previews static marketing landing pages: it minifies
CSS and JavaScript, re-encodes images, precompresses text assets, injects SEO
meta tags, and serves the result with live reload.

Quick Start:
  pagekit init                    Write a starter .pagekit.yml
  pagekit optimize                Run the asset pipeline
  pagekit seo dist/index.html     Inject meta tags into a page
  pagekit serve                   Preview the optimized output

Configuration is read from .pagekit.yml and PAGEKIT_* environment variables;
flags override both.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .pagekit.yml, can also use PAGEKIT_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. PAGEKIT_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .pagekit.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("PAGEKIT_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pagekit")
	}

	viper.SetEnvPrefix("PAGEKIT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing or malformed config files fall back to defaults without
	// failing the command.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
