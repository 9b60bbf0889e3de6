/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docqa-be",
	Short: "Question answering over named document databases",
	Long: `docqa-be ingests documents from URLs into named databases that share one
vector collection, and answers questions grounded in a database's documents.

Run "docqa-be start" to serve the HTTP API. The other commands operate on the
same collection directly.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config/config.yaml", "config file")
}

// loadConfig reads the config file named by --config, overlaid with the environment.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.NewLogger(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
