package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nrjais/docqa/internal/config"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "docqa - document quality checks for MongoDB collections",
	Long: `docqa validates the structure and content of MongoDB documents against a
declarative rule file. Per collection it checks:
  - existence and minimum document count
  - required fields, including dotted nested paths
  - field data types, allowed categories and numeric ranges
  - keyword presence in text fields

Collections are validated independently; a failure in one never stops the others.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			loaded.LogLevel = "DEBUG"
		}
		cfg = loaded
		slog.SetDefault(config.NewLogger(os.Stderr, cfg))
		config.LogConfig(cfg)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: docqa.yaml in ., ./config, /etc/docqa)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
