// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the grey-lit-search CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/grey-lit-search/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured from flags and config before any subcommand runs.
var logger *logrus.Logger

// rootCmd is the base command for the grey-lit-search CLI.
var rootCmd = &cobra.Command{
	Use:   "grey-lit-search",
	Short: "Reproducible grey literature searches for systematic reviews",
	Long: `grey-lit-search issues a Google or Google Scholar query, keeps the exact
query and raw results page, and for every result either downloads the linked
document or records the link for manual follow-up.

Each run writes a session directory named after its start time (UTC):

  google-search-term.txt     exact query URL issued
  google-search-result.html  raw results page
  results_summary.csv        one row per result seen
  session.yaml               run manifest and outcome counts
  000/, 001/, ...            one directory per result

Failed downloads leave a marker file (.404error.txt, .timedout.txt or
.failed.txt) holding the link, so nothing has to be searched twice.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(os.Stderr, viper.GetString("log-level"), viper.GetBool("log-json"))
		if err != nil {
			return err
		}
		logger = log
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./grey-lit-search.yaml or ~/.config/grey-lit-search/config.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Bool("log-json", false, "emit logs as JSON")
	pf.Duration("timeout", 0, "HTTP request timeout for the search page and each download (default 60s)")
	pf.String("user-agent", "", "User-Agent header sent with every request (default: desktop Chrome)")
	pf.Int("results", 100, "number of search results to request (max 100)")
	pf.Int("max-redirects", 10, "redirects followed per download")
	pf.String("output-dir", ".", "parent directory for session directories")
	pf.String("session", "", "session directory name (default: UTC start time, 20060102_150405)")
	pf.String("summary-format", "legacy", "results_summary.csv rows: legacy (unescaped) or quoted (RFC 4180)")

	for _, key := range []string{
		"log-level", "log-json", "timeout", "user-agent",
		"results", "max-redirects", "output-dir", "session", "summary-format",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(key))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("grey-lit-search")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "grey-lit-search"))
		}
	}

	viper.SetEnvPrefix("GREY_LIT_SEARCH")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
