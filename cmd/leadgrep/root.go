// Package main provides the entry point for the leadgrep CLI.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for leadgrep.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leadgrep",
		Short: "Contact email scraper for company websites and social profiles",
		Long: `leadgrep crawls company websites, their contact-relevant internal pages,
and any linked social media profiles, extracting and validating contact
email addresses along the way.

Input URLs can be given directly on the command line or loaded from
CSV, Excel, plain-text, or Word files. Results are written as CSV,
an Excel workbook, or both, always alongside a plain-text report.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewProxiesCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging configures the process-wide logrus defaults.
func setupLogging(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}
