package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	mdlog "github.com/nao1215/mdcrawl/internal/log"
)

// NewRootCmd creates the root command for mdcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mdcrawl",
		Short: "Crawl a documentation site into a markdown file",
		Long: `mdcrawl crawls a site from a seed URL, follows same-origin links up to a
fixed depth, and appends the readable text of every new page to a markdown
file named after the seed.

Pages are fetched with a plain HTTP request first and with a headless
browser when that fails. Identical page texts are written once per run.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewClearCmd())
	cmd.AddCommand(NewSummarizeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
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

// getBoolFlag reads a bool flag from the command or the root's persistent set.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// newLogger builds the redacting logger selected by the global flags and
// installs it as the default.
func newLogger(cmd *cobra.Command) *slog.Logger {
	logger := mdlog.New(cmd.ErrOrStderr(), mdlog.Options{
		Verbose: getBoolFlag(cmd, "verbose"),
		JSON:    getBoolFlag(cmd, "log-json"),
	})
	slog.SetDefault(logger)
	return logger
}
