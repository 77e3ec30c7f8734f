package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/mdcrawl/internal/config"
	"github.com/nao1215/mdcrawl/internal/output"
)

// NewClearCmd creates the clear command.
func NewClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [dir]",
		Short: "Delete every markdown file in the output directory",
		Long: `Clear removes every .md file under the output directory, recursively.
Other files and the directories themselves are kept. A missing directory is
not an error.

Examples:
  # Clear the default output directory
  mdcrawl clear

  # Clear another directory
  mdcrawl clear ./docs-out`,
		Args: cobra.MaximumNArgs(1),
		RunE: runClearCmd,
	}
}

func runClearCmd(cmd *cobra.Command, args []string) error {
	dir := config.DefaultOutputDir
	if len(args) == 1 {
		dir = args[0]
	}

	removed, err := output.ClearMarkdown(dir, newLogger(cmd))
	for _, path := range removed {
		fmt.Fprintf(cmd.OutOrStdout(), "deleted: %s\n", path)
	}
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", dir, err)
	}
	if len(removed) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no markdown files in %s\n", dir)
	}
	return nil
}
