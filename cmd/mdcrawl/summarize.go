package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/mdcrawl/internal/config"
	"github.com/nao1215/mdcrawl/internal/summarize"
)

// NewSummarizeCmd creates the summarize command.
func NewSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize --input <file> --name <name> [-- command...]",
		Short: "Run the summarizer command on a crawled text file",
		Long: `Summarize hands a text file to an external summarizer command and checks
that it wrote exactly one file, <output-dir>/<name>.txt.

The command comes from the arguments after "--" or from the summarizer
section of the configuration file. These placeholders are replaced in every
argument: {input}, {output_dir} and {target}.

Examples:
  # Use the command from .mdcrawl
  mdcrawl summarize -i output/docs.example.com__content.md -n docs

  # Give the command explicitly
  mdcrawl summarize -i in.md -n docs -- my-agent --in {input} --out {output_dir}/{target}`,
		Args: cobra.ArbitraryArgs,
		RunE: runSummarizeCmd,
	}

	cmd.Flags().StringP("input", "i", "", "Text file to summarize")
	cmd.Flags().StringP("name", "n", "", "Base name of the summary file")
	cmd.Flags().StringP("output-dir", "o", "",
		"Directory receiving the summary (default: from config, else "+config.DefaultSummaryDir+")")
	cmd.Flags().DurationP("timeout", "t", 0,
		"Bound on the summarizer run (default: from config, else none)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .mdcrawl in current or home directory)")
	_ = cmd.MarkFlagRequired("input") //nolint:errcheck // flag exists
	_ = cmd.MarkFlagRequired("name")  //nolint:errcheck // flag exists

	return cmd
}

func runSummarizeCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	input, err := flags.GetString("input")
	if err != nil {
		return err
	}
	name, err := flags.GetString("name")
	if err != nil {
		return err
	}
	outputDir, err := flags.GetString("output-dir")
	if err != nil {
		return err
	}
	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return err
	}
	if _, err := cfg.LoadSiteConfigs(); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	sc := cfg.SiteConfigs.Summarizer

	argv := args
	if len(argv) == 0 {
		argv = sc.Command
	}
	if outputDir == "" {
		outputDir = sc.OutputDir
	}
	if outputDir == "" {
		outputDir = config.DefaultSummaryDir
	}
	if timeout == 0 {
		if timeout, err = sc.TimeoutDuration(); err != nil {
			return err
		}
	}

	logger := newLogger(cmd)
	summarizer, err := summarize.NewCommandSummarizer(argv,
		summarize.WithTimeout(timeout),
		summarize.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("%w (pass it after -- or set summarizer.command in the config file)", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := summarizer.Summarize(ctx, summarize.Request{
		InputPath: input,
		OutputDir: outputDir,
		Name:      name,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Summary written: %s\n", path)
	return nil
}
