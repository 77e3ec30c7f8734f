package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/mdcrawl/internal/config"
	"github.com/nao1215/mdcrawl/internal/database"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [seed]",
		Short: "List recorded scrape runs",
		Long: `History lists the runs recorded in the crawl journal, newest first.
With a seed, only runs of that seed are listed. With --run, the pages of one
run are listed instead.

The journal lives in the XDG data directory (~/.local/share/mdcrawl on Linux).

Examples:
  mdcrawl history
  mdcrawl history https://docs.example.com/
  mdcrawl history --run 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs to list (0 = all)")
	cmd.Flags().Int64("run", 0, "List the pages of this run ID")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory holding the crawl journal")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetInt64("run")
	if err != nil {
		return err
	}
	cfg := config.NewConfig()
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return err
	}

	journal, err := database.Open(cfg.JournalPath(), database.Options{})
	if errors.Is(err, database.ErrJournalNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	if runID > 0 {
		pages, err := journal.Pages(cmd.Context(), runID)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "DEPTH\tSTATUS\tSTRATEGY\tBYTES\tURL")
		for _, p := range pages {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", p.Depth, p.Status, dash(p.Strategy), p.Bytes, p.URL)
		}
		return nil
	}

	seed := ""
	if len(args) == 1 {
		seed = args[0]
	}
	runs, err := journal.ListRuns(cmd.Context(), seed, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return nil
	}

	fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tWRITTEN\tDUPES\tFAILED\tSTATE\tSEED")
	for _, r := range runs {
		duration := "-"
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		state := "complete"
		switch {
		case r.FinishedAt.IsZero():
			state = "unfinished"
		case r.Canceled:
			state = "canceled"
		case r.Failed > 0 || r.Errors > 0:
			state = "errors"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Local().Format(time.DateTime),
			duration, r.Written, r.Duplicates, r.Failed, state, r.Seed)
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
