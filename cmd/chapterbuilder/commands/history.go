package commands

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/chapterbuilder/internal/config"
	"git.home.luguber.info/inful/chapterbuilder/internal/eventstore"
	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/chapterbuilder/internal/logfields"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	RunID string `name:"run" help:"Run ID to show (default: most recent)"`
	JSON  bool   `name:"json" help:"Print the summary as JSON"`
}

func (h *HistoryCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if cfg.Journal.Path == "" {
		return errors.ConfigError("build journal is not enabled").
			WithContext(errors.HintKey, "Set journal.path in the configuration to record runs.").
			Build()
	}

	store, err := eventstore.NewSQLiteStore(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			slog.Warn("Failed to close journal", logfields.Error(cerr))
		}
	}()

	summary, _, err := eventstore.LoadRun(ctx, store, h.RunID)
	if err != nil {
		if stderrors.Is(err, eventstore.ErrNoRuns) {
			return errors.NewError(errors.CategoryNotFound, "no recorded runs").
				WithCause(err).
				WithContext("run_id", h.RunID).
				Build()
		}
		return err
	}

	if h.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	return printSummary(g, summary)
}

func printSummary(g *Global, s *eventstore.RunSummary) error {
	w := g.out()
	fmt.Fprintf(w, "Run:      %s\n", s.RunID)
	fmt.Fprintf(w, "Status:   %s\n", s.Status)
	fmt.Fprintf(w, "Started:  %s\n", s.StartedAt.Format(time.RFC3339))
	if s.CompletedAt != nil {
		fmt.Fprintf(w, "Duration: %s\n", s.Duration.Round(time.Second))
	}
	fmt.Fprintf(w, "Removed:  %d stale outputs\n", s.Removed)
	if s.FailedBranch != "" || s.FailedStep != "" {
		fmt.Fprintf(w, "Failed:   %s at %s: %s\n", s.FailedBranch, s.FailedStep, s.ErrorMessage)
	}
	fmt.Fprintln(w)

	done := map[string]*eventstore.ChapterSummary{}
	for _, c := range s.Chapters {
		done[c.Branch] = c
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BRANCH\tCOMMIT\tBUILT\tARCHIVE")
	for _, branch := range s.Planned {
		c, ok := done[branch]
		if !ok {
			fmt.Fprintf(tw, "%s\t-\t-\tnot started\n", branch)
			continue
		}
		archive := c.Archive
		if archive == "" {
			archive = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", branch, c.Commit, c.Built, archive)
	}
	return tw.Flush()
}
