package commands

import (
	"context"
	"fmt"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/chapterbuilder/internal/eventstore"
	"git.home.luguber.info/inful/chapterbuilder/internal/logfields"
	"git.home.luguber.info/inful/chapterbuilder/internal/metrics"
	"git.home.luguber.info/inful/chapterbuilder/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Only      []string `short:"o" sep:"," help:"Build only these branches (comma separated), in table order"`
	DryRun    bool     `name:"dry-run" short:"n" help:"Print the commands that would run without running them"`
	NoJournal bool     `name:"no-journal" help:"Do not record this run in the build journal"`
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, reg, err := loadRegistry(root.Config, b.Only)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithProgress(g.progress())}

	if cfg.Journal.Path != "" && !b.NoJournal && !b.DryRun {
		store, err := eventstore.NewSQLiteStore(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				slog.Warn("Failed to close journal", logfields.Error(cerr))
			}
		}()
		opts = append(opts, pipeline.WithJournal(eventstore.NewStoreJournal(store, eventstore.NewRunID())))
	}

	var registry *prom.Registry
	if cfg.Metrics.Textfile != "" && !b.DryRun {
		registry = prom.NewRegistry()
		opts = append(opts, pipeline.WithRecorder(metrics.NewPrometheusRecorder(registry)))
	}

	p, err := pipeline.New(cfg, g.runner(), opts...)
	if err != nil {
		return err
	}

	res, runErr := p.Run(ctx, reg, pipeline.Options{DryRun: b.DryRun})

	if registry != nil {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, registry); err != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}

	if res != nil && !b.DryRun {
		slog.Info("Build summary",
			logfields.RunID(res.RunID),
			slog.String("status", string(res.Status)),
			slog.Int("archived", res.Archived()),
			slog.Int("planned", reg.Len()),
			logfields.Elapsed(res.Duration))
		if runErr == nil {
			fmt.Fprintf(g.out(), "%d archives written to %s\n", res.Archived(), cfg.Output.ArchiveDir)
		}
	}
	return runErr
}
