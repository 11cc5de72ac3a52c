package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/chapterbuilder/internal/chapter"
	"git.home.luguber.info/inful/chapterbuilder/internal/config"
	"git.home.luguber.info/inful/chapterbuilder/internal/pipeline"
	"git.home.luguber.info/inful/chapterbuilder/internal/toolexec"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Runner toolexec.Runner // nil runs real processes
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"chapterbuilder.yaml" env:"CHAPTERBUILDER_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" default:"withargs" help:"Clean stale outputs, then build and archive every chapter"`
	Clean   CleanCmd   `cmd:"" help:"Remove the built DLL and every chapter's copied DLL and archive"`
	List    ListCmd    `cmd:"" help:"Show the chapter table and derived output paths"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	History HistoryCmd `cmd:"" help:"Summarize a run recorded in the build journal"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel honours --verbose first, then CHAPTERBUILDER_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("CHAPTERBUILDER_LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadRegistry reads the configuration and builds the chapter registry,
// restricted to only when it is non-empty.
func loadRegistry(configPath string, only []string) (*config.Config, *chapter.Registry, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	reg, err := chapter.FromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	if len(only) > 0 {
		if reg, err = reg.Filter(only); err != nil {
			return nil, nil, err
		}
	}
	return cfg, reg, nil
}

func (g *Global) out() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) runner() toolexec.Runner {
	if g == nil || g.Runner == nil {
		return toolexec.NewExecRunner()
	}
	return g.Runner
}

func (g *Global) progress() *pipeline.Progress {
	if g == nil || g.Stdout == nil {
		return pipeline.StdoutProgress()
	}
	return pipeline.NewProgress(g.Stdout, false)
}
