package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/chapterbuilder/cmd/chapterbuilder/commands"
	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/chapterbuilder/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("chapterbuilder"),
		kong.Description("Check out, build, copy and archive the per-chapter assembly DLLs."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return errors.NewCLIErrorAdapter(false, slog.Default()).Report(
			errors.InternalError("failed to build command line parser").WithCause(err).Build())
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err.Error())
		return 2
	}

	global := &commands.Global{Logger: slog.Default()}
	if err := kctx.Run(global, cli); err != nil {
		return errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).Report(err)
	}
	return 0
}
