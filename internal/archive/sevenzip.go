// Package archive compresses a chapter output tree with 7-Zip.
package archive

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/chapterbuilder/internal/config"
	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/chapterbuilder/internal/fsutil"
	"git.home.luguber.info/inful/chapterbuilder/internal/toolexec"
)

// SevenZip creates .7z archives with fixed compression parameters.
type SevenZip struct {
	path       string
	level      int
	dictionary string
	runner     toolexec.Runner
}

// NewSevenZip returns an archiver using the tool and parameters in cfg.
func NewSevenZip(cfg *config.Config, runner toolexec.Runner) *SevenZip {
	return &SevenZip{
		path:       cfg.Tools.Archiver,
		level:      cfg.Archive.Level,
		dictionary: cfg.Archive.Dictionary,
		runner:     runner,
	}
}

// Invocation returns the command that archives srcDir into dest. The tool
// runs from srcDir's parent so srcDir becomes the archive's top-level entry.
func (z *SevenZip) Invocation(srcDir, dest string) (toolexec.Invocation, error) {
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return toolexec.Invocation{}, fmt.Errorf("resolve archive path: %w", err)
	}
	cleaned := filepath.Clean(srcDir)
	return toolexec.Invocation{
		Tool: "7z",
		Path: z.path,
		Args: []string{
			"a",
			absDest,
			filepath.Base(cleaned),
			"-mx=" + strconv.Itoa(z.level),
			"-md=" + strings.ToLower(z.dictionary),
		},
		Dir: filepath.Dir(cleaned),
	}, nil
}

// Create archives srcDir into dest. Anything already at dest is removed
// first so stale entries never end up in the new archive.
func (z *SevenZip) Create(ctx context.Context, srcDir, dest string) error {
	if !fsutil.Exists(srcDir) {
		return errors.ArchiveError("archive source folder does not exist").
			WithContext("path", srcDir).
			Build()
	}

	inv, err := z.Invocation(srcDir, dest)
	if err != nil {
		return errors.ArchiveError("invalid archive destination").WithCause(err).WithContext("path", dest).Build()
	}
	return z.Run(ctx, inv)
}

// Run removes the invocation's destination and executes it.
func (z *SevenZip) Run(ctx context.Context, inv toolexec.Invocation) error {
	dest := inv.Args[1]
	if _, err := fsutil.RemoveIfExists(dest); err != nil {
		return err
	}
	if err := fsutil.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}

	res, err := z.runner.Run(ctx, inv)
	if err != nil {
		if stderrors.Is(err, toolexec.ErrInterrupted) {
			return errors.RuntimeError("archive interrupted").WithCause(err).Build()
		}
		return errors.ArchiveError("could not start archiver").
			WithCause(err).
			WithContext("path", z.path).
			Build()
	}
	if !res.Success {
		return errors.ArchiveError(fmt.Sprintf("archiver exited with code %d", res.ExitCode)).
			WithContext("archive", dest).
			WithContext("exit_code", res.ExitCode).
			WithContext("stderr", strings.TrimSpace(res.Stderr)).
			Build()
	}
	return nil
}
