// Package pipeline drives a release run: preflight, the up-front cleanup
// pass, then checkout, build, copy and archive for every chapter in order.
//
// The run stops at the first failure. There is no retry and no resume; a new
// run starts from the first chapter again and relies on the cleanup pass.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/chapterbuilder/internal/archive"
	"git.home.luguber.info/inful/chapterbuilder/internal/builder"
	"git.home.luguber.info/inful/chapterbuilder/internal/chapter"
	"git.home.luguber.info/inful/chapterbuilder/internal/config"
	"git.home.luguber.info/inful/chapterbuilder/internal/eventstore"
	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/chapterbuilder/internal/fsutil"
	"git.home.luguber.info/inful/chapterbuilder/internal/logfields"
	"git.home.luguber.info/inful/chapterbuilder/internal/metrics"
	"git.home.luguber.info/inful/chapterbuilder/internal/toolexec"
	"git.home.luguber.info/inful/chapterbuilder/internal/vcs"
	"git.home.luguber.info/inful/chapterbuilder/internal/version"
)

// Remediation text shown with preflight failures.
const (
	builderHint = "Set tools.builder to the MSBuild.exe that ships with your Visual Studio install. " +
		"The Readme.md in https://github.com/07th-mod/higurashi-assembly has instructions."
	repoHint = "Set repository.path to a clone or fork of https://github.com/07th-mod/higurashi-assembly."
)

// Pipeline runs chapters through checkout, build, copy and archive.
type Pipeline struct {
	cfg      *config.Config
	vcs      vcs.Checkouter
	builder  *builder.MSBuild
	archiver *archive.SevenZip
	recorder metrics.Recorder
	journal  eventstore.Journal
	progress *Progress
	lookPath func(string) (string, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCheckouter replaces the version control backend chosen from config.
func WithCheckouter(c vcs.Checkouter) Option {
	return func(p *Pipeline) { p.vcs = c }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithJournal sets the run journal.
func WithJournal(j eventstore.Journal) Option {
	return func(p *Pipeline) {
		if j != nil {
			p.journal = j
		}
	}
}

// WithProgress sets where progress banners are written.
func WithProgress(pr *Progress) Option {
	return func(p *Pipeline) {
		if pr != nil {
			p.progress = pr
		}
	}
}

// WithLookPath replaces the executable lookup used by preflight.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.lookPath = fn
		}
	}
}

// New wires a Pipeline for cfg. Every external program is run through runner.
func New(cfg *config.Config, runner toolexec.Runner, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:      cfg,
		builder:  builder.NewMSBuild(cfg, runner),
		archiver: archive.NewSevenZip(cfg, runner),
		recorder: metrics.NoopRecorder{},
		journal:  eventstore.NoopJournal{ID: eventstore.NewRunID()},
		progress: NewProgress(os.Stdout, false),
		lookPath: toolexec.LookPath,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.vcs == nil {
		c, err := vcs.New(cfg, runner)
		if err != nil {
			return nil, err
		}
		p.vcs = c
	}
	return p, nil
}

// Options modify a single run.
type Options struct {
	// DryRun prints the plan and returns without side effects.
	DryRun bool
}

// Preflight verifies the builder executable and the repository exist. Both
// are checked once per run.
func (p *Pipeline) Preflight() error {
	start := time.Now()
	err := p.preflight()
	p.observe(metrics.StepPreflight, start, err)
	return err
}

func (p *Pipeline) preflight() error {
	if _, err := p.lookPath(p.cfg.Tools.Builder); err != nil {
		return errors.ConfigError("builder executable not found: "+p.cfg.Tools.Builder).
			WithCause(err).
			WithContext("path", p.cfg.Tools.Builder).
			WithContext(errors.HintKey, builderHint).
			Build()
	}

	info, err := os.Stat(p.cfg.RepoPath())
	if err != nil {
		return errors.ConfigError("repository path does not exist: "+p.cfg.RepoPath()).
			WithContext("path", p.cfg.RepoPath()).
			WithContext(errors.HintKey, repoHint).
			Build()
	}
	if !info.IsDir() {
		return errors.ConfigError("repository path is not a directory: "+p.cfg.RepoPath()).
			WithContext("path", p.cfg.RepoPath()).
			WithContext(errors.HintKey, repoHint).
			Build()
	}
	return nil
}

// Clean removes the shared built artifact and every chapter's output DLL and
// archive. Absent paths are skipped, so running it twice is harmless. It
// returns the paths that were actually removed.
func (p *Pipeline) Clean(reg *chapter.Registry) ([]string, error) {
	start := time.Now()
	removed, err := p.clean(reg)
	p.observe(metrics.StepCleanup, start, err)
	return removed, err
}

func (p *Pipeline) clean(reg *chapter.Registry) ([]string, error) {
	removed := []string{}
	for _, target := range cleanupTargets(p.cfg.BuiltArtifactPath(), reg) {
		ok, err := fsutil.RemoveIfExists(target)
		if err != nil {
			return removed, err
		}
		if ok {
			slog.Debug("Removed stale output", logfields.Path(target))
			p.progress.Removed(target)
			removed = append(removed, target)
		}
	}
	return removed, nil
}

// Run executes the whole pipeline over reg.
func (p *Pipeline) Run(ctx context.Context, reg *chapter.Registry, opts Options) (*Result, error) {
	if opts.DryRun {
		return p.dryRun(reg)
	}

	result := newResult(p.journal.RunID())
	runID := result.RunID
	log := slog.With(logfields.RunID(runID))

	p.record(eventstore.NewRunStarted(runID, eventstore.RunStartedMeta{
		Branches: branches(reg),
		RepoPath: p.cfg.RepoPath(),
		VCS:      string(p.cfg.Repository.VCS),
		Version:  version.String(),
	}))
	log.Info("Starting run", logfields.Count(reg.Len()))

	fail := func(branch, step string, err error) (*Result, error) {
		status := StatusFailed
		outcome := metrics.ResultFailed
		if ctx.Err() != nil || errors.HasCategory(err, errors.CategoryRuntime) {
			status = StatusCanceled
			outcome = metrics.ResultCanceled
		}
		result.finish(status)
		p.record(eventstore.NewRunFailed(runID, branch, step, err))
		p.recorder.IncRunOutcome(outcome)
		p.recorder.ObserveRunDuration(result.Duration)
		p.recorder.SetLastRunTimestamp(result.EndTime)
		log.Error("Run failed", logfields.Branch(branch), logfields.Step(step), logfields.Error(err))
		return result, err
	}

	if err := p.Preflight(); err != nil {
		return fail("", metrics.StepPreflight, err)
	}

	removed, err := p.Clean(reg)
	result.Removed = removed
	if err != nil {
		return fail("", metrics.StepCleanup, err)
	}
	p.record(eventstore.NewCleanupCompleted(runID, removed))
	log.Info("Cleanup pass complete", logfields.Count(len(removed)))

	for i, spec := range reg.Specs() {
		if err := ctx.Err(); err != nil {
			return fail(spec.BranchName(), "", errors.RuntimeError("run interrupted").WithCause(err).Build())
		}

		cr, step, err := p.runChapter(ctx, runID, i, spec)
		result.Chapters = append(result.Chapters, cr)
		if err != nil {
			p.recorder.IncChapterOutcome(spec.BranchName(), metrics.ResultFailed)
			return fail(spec.BranchName(), step, err)
		}
		p.recorder.IncChapterOutcome(spec.BranchName(), metrics.ResultSuccess)
	}

	result.finish(StatusSuccess)
	p.record(eventstore.NewRunCompleted(runID, len(result.Chapters), result.Duration))
	p.recorder.IncRunOutcome(metrics.ResultSuccess)
	p.recorder.ObserveRunDuration(result.Duration)
	p.recorder.SetLastRunTimestamp(result.EndTime)
	log.Info("Run complete", logfields.Count(len(result.Chapters)), logfields.Elapsed(result.Duration))
	p.progress.Finished()
	return result, nil
}

// runChapter performs checkout, build, copy and archive for one chapter. On
// failure it returns the name of the step that failed.
func (p *Pipeline) runChapter(ctx context.Context, runID string, index int, spec *chapter.Spec) (ChapterResult, string, error) {
	branch := spec.BranchName()
	log := slog.With(logfields.RunID(runID), logfields.Chapter(index), logfields.Branch(branch))
	cr := ChapterResult{Branch: branch}
	chapterStart := time.Now()

	p.progress.Building(branch)
	p.record(eventstore.NewChapterStarted(runID, index, branch))

	// checkout
	var checkoutCmd string
	if inv, ok := p.vcs.(invocationer); ok {
		checkoutCmd = inv.Invocation(branch).CommandLine()
	}
	p.progress.CheckingOut(branch, checkoutCmd)
	start := time.Now()
	err := p.vcs.Checkout(ctx, branch)
	p.observe(metrics.StepCheckout, start, err)
	if err != nil {
		return cr, metrics.StepCheckout, err
	}
	if commit, herr := p.vcs.Head(); herr == nil {
		cr.Commit = commit
	} else {
		log.Debug("Could not read HEAD", logfields.Error(herr))
	}
	log.Info("Checked out branch", logfields.Commit(cr.Commit), logfields.Elapsed(time.Since(start)))
	p.record(eventstore.NewChapterCheckedOut(runID, index, branch, cr.Commit, time.Since(start)))

	// build
	p.progress.RunningBuild(p.builder.Invocation().CommandLine())
	start = time.Now()
	err = p.builder.Build(ctx)
	p.observe(metrics.StepBuild, start, err)
	if err != nil {
		return cr, metrics.StepBuild, err
	}
	log.Info("Build finished", logfields.Elapsed(time.Since(start)))

	// copy
	start = time.Now()
	p.progress.Copying(p.cfg.BuiltArtifactPath(), spec.OutputDllFolder())
	err = fsutil.EnsureDir(spec.OutputDllFolder())
	if err == nil {
		cr.DllPath, err = fsutil.CopyFileInto(p.cfg.BuiltArtifactPath(), spec.OutputDllFolder())
	}
	p.observe(metrics.StepCopy, start, err)
	if err != nil {
		return cr, metrics.StepCopy, err
	}
	p.record(eventstore.NewChapterBuilt(runID, index, branch, cr.DllPath, time.Since(start)))

	// archive
	inv, err := p.archiver.Invocation(spec.OutputChapterFolder(), spec.OutputArchivePath())
	if err != nil {
		return cr, metrics.StepArchive, errors.ArchiveError("invalid archive destination").WithCause(err).Build()
	}
	p.progress.CreatingArchive(inv.CommandLine())
	start = time.Now()
	err = p.archiver.Run(ctx, inv)
	p.observe(metrics.StepArchive, start, err)
	if err != nil {
		return cr, metrics.StepArchive, err
	}
	cr.ArchivePath = spec.OutputArchivePath()
	cr.Duration = time.Since(chapterStart)
	log.Info("Chapter archived", logfields.Path(cr.ArchivePath), logfields.Elapsed(cr.Duration))
	p.record(eventstore.NewChapterArchived(runID, index, branch, cr.ArchivePath, time.Since(start)))

	return cr, "", nil
}

func (p *Pipeline) dryRun(reg *chapter.Registry) (*Result, error) {
	plan, err := p.Plan(reg)
	if err != nil {
		return nil, err
	}

	p.progress.DryRun()
	if err := p.preflight(); err != nil {
		slog.Warn("Preflight would fail", logfields.Error(err))
	}
	for _, target := range plan.Cleanup {
		if fsutil.Exists(target) {
			p.progress.WouldRemove(target)
		}
	}
	for _, cp := range plan.Chapters {
		p.progress.Building(cp.Spec.BranchName())
		p.progress.CheckingOut(cp.Spec.BranchName(), cp.Checkout.CommandLine())
		p.progress.RunningBuild(cp.Build.CommandLine())
		p.progress.Copying(cp.Copy[0], cp.Copy[1])
		p.progress.CreatingArchive(cp.Archive.CommandLine())
	}

	result := newResult(p.journal.RunID())
	result.finish(StatusPlanned)
	return result, nil
}

// observe records the duration and outcome of one step.
func (p *Pipeline) observe(step string, start time.Time, err error) {
	p.recorder.ObserveStepDuration(step, time.Since(start))
	switch {
	case err == nil:
		p.recorder.IncStepResult(step, metrics.ResultSuccess)
	case errors.HasCategory(err, errors.CategoryRuntime):
		p.recorder.IncStepResult(step, metrics.ResultCanceled)
	default:
		p.recorder.IncStepResult(step, metrics.ResultFailed)
	}
}

// record appends an event to the journal. A failed write is logged and the
// run continues. Appends use a background context so the failure event of an
// interrupted run still lands.
func (p *Pipeline) record(ev eventstore.Event, err error) {
	if err == nil {
		err = p.journal.Record(context.Background(), ev)
	}
	if err != nil {
		slog.Warn("Failed to write journal event", logfields.RunID(p.journal.RunID()), logfields.Error(err))
	}
}

func branches(reg *chapter.Registry) []string {
	out := make([]string, 0, reg.Len())
	for _, s := range reg.Specs() {
		out = append(out, s.BranchName())
	}
	return out
}
