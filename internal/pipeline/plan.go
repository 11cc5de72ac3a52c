package pipeline

import (
	"git.home.luguber.info/inful/chapterbuilder/internal/chapter"
	"git.home.luguber.info/inful/chapterbuilder/internal/toolexec"
)

// ChapterPlan lists what the pipeline will do for one chapter.
type ChapterPlan struct {
	Spec     *chapter.Spec
	Checkout toolexec.Invocation // zero when the in-process backend is used
	Build    toolexec.Invocation
	Copy     [2]string // artifact source, destination folder
	Archive  toolexec.Invocation
}

// Plan is the ordered, side-effect free description of a run.
type Plan struct {
	Cleanup  []string
	Chapters []ChapterPlan
}

// invocationer is implemented by checkout backends that shell out.
type invocationer interface {
	Invocation(branch string) toolexec.Invocation
}

// Plan computes the run plan for reg without touching the filesystem.
func (p *Pipeline) Plan(reg *chapter.Registry) (*Plan, error) {
	plan := &Plan{Cleanup: cleanupTargets(p.cfg.BuiltArtifactPath(), reg)}

	for _, spec := range reg.Specs() {
		cp := ChapterPlan{
			Spec:  spec,
			Build: p.builder.Invocation(),
			Copy:  [2]string{p.cfg.BuiltArtifactPath(), spec.OutputDllFolder()},
		}
		if inv, ok := p.vcs.(invocationer); ok {
			cp.Checkout = inv.Invocation(spec.BranchName())
		}
		archiveInv, err := p.archiver.Invocation(spec.OutputChapterFolder(), spec.OutputArchivePath())
		if err != nil {
			return nil, err
		}
		cp.Archive = archiveInv
		plan.Chapters = append(plan.Chapters, cp)
	}
	return plan, nil
}

// cleanupTargets lists every path the cleanup pass removes, shared artifact first.
func cleanupTargets(builtArtifact string, reg *chapter.Registry) []string {
	targets := []string{builtArtifact}
	for _, spec := range reg.Specs() {
		targets = append(targets, spec.OutputDllPath(), spec.OutputArchivePath())
	}
	return targets
}
