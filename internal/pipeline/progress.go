package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
)

// Progress writes the operator-facing banner lines. It is separate from the
// structured log so the familiar ">>>>" output stays readable on stdout.
type Progress struct {
	w       io.Writer
	colored bool
}

// NewProgress returns a Progress writing to w. Color tags are rendered only
// when colored is true; otherwise they are stripped.
func NewProgress(w io.Writer, colored bool) *Progress {
	if w == nil {
		w = io.Discard
	}
	return &Progress{w: w, colored: colored}
}

// StdoutProgress writes to os.Stdout with color when the terminal supports it.
func StdoutProgress() *Progress {
	return NewProgress(os.Stdout, color.SupportColor())
}

func (p *Progress) printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if p.colored {
		fmt.Fprintln(p.w, color.Render(line))
		return
	}
	fmt.Fprintln(p.w, color.ClearTag(line))
}

// Building announces the start of a chapter.
func (p *Progress) Building(branch string) {
	p.printf("<cyan>>>>> Building %s</>", branch)
}

// CheckingOut announces the checkout step.
func (p *Progress) CheckingOut(branch, command string) {
	if command == "" {
		p.printf(">>>> Checking out %s", branch)
		return
	}
	p.printf(">>>> Checking out %s: <grey>%s</>", branch, command)
}

// RunningBuild announces the builder invocation.
func (p *Progress) RunningBuild(command string) {
	p.printf(">>>> Running Build: <grey>%s</>", command)
}

// Copying announces the artifact copy.
func (p *Progress) Copying(src, dstDir string) {
	p.printf(">>>> Copying %s -> %s", src, dstDir)
}

// CreatingArchive announces the archiver invocation.
func (p *Progress) CreatingArchive(command string) {
	p.printf(">>>> Creating Archive: <grey>%s</>", command)
}

// Removed reports one path deleted by the cleanup pass.
func (p *Progress) Removed(path string) {
	p.printf(">>>> Removed stale %s", path)
}

// WouldRemove lists a cleanup target during a dry run.
func (p *Progress) WouldRemove(path string) {
	p.printf(">>>> Would remove %s", path)
}

// DryRun marks the start of a plan listing.
func (p *Progress) DryRun() {
	p.printf("<yellow>>>>> Dry run: no commands will be executed</>")
}

// Finished is printed once every chapter succeeded.
func (p *Progress) Finished() {
	p.printf("<green>Program Finished</>")
}
