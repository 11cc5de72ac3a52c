package pipeline

import "time"

// Status is the final state of a run.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
	StatusPlanned  Status = "planned" // dry run
)

// ChapterResult describes one chapter that was started.
type ChapterResult struct {
	Branch      string
	Commit      string
	DllPath     string
	ArchivePath string // empty unless the archive step succeeded
	Duration    time.Duration
}

// Result holds the outcome of a run.
type Result struct {
	RunID     string
	Status    Status
	Removed   []string
	Chapters  []ChapterResult
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

func newResult(runID string) *Result {
	return &Result{RunID: runID, StartTime: time.Now()}
}

func (r *Result) finish(status Status) {
	r.Status = status
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Archived reports how many chapters produced an archive.
func (r *Result) Archived() int {
	n := 0
	for _, c := range r.Chapters {
		if c.ArchivePath != "" {
			n++
		}
	}
	return n
}
