package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Step names used as the "step" label.
const (
	StepPreflight = "preflight"
	StepCleanup   = "cleanup"
	StepCheckout  = "checkout"
	StepBuild     = "build"
	StepCopy      = "copy"
	StepArchive   = "archive"
)

// Recorder defines observability hooks for the pipeline. Implementations must
// tolerate being called on every step, including in dry runs.
type Recorder interface {
	ObserveStepDuration(step string, d time.Duration)
	IncStepResult(step string, result ResultLabel)
	IncChapterOutcome(branch string, result ResultLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(result ResultLabel)
	SetLastRunTimestamp(t time.Time)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, time.Duration) {}
func (NoopRecorder) IncStepResult(string, ResultLabel)         {}
func (NoopRecorder) IncChapterOutcome(string, ResultLabel)     {}
func (NoopRecorder) ObserveRunDuration(time.Duration)          {}
func (NoopRecorder) IncRunOutcome(ResultLabel)                 {}
func (NoopRecorder) SetLastRunTimestamp(time.Time)             {}
