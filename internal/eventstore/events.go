package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
)

// Event type names.
const (
	TypeRunStarted        = "RunStarted"
	TypeCleanupCompleted  = "CleanupCompleted"
	TypeChapterStarted    = "ChapterStarted"
	TypeChapterCheckedOut = "ChapterCheckedOut"
	TypeChapterBuilt      = "ChapterBuilt"
	TypeChapterArchived   = "ChapterArchived"
	TypeRunCompleted      = "RunCompleted"
	TypeRunFailed         = "RunFailed"
)

// RunStartedMeta describes the run being started.
type RunStartedMeta struct {
	Branches []string `json:"branches"`
	RepoPath string   `json:"repo_path"`
	VCS      string   `json:"vcs"`
	Version  string   `json:"version"`
}

// CleanupCompletedPayload is the payload of a CleanupCompleted event.
type CleanupCompletedPayload struct {
	Removed []string `json:"removed"`
}

// ChapterPayload is shared by the per-chapter events.
type ChapterPayload struct {
	Index      int    `json:"index"`
	Branch     string `json:"branch"`
	Commit     string `json:"commit,omitempty"`
	Artifact   string `json:"artifact,omitempty"`
	Archive    string `json:"archive,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// RunCompletedPayload is the payload of a RunCompleted event.
type RunCompletedPayload struct {
	Chapters   int   `json:"chapters"`
	DurationMS int64 `json:"duration_ms"`
}

// RunFailedPayload is the payload of a RunFailed event.
type RunFailedPayload struct {
	Branch   string `json:"branch,omitempty"`
	Step     string `json:"step"`
	Category string `json:"category,omitempty"`
	Error    string `json:"error"`
}

func newEvent(runID, eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.JournalError("failed to marshal "+eventType+" payload").
			WithCause(err).
			WithContext("run_id", runID).
			Build()
	}
	return &BaseEvent{
		EventRunID:     runID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   data,
	}, nil
}

// NewRunStarted creates a RunStarted event.
func NewRunStarted(runID string, meta RunStartedMeta) (Event, error) {
	return newEvent(runID, TypeRunStarted, meta)
}

// NewCleanupCompleted creates a CleanupCompleted event listing removed paths.
func NewCleanupCompleted(runID string, removed []string) (Event, error) {
	if removed == nil {
		removed = []string{}
	}
	return newEvent(runID, TypeCleanupCompleted, CleanupCompletedPayload{Removed: removed})
}

// NewChapterStarted creates a ChapterStarted event.
func NewChapterStarted(runID string, index int, branch string) (Event, error) {
	return newEvent(runID, TypeChapterStarted, ChapterPayload{Index: index, Branch: branch})
}

// NewChapterCheckedOut creates a ChapterCheckedOut event.
func NewChapterCheckedOut(runID string, index int, branch, commit string, d time.Duration) (Event, error) {
	return newEvent(runID, TypeChapterCheckedOut, ChapterPayload{
		Index: index, Branch: branch, Commit: commit, DurationMS: d.Milliseconds(),
	})
}

// NewChapterBuilt creates a ChapterBuilt event.
func NewChapterBuilt(runID string, index int, branch, artifact string, d time.Duration) (Event, error) {
	return newEvent(runID, TypeChapterBuilt, ChapterPayload{
		Index: index, Branch: branch, Artifact: artifact, DurationMS: d.Milliseconds(),
	})
}

// NewChapterArchived creates a ChapterArchived event.
func NewChapterArchived(runID string, index int, branch, archive string, d time.Duration) (Event, error) {
	return newEvent(runID, TypeChapterArchived, ChapterPayload{
		Index: index, Branch: branch, Archive: archive, DurationMS: d.Milliseconds(),
	})
}

// NewRunCompleted creates a RunCompleted event.
func NewRunCompleted(runID string, chapters int, d time.Duration) (Event, error) {
	return newEvent(runID, TypeRunCompleted, RunCompletedPayload{Chapters: chapters, DurationMS: d.Milliseconds()})
}

// NewRunFailed creates a RunFailed event. branch is empty for failures
// outside the chapter loop.
func NewRunFailed(runID, branch, step string, cause error) (Event, error) {
	p := RunFailedPayload{Branch: branch, Step: step}
	if cause != nil {
		p.Error = cause.Error()
		if ce, ok := errors.AsClassified(cause); ok {
			p.Category = string(ce.Category())
			p.Error = ce.Message()
		}
	}
	return newEvent(runID, TypeRunFailed, p)
}
