// Package eventstore journals pipeline runs to SQLite and rebuilds run
// summaries from the journal.
package eventstore

import (
	"context"
	"encoding/json"
	"time"
)

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ChapterSummary is what the journal knows about one chapter of a run.
type ChapterSummary struct {
	Index   int    `json:"index"`
	Branch  string `json:"branch"`
	Commit  string `json:"commit,omitempty"`
	Built   bool   `json:"built"`
	Archive string `json:"archive,omitempty"`
}

// RunSummary is a read model of one run, reconstructed from its events.
type RunSummary struct {
	RunID        string            `json:"run_id"`
	Status       string            `json:"status"`
	StartedAt    time.Time         `json:"started_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	Duration     time.Duration     `json:"duration,omitempty"`
	Planned      []string          `json:"planned"`
	Removed      int               `json:"removed"`
	Chapters     []*ChapterSummary `json:"chapters"`
	FailedBranch string            `json:"failed_branch,omitempty"`
	FailedStep   string            `json:"failed_step,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// Summarize folds the events of a single run into a RunSummary. Events are
// expected in append order.
func Summarize(events []Event) *RunSummary {
	if len(events) == 0 {
		return nil
	}

	s := &RunSummary{
		RunID:     events[0].RunID(),
		Status:    RunStatusRunning,
		StartedAt: events[0].Timestamp(),
	}
	byBranch := map[string]*ChapterSummary{}
	chapter := func(p ChapterPayload) *ChapterSummary {
		c, ok := byBranch[p.Branch]
		if !ok {
			c = &ChapterSummary{Index: p.Index, Branch: p.Branch}
			byBranch[p.Branch] = c
			s.Chapters = append(s.Chapters, c)
		}
		return c
	}

	for _, ev := range events {
		switch ev.Type() {
		case TypeRunStarted:
			var p RunStartedMeta
			if json.Unmarshal(ev.Payload(), &p) == nil {
				s.Planned = p.Branches
			}
			s.StartedAt = ev.Timestamp()

		case TypeCleanupCompleted:
			var p CleanupCompletedPayload
			if json.Unmarshal(ev.Payload(), &p) == nil {
				s.Removed = len(p.Removed)
			}

		case TypeChapterStarted:
			var p ChapterPayload
			if json.Unmarshal(ev.Payload(), &p) == nil {
				chapter(p)
			}

		case TypeChapterCheckedOut:
			var p ChapterPayload
			if json.Unmarshal(ev.Payload(), &p) == nil {
				chapter(p).Commit = p.Commit
			}

		case TypeChapterBuilt:
			var p ChapterPayload
			if json.Unmarshal(ev.Payload(), &p) == nil {
				chapter(p).Built = true
			}

		case TypeChapterArchived:
			var p ChapterPayload
			if json.Unmarshal(ev.Payload(), &p) == nil {
				chapter(p).Archive = p.Archive
			}

		case TypeRunCompleted:
			s.finish(ev.Timestamp(), RunStatusCompleted)

		case TypeRunFailed:
			s.finish(ev.Timestamp(), RunStatusFailed)
			var p RunFailedPayload
			if json.Unmarshal(ev.Payload(), &p) == nil {
				s.FailedBranch = p.Branch
				s.FailedStep = p.Step
				s.ErrorMessage = p.Error
			}
		}
	}
	return s
}

func (s *RunSummary) finish(at time.Time, status string) {
	s.CompletedAt = &at
	s.Duration = at.Sub(s.StartedAt)
	s.Status = status
}

// LoadRun returns the summary and raw events of runID, or of the most recent
// run when runID is empty.
func LoadRun(ctx context.Context, store Store, runID string) (*RunSummary, []Event, error) {
	if runID == "" {
		latest, err := store.LatestRunID(ctx)
		if err != nil {
			return nil, nil, err
		}
		runID = latest
	}
	events, err := store.GetByRunID(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	if len(events) == 0 {
		return nil, nil, ErrNoRuns
	}
	return Summarize(events), events, nil
}
