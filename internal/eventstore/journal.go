package eventstore

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/chapterbuilder/internal/logfields"
	"github.com/google/uuid"
)

// Journal records the events of one run.
type Journal interface {
	RunID() string
	Record(ctx context.Context, ev Event) error
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// StoreJournal appends events to a Store under a fixed run id.
type StoreJournal struct {
	store Store
	runID string
}

// NewStoreJournal returns a journal writing to store. An empty runID gets a
// generated one.
func NewStoreJournal(store Store, runID string) *StoreJournal {
	if runID == "" {
		runID = NewRunID()
	}
	return &StoreJournal{store: store, runID: runID}
}

func (j *StoreJournal) RunID() string { return j.runID }

// Record appends ev. Events built for another run are rejected.
func (j *StoreJournal) Record(ctx context.Context, ev Event) error {
	if ev.RunID() != j.runID {
		slog.Warn("Dropping journal event for another run",
			logfields.RunID(ev.RunID()),
			slog.String("event", ev.Type()))
		return nil
	}
	return j.store.Append(ctx, ev.RunID(), ev.Type(), ev.Timestamp(), ev.Payload(), ev.Metadata())
}

// NoopJournal discards events. Used when journal.path is not configured.
type NoopJournal struct {
	ID string
}

func (n NoopJournal) RunID() string                     { return n.ID }
func (NoopJournal) Record(context.Context, Event) error { return nil }
