package eventstore

import (
	stderrors "errors"

	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
)

// ErrNoRuns is returned by LatestRunID when nothing has been journaled yet.
var ErrNoRuns = stderrors.New("journal contains no runs")

func journalFailed(op string, cause error) error {
	return errors.JournalError("journal "+op+" failed").WithCause(cause).Build()
}
