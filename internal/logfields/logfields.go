package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyChapter    = "chapter"
	KeyBranch     = "branch"
	KeyStep       = "step"
	KeyPath       = "path"
	KeyTool       = "tool"
	KeyArgs       = "args"
	KeyExitCode   = "exit_code"
	KeyCommit     = "commit"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Chapter(i int) slog.Attr         { return slog.Int(KeyChapter, i) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Step(name string) slog.Attr      { return slog.String(KeyStep, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Tool(name string) slog.Attr      { return slog.String(KeyTool, name) }
func Args(a []string) slog.Attr       { return slog.Any(KeyArgs, a) }
func ExitCode(code int) slog.Attr     { return slog.Int(KeyExitCode, code) }
func Commit(sha string) slog.Attr     { return slog.String(KeyCommit, sha) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Elapsed converts a duration into the duration_ms field.
func Elapsed(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
