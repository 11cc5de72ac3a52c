// Package errors provides the classified error primitives used across chapterbuilder.
//
// Every failure that can end a run is expressed as a ClassifiedError so the CLI
// can pick an exit code and a diagnostic without string parsing.
//
// Key features:
//   - ErrorCategory: broad classification (config, git, build, archive, filesystem, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - RetryStrategy: always never or user in this tool; a release run is never retried automatically
//   - ClassifiedError: structured error with category, severity, cause and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and stderr presentation
//
// Example usage:
//
//	err := errors.GitError("checkout failed").
//		WithContext("branch", branch).
//		WithContext("exit_code", res.ExitCode).
//		WithCause(runErr).
//		Build()
package errors
